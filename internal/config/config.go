// Package config loads the canvas TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"

	"canvas/internal/domain"
	"canvas/internal/editor"
	"canvas/internal/geometry"
	"canvas/internal/service"
)

type Config struct {
	Canvas   CanvasConfig   `toml:"canvas"`
	Editor   EditorConfig   `toml:"editor"`
	Storage  StorageConfig  `toml:"storage"`
	Autosave AutosaveConfig `toml:"autosave"`
	MCP      MCPConfig      `toml:"mcp"`
	Watch    WatchConfig    `toml:"watch"`
}

type CanvasConfig struct {
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	Background string  `toml:"background"`
}

type EditorConfig struct {
	HistoryLimit      int     `toml:"history_limit"`
	MaxImageDimension float64 `toml:"max_image_dimension"`
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
	DBName  string `toml:"db_name"`
}

type AutosaveConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"`
}

type MCPConfig struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	AutoApprove bool   `toml:"auto_approve"`
}

type WatchConfig struct {
	Paths []string `toml:"paths"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{Width: 1280, Height: 720},
		Editor: EditorConfig{
			HistoryLimit:      editor.DefaultHistoryLimit,
			MaxImageDimension: geometry.MaxImageDimension,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
			DBName:  "canvas.db",
		},
		Autosave: AutosaveConfig{Enabled: true, Schedule: service.DefaultAutosaveSchedule},
		MCP:      MCPConfig{Name: "canvas-mcp", Version: "1.0.0"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/canvas/config.toml, or the platform config
// directory when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "canvas", "config.toml")
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "canvas")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "canvas")
}

// Load reads path over the defaults. An empty path means DefaultPath. A
// missing file yields the defaults; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return cfg, domain.WrapError(domain.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, domain.NewError(domain.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and the autosave schedule.
func (c Config) Validate() error {
	switch {
	case c.Canvas.Width < 0 || c.Canvas.Height < 0:
		return invalid("canvas", "width and height must be >= 0")
	case c.Editor.MaxImageDimension <= 0:
		return invalid("editor.max_image_dimension", "must be > 0")
	case c.Storage.DBName == "":
		return invalid("storage.db_name", "required")
	case c.MCP.Name == "":
		return invalid("mcp.name", "required")
	}
	if c.Autosave.Enabled {
		if _, err := cron.ParseStandard(c.Autosave.Schedule); err != nil {
			return &domain.Error{Code: domain.ErrCodeInvalidConfig, Field: "autosave.schedule", Message: fmt.Sprintf("invalid schedule %q", c.Autosave.Schedule), Cause: err}
		}
	}
	return nil
}

// DBPath is the SQLite file inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.DBName)
}

// Size is the initial canvas size.
func (c Config) Size() domain.Size {
	return domain.Size{Width: c.Canvas.Width, Height: c.Canvas.Height}
}

// StoreOptions turns the canvas and editor sections into Block Store options.
func (c Config) StoreOptions() []editor.Option {
	return []editor.Option{
		editor.WithSize(c.Size()),
		editor.WithBackground(c.Canvas.Background),
		editor.WithHistoryLimit(c.Editor.HistoryLimit),
		editor.WithMaxImageDimension(c.Editor.MaxImageDimension),
	}
}

func invalid(field, msg string) error {
	return &domain.Error{Code: domain.ErrCodeInvalidConfig, Field: field, Message: msg}
}
