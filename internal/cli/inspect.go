package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"canvas/internal/domain"
	"canvas/internal/geometry"
	"canvas/internal/selection"
)

// validateCommand creates the "validate" command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check template files against the block schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				t, err := readTemplate(path)
				if err != nil {
					failed++
					printError(out, "%s", path)
					printDetail(out, "%s", domain.UserMessage(err))
					continue
				}
				printSuccess(out, "%s (%d blocks)", path, len(t.Blocks))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d templates invalid", failed, len(args))
			}
			return nil
		},
	}
}

// boundsCommand creates the "bounds" command.
func (c *CLI) boundsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bounds <file> [id...]",
		Short: "Print the padded export bounds of blocks as JSON",
		Long:  `Bounds prints the union of the rotated corners of the given blocks (all blocks when no id is given), padded for export.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTemplate(args[0])
			if err != nil {
				return err
			}
			ids := args[1:]
			if len(ids) == 0 {
				for _, b := range t.Blocks {
					ids = append(ids, b.ID)
				}
			}
			r := selection.Bounds(t.Blocks, ids)
			if r == nil {
				return domain.NewError(domain.ErrCodeNotFound, "no matching blocks")
			}
			return writeJSON(cmd, r)
		},
	}
}

// blockInfo is one row of "info": the stored box and the visual box.
type blockInfo struct {
	ID    string        `json:"id"`
	Type  string        `json:"type"`
	Label string        `json:"label"`
	Box   geometry.Rect `json:"box"`
	Quad  geometry.Rect `json:"quad"`
}

type templateInfo struct {
	Size       domain.Size    `json:"size"`
	Background string         `json:"background,omitempty"`
	Fill       *geometry.Fill `json:"fill,omitempty"`
	Blocks     []blockInfo    `json:"blocks"`
	Bounds     *geometry.Rect `json:"bounds,omitempty"`
}

// infoCommand creates the "info" command.
func (c *CLI) infoCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Summarise a template: canvas, blocks and derived boxes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTemplate(args[0])
			if err != nil {
				return err
			}
			info := describeTemplate(t)
			if asJSON {
				return writeJSON(cmd, info)
			}

			out := cmd.OutOrStdout()
			printTitle(out, args[0])
			printKeyValue(out, "size", fmt.Sprintf("%.0f × %.0f", info.Size.Width, info.Size.Height))
			if info.Background != "" {
				printKeyValue(out, "background", info.Background)
			}
			if f := info.Fill; f != nil && f.IsGradient() {
				printKeyValue(out, "gradient", fmt.Sprintf("(%.0f,%.0f) → (%.0f,%.0f)", f.Start.X, f.Start.Y, f.End.X, f.End.Y))
				for _, stop := range f.Stops {
					printDetail(out, "%3.0f%%  %s", stop.Offset*100, stop.Color)
				}
			}
			printKeyValue(out, "blocks", fmt.Sprint(len(info.Blocks)))
			if len(info.Blocks) == 0 {
				return nil
			}

			rows := make([][]string, len(info.Blocks))
			for i, b := range info.Blocks {
				rows[i] = []string{b.ID, b.Type, b.Label, formatRect(b.Box), formatRect(b.Quad)}
			}
			fmt.Fprintln(out, table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(styleDim).
				Headers("ID", "TYPE", "LABEL", "BOX", "VISUAL").
				Rows(rows...))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func describeTemplate(t *domain.Template) templateInfo {
	info := templateInfo{
		Size:       t.Size,
		Background: t.Background,
		Blocks:     make([]blockInfo, len(t.Blocks)),
	}
	if t.Background != "" {
		fill := geometry.ParseLinearGradient(t.Background, t.Size.Width, t.Size.Height)
		info.Fill = &fill
	}
	ids := make([]string, len(t.Blocks))
	for i, b := range t.Blocks {
		info.Blocks[i] = blockInfo{
			ID:    b.ID,
			Type:  string(b.Type()),
			Label: b.Label,
			Box:   geometry.BoxOf(b),
			Quad:  selection.QuadBox(b),
		}
		ids[i] = b.ID
	}
	info.Bounds = selection.Bounds(t.Blocks, ids)
	return info
}

func formatRect(r geometry.Rect) string {
	return strings.Join([]string{
		fmt.Sprintf("%.1f,%.1f", r.X, r.Y),
		fmt.Sprintf("%.1f×%.1f", r.Width, r.Height),
	}, " ")
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
