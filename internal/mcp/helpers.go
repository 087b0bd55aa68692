package mcpserver

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"canvas/internal/domain"
	"canvas/internal/geometry"
	"canvas/internal/selection"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

func boolPtr(v bool) *bool { return &v }

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func getString(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// splitIDs parses a comma-separated id list, dropping empty entries.
func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

// blockSummary is the compact listing form of a block. Box is the visual box
// in canvas space, which differs from x/y/width/height for arrows and
// rotated blocks.
type blockSummary struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Type     string        `json:"type"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Rotation float64       `json:"rotation,omitempty"`
	Visible  bool          `json:"visible"`
	Box      geometry.Rect `json:"box"`
	Preview  string        `json:"preview,omitempty"` // first 200 chars of content
}

const previewLimit = 200

func summarizeBlock(b *domain.Block) blockSummary {
	var preview string
	switch v := b.Data.(type) {
	case *domain.Text:
		preview = v.Text
	case *domain.HTML:
		preview = v.HTML
	case *domain.Image:
		preview = v.URL
	}
	if utf8.RuneCountInString(preview) > previewLimit {
		preview = string([]rune(preview)[:previewLimit]) + "..."
	}
	return blockSummary{
		ID:       b.ID,
		Label:    b.Label,
		Type:     string(b.Type()),
		X:        b.X,
		Y:        b.Y,
		Width:    b.Width,
		Height:   b.Height,
		Rotation: b.Rotation,
		Visible:  b.Visible,
		Box:      selection.QuadBox(b),
		Preview:  preview,
	}
}
