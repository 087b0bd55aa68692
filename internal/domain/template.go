package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Template is the canonical save/load/export unit.
type Template struct {
	Size       Size     `json:"size"`
	Background string   `json:"background,omitempty"`
	Blocks     []*Block `json:"blocks"`
}

// DecodeTemplate parses a template, validating every block and rejecting duplicate ids.
func DecodeTemplate(data []byte) (*Template, error) {
	var wire struct {
		Size       *Size             `json:"size"`
		Background *string           `json:"background"`
		Blocks     []json.RawMessage `json:"blocks"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return nil, WrapError(ErrCodeInvalidTemplate, err, "decode template")
	}
	if wire.Size == nil {
		return nil, &Error{Code: ErrCodeInvalidTemplate, Field: "size", Message: "required"}
	}
	if wire.Blocks == nil {
		return nil, &Error{Code: ErrCodeInvalidTemplate, Field: "blocks", Message: "required"}
	}

	t := &Template{Size: *wire.Size, Blocks: make([]*Block, 0, len(wire.Blocks))}
	if wire.Background != nil {
		t.Background = *wire.Background
	}
	seen := make(map[string]bool, len(wire.Blocks))
	for i, raw := range wire.Blocks {
		b, err := DecodeBlock(raw)
		if err != nil {
			var de *Error
			if errors.As(err, &de) {
				field := fmt.Sprintf("blocks[%d]", i)
				if de.Field != "" {
					field += "." + de.Field
				}
				return nil, &Error{Code: de.Code, Field: field, Message: de.Message, Cause: de.Cause}
			}
			return nil, err
		}
		if seen[b.ID] {
			return nil, &Error{Code: ErrCodeInvalidTemplate, Field: fmt.Sprintf("blocks[%d].id", i), Message: "duplicate id " + b.ID}
		}
		seen[b.ID] = true
		t.Blocks = append(t.Blocks, b)
	}
	return t, nil
}

// Clone deep-copies the template.
func (t *Template) Clone() *Template {
	return &Template{Size: t.Size, Background: t.Background, Blocks: CloneBlocks(t.Blocks)}
}
