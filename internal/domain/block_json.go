package domain

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the block as a flat object with a "type" discriminator.
func (b Block) MarshalJSON() ([]byte, error) {
	switch d := b.Data.(type) {
	case *Text:
		return json.Marshal(struct {
			Type BlockType `json:"type"`
			Base
			*Text
		}{BlockTypeText, b.Base, d})
	case *Frame:
		return json.Marshal(struct {
			Type BlockType `json:"type"`
			Base
		}{BlockTypeFrame, b.Base})
	case *Image:
		return json.Marshal(struct {
			Type BlockType `json:"type"`
			Base
			*Image
		}{BlockTypeImage, b.Base, d})
	case *Arrow:
		return json.Marshal(struct {
			Type BlockType `json:"type"`
			Base
			*Arrow
		}{BlockTypeArrow, b.Base, d})
	case *HTML:
		return json.Marshal(struct {
			Type BlockType `json:"type"`
			Base
			*HTML
		}{BlockTypeHTML, b.Base, d})
	case *Draw:
		return json.Marshal(struct {
			Type BlockType `json:"type"`
			Base
			*Draw
		}{BlockTypeDraw, b.Base, d})
	}
	return nil, &Error{Code: ErrCodeUnknownVariant, Field: "type", Message: "block " + b.ID + " has no variant"}
}

// UnmarshalJSON decodes through DecodeBlock, so it is as strict as the schema.
func (b *Block) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeBlock(data)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}

// Patch is a shallow partial update keyed by JSON field name.
// A nil value removes an optional field.
type Patch map[string]any

// ApplyPatch merges patch onto a copy of b and re-runs the full schema.
// The id is preserved and the variant may not change.
func ApplyPatch(b *Block, patch Patch) (*Block, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, WrapError(ErrCodeInternal, err, "re-read block %s", b.ID)
	}

	for k, v := range patch {
		switch k {
		case "id":
			continue
		case "type":
			if fmt.Sprint(v) != string(b.Type()) {
				return nil, fieldError("type", "cannot change block type")
			}
			continue
		}
		if v == nil {
			delete(fields, k)
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, &Error{Code: ErrCodeInvalidBlock, Field: k, Message: "value is not serialisable", Cause: err}
		}
		fields[k] = raw
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, WrapError(ErrCodeInternal, err, "merge patch for %s", b.ID)
	}
	return DecodeBlock(merged)
}
