package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"sort"
)

// keySet describes which JSON keys a variant accepts.
type keySet struct {
	required []string
	optional []string
}

var baseKeys = keySet{
	required: []string{"id", "label", "x", "y", "width", "height", "visible", "opacity"},
	optional: []string{"rotation", "scaleX", "scaleY", "locked", "background", "border", "radius", "shadow", "flip"},
}

var variantKeys = map[BlockType]keySet{
	BlockTypeText: {
		required: []string{"text", "color", "fontSize", "lineHeight", "letterSpacing", "textAlign", "font"},
		optional: []string{"textTransform", "textDecoration"},
	},
	BlockTypeFrame: {},
	BlockTypeImage: {
		required: []string{"url"},
		optional: []string{"prompt", "fit", "position"},
	},
	BlockTypeArrow: {
		required: []string{"points"},
		optional: []string{"pointerLength", "pointerWidth", "fill", "stroke", "strokeWidth"},
	},
	BlockTypeHTML: {
		required: []string{"html"},
	},
	BlockTypeDraw: {
		required: []string{"points"},
		optional: []string{"stroke", "strokeWidth", "tension"},
	},
}

const (
	DefaultPointerLength   = 20
	DefaultPointerWidth    = 20
	DefaultArrowStroke     = 4
	DefaultDrawStroke      = "#000000"
	DefaultDrawStrokeWidth = 3
)

// DecodeBlock parses a single block, rejecting unknown variants, unknown fields,
// missing required fields and malformed values. Absent defaulted fields are filled in.
func DecodeBlock(data []byte) (*Block, error) {
	return decodeBlock(data, true)
}

// DecodeProposal parses a block that may omit its id. The returned block keeps
// whatever id was supplied; callers assign a fresh one.
func DecodeProposal(data []byte) (*Block, error) {
	return decodeBlock(data, false)
}

func decodeBlock(data []byte, requireID bool) (*Block, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, WrapError(ErrCodeInvalidBlock, err, "block is not a JSON object")
	}
	if fields == nil {
		return nil, NewError(ErrCodeInvalidBlock, "block is null")
	}

	rawType, ok := fields["type"]
	if !ok {
		return nil, fieldError("type", "required")
	}
	var t BlockType
	if err := json.Unmarshal(rawType, &t); err != nil {
		return nil, fieldError("type", "must be a string")
	}
	vk, ok := variantKeys[t]
	if !ok {
		return nil, &Error{Code: ErrCodeUnknownVariant, Field: "type", Message: "unknown block type " + string(t)}
	}

	if err := checkKeys(fields, vk, requireID); err != nil {
		return nil, err
	}
	if err := checkPoints(t, fields); err != nil {
		return nil, err
	}

	b, err := decodeVariant(t, data)
	if err != nil {
		return nil, err
	}
	applyAbsentDefaults(b, fields)

	if err := validate(b, requireID); err != nil {
		return nil, err
	}
	return b, nil
}

func checkKeys(fields map[string]json.RawMessage, vk keySet, requireID bool) error {
	allowed := map[string]bool{"type": true}
	for _, k := range baseKeys.required {
		allowed[k] = true
	}
	for _, k := range baseKeys.optional {
		allowed[k] = true
	}
	for _, k := range vk.required {
		allowed[k] = true
	}
	for _, k := range vk.optional {
		allowed[k] = true
	}

	var unknown []string
	for k := range fields {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fieldError(unknown[0], "unknown field")
	}

	required := append(append([]string(nil), baseKeys.required...), vk.required...)
	for _, k := range required {
		if k == "id" && !requireID {
			continue
		}
		raw, ok := fields[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return fieldError(k, "required")
		}
	}
	return nil
}

func checkPoints(t BlockType, fields map[string]json.RawMessage) error {
	if t != BlockTypeArrow && t != BlockTypeDraw {
		return nil
	}
	var pts []float64
	if err := json.Unmarshal(fields["points"], &pts); err != nil {
		return fieldError("points", "must be an array of numbers")
	}
	if t == BlockTypeArrow && len(pts) != 4 {
		return fieldError("points", "arrow needs exactly 4 values, got %d", len(pts))
	}
	return nil
}

func decodeVariant(t BlockType, data []byte) (*Block, error) {
	b := &Block{}
	var target any
	switch t {
	case BlockTypeText:
		v := &Text{}
		b.Data = v
		target = &struct {
			Type BlockType `json:"type"`
			*Base
			*Text
		}{Base: &b.Base, Text: v}
	case BlockTypeFrame:
		b.Data = &Frame{}
		target = &struct {
			Type BlockType `json:"type"`
			*Base
		}{Base: &b.Base}
	case BlockTypeImage:
		v := &Image{}
		b.Data = v
		target = &struct {
			Type BlockType `json:"type"`
			*Base
			*Image
		}{Base: &b.Base, Image: v}
	case BlockTypeArrow:
		v := &Arrow{}
		b.Data = v
		target = &struct {
			Type BlockType `json:"type"`
			*Base
			*Arrow
		}{Base: &b.Base, Arrow: v}
	case BlockTypeHTML:
		v := &HTML{}
		b.Data = v
		target = &struct {
			Type BlockType `json:"type"`
			*Base
			*HTML
		}{Base: &b.Base, HTML: v}
	case BlockTypeDraw:
		v := &Draw{}
		b.Data = v
		target = &struct {
			Type BlockType `json:"type"`
			*Base
			*Draw
		}{Base: &b.Base, Draw: v}
	default:
		return nil, &Error{Code: ErrCodeUnknownVariant, Field: "type", Message: "unknown block type " + string(t)}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &Error{Code: ErrCodeInvalidBlock, Field: typeErr.Field, Message: "must be " + typeErr.Type.String(), Cause: err}
		}
		return nil, WrapError(ErrCodeInvalidBlock, err, "decode %s block", t)
	}
	return b, nil
}

func applyAbsentDefaults(b *Block, fields map[string]json.RawMessage) {
	absent := func(k string) bool {
		_, ok := fields[k]
		return !ok
	}
	if absent("scaleX") {
		b.ScaleX = 1
	}
	if absent("scaleY") {
		b.ScaleY = 1
	}
	switch d := b.Data.(type) {
	case *Arrow:
		if absent("pointerLength") {
			d.PointerLength = DefaultPointerLength
		}
		if absent("pointerWidth") {
			d.PointerWidth = DefaultPointerWidth
		}
		if absent("strokeWidth") {
			d.StrokeWidth = DefaultArrowStroke
		}
	case *Draw:
		if absent("stroke") {
			d.Stroke = DefaultDrawStroke
		}
		if absent("strokeWidth") {
			d.StrokeWidth = DefaultDrawStrokeWidth
		}
	case *Image:
		if d.Fit == "" {
			d.Fit = ImageFitContain
		}
		if d.Position == "" {
			d.Position = ImagePositionCenter
		}
	}
}

// Validate checks the semantic constraints of a block built in Go code.
func Validate(b *Block) error {
	return validate(b, true)
}

func validate(b *Block, requireID bool) error {
	if b == nil {
		return NewError(ErrCodeInvalidBlock, "block is nil")
	}
	if b.Data == nil {
		return &Error{Code: ErrCodeUnknownVariant, Field: "type", Message: "block has no variant"}
	}
	if requireID && b.ID == "" {
		return fieldError("id", "required")
	}

	nums := []struct {
		name string
		v    float64
	}{
		{"x", b.X}, {"y", b.Y}, {"width", b.Width}, {"height", b.Height},
		{"rotation", b.Rotation}, {"scaleX", b.ScaleX}, {"scaleY", b.ScaleY}, {"opacity", b.Opacity},
	}
	for _, n := range nums {
		if !finite(n.v) {
			return fieldError(n.name, "must be a finite number")
		}
	}
	if b.Width < 0 {
		return fieldError("width", "must be >= 0")
	}
	if b.Height < 0 {
		return fieldError("height", "must be >= 0")
	}
	if b.Opacity < 0 || b.Opacity > 100 {
		return fieldError("opacity", "must be within [0, 100], got %v", b.Opacity)
	}

	switch d := b.Data.(type) {
	case *Text:
		switch d.TextAlign {
		case TextAlignCenter, TextAlignLeft, TextAlignRight, TextAlignJustify:
		default:
			return fieldError("textAlign", "invalid value %q", d.TextAlign)
		}
		if !oneOf(d.TextTransform, "", "inherit", "capitalize", "uppercase", "lowercase") {
			return fieldError("textTransform", "invalid value %q", d.TextTransform)
		}
		if !oneOf(d.TextDecoration, "", "inherit", "overline", "line-through", "underline") {
			return fieldError("textDecoration", "invalid value %q", d.TextDecoration)
		}
		if !finite(d.FontSize) || !finite(d.LineHeight) || !finite(d.LetterSpacing) {
			return fieldError("fontSize", "typography values must be finite")
		}
	case *Frame, *HTML:
	case *Image:
		if !oneOf(string(d.Fit), "", "contain", "cover", "fill", "fitWidth", "fitHeight") {
			return fieldError("fit", "invalid value %q", d.Fit)
		}
		if !oneOf(string(d.Position), "", "center", "top", "bottom", "left", "right") {
			return fieldError("position", "invalid value %q", d.Position)
		}
	case *Arrow:
		for _, p := range d.Points {
			if !finite(p) {
				return fieldError("points", "must be finite")
			}
		}
		if d.PointerLength < 0 || d.PointerWidth < 0 || d.StrokeWidth < 0 {
			return fieldError("pointerLength", "arrow sizes must be >= 0")
		}
	case *Draw:
		if len(d.Points) < 4 {
			return fieldError("points", "draw needs at least 4 values, got %d", len(d.Points))
		}
		if len(d.Points)%2 != 0 {
			return fieldError("points", "draw needs an even number of values")
		}
		for _, p := range d.Points {
			if !finite(p) {
				return fieldError("points", "must be finite")
			}
		}
		if d.StrokeWidth < 0 {
			return fieldError("strokeWidth", "must be >= 0")
		}
	default:
		return &Error{Code: ErrCodeUnknownVariant, Field: "type", Message: "unsupported variant"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
