package domain

// BlockType is the discriminator of the block union.
type BlockType string

const (
	BlockTypeText  BlockType = "text"
	BlockTypeFrame BlockType = "frame"
	BlockTypeImage BlockType = "image"
	BlockTypeArrow BlockType = "arrow"
	BlockTypeHTML  BlockType = "html"
	BlockTypeDraw  BlockType = "draw"
)

// BlockTypes lists every variant in declaration order.
var BlockTypes = []BlockType{
	BlockTypeText, BlockTypeFrame, BlockTypeImage, BlockTypeArrow, BlockTypeHTML, BlockTypeDraw,
}

func (t BlockType) Valid() bool {
	switch t {
	case BlockTypeText, BlockTypeFrame, BlockTypeImage, BlockTypeArrow, BlockTypeHTML, BlockTypeDraw:
		return true
	}
	return false
}

// Title is the capitalised name used in default labels ("Text 3").
func (t BlockType) Title() string {
	switch t {
	case BlockTypeHTML:
		return "HTML"
	case "":
		return ""
	}
	s := string(t)
	return string(s[0]-'a'+'A') + s[1:]
}

type Border struct {
	Color string    `json:"color,omitempty"`
	Width float64   `json:"width,omitempty"`
	Dash  []float64 `json:"dash,omitempty"`
}

// Radius holds per-corner radii.
type Radius struct {
	TL float64 `json:"tl,omitempty"`
	TR float64 `json:"tr,omitempty"`
	BR float64 `json:"br,omitempty"`
	BL float64 `json:"bl,omitempty"`
}

type Shadow struct {
	Color   string  `json:"color,omitempty"`
	OffsetX float64 `json:"offsetX,omitempty"`
	OffsetY float64 `json:"offsetY,omitempty"`
	Blur    float64 `json:"blur,omitempty"`
	Enabled bool    `json:"enabled,omitempty"`
}

type Flip struct {
	Horizontal bool `json:"horizontal,omitempty"`
	Vertical   bool `json:"vertical,omitempty"`
}

// Base carries the attributes shared by every block variant.
// X and Y are the top-left of the unrotated box in canvas space.
type Base struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Rotation   float64 `json:"rotation"`
	ScaleX     float64 `json:"scaleX"`
	ScaleY     float64 `json:"scaleY"`
	Visible    bool    `json:"visible"`
	Opacity    float64 `json:"opacity"`
	Locked     bool    `json:"locked,omitempty"`
	Background string  `json:"background,omitempty"`
	Border     *Border `json:"border,omitempty"`
	Radius     *Radius `json:"radius,omitempty"`
	Shadow     *Shadow `json:"shadow,omitempty"`
	Flip       *Flip   `json:"flip,omitempty"`
}

// FlipSigns returns -1 for each flipped axis and 1 otherwise.
func (b *Base) FlipSigns() (float64, float64) {
	fx, fy := 1.0, 1.0
	if b.Flip != nil && b.Flip.Horizontal {
		fx = -1
	}
	if b.Flip != nil && b.Flip.Vertical {
		fy = -1
	}
	return fx, fy
}

// Variant is the per-kind payload of a block. The set of implementations is closed.
type Variant interface {
	Kind() BlockType
	cloneVariant() Variant
}

type TextAlign string

const (
	TextAlignCenter  TextAlign = "center"
	TextAlignLeft    TextAlign = "left"
	TextAlignRight   TextAlign = "right"
	TextAlignJustify TextAlign = "justify"
)

type Font struct {
	Family string `json:"family"`
	Weight string `json:"weight"`
}

type Text struct {
	Text           string    `json:"text"`
	Color          string    `json:"color"`
	FontSize       float64   `json:"fontSize"`
	LineHeight     float64   `json:"lineHeight"`
	LetterSpacing  float64   `json:"letterSpacing"`
	TextAlign      TextAlign `json:"textAlign"`
	Font           Font      `json:"font"`
	TextTransform  string    `json:"textTransform,omitempty"`
	TextDecoration string    `json:"textDecoration,omitempty"`
}

type Frame struct{}

type ImageFit string

const (
	ImageFitContain   ImageFit = "contain"
	ImageFitCover     ImageFit = "cover"
	ImageFitFill      ImageFit = "fill"
	ImageFitFitWidth  ImageFit = "fitWidth"
	ImageFitFitHeight ImageFit = "fitHeight"
)

type ImagePosition string

const (
	ImagePositionCenter ImagePosition = "center"
	ImagePositionTop    ImagePosition = "top"
	ImagePositionBottom ImagePosition = "bottom"
	ImagePositionLeft   ImagePosition = "left"
	ImagePositionRight  ImagePosition = "right"
)

type Image struct {
	URL      string        `json:"url"`
	Prompt   string        `json:"prompt,omitempty"`
	Fit      ImageFit      `json:"fit,omitempty"`
	Position ImagePosition `json:"position,omitempty"`
}

// Arrow endpoints are [x1, y1, x2, y2] relative to the block position.
type Arrow struct {
	Points        [4]float64 `json:"points"`
	PointerLength float64    `json:"pointerLength"`
	PointerWidth  float64    `json:"pointerWidth"`
	Fill          string     `json:"fill,omitempty"`
	Stroke        string     `json:"stroke,omitempty"`
	StrokeWidth   float64    `json:"strokeWidth"`
}

type HTML struct {
	HTML string `json:"html"`
}

// Draw is a freehand stroke; Points is a flat x,y list relative to the block position.
type Draw struct {
	Points      []float64 `json:"points"`
	Stroke      string    `json:"stroke"`
	StrokeWidth float64   `json:"strokeWidth"`
	Tension     float64   `json:"tension"`
}

func (*Text) Kind() BlockType  { return BlockTypeText }
func (*Frame) Kind() BlockType { return BlockTypeFrame }
func (*Image) Kind() BlockType { return BlockTypeImage }
func (*Arrow) Kind() BlockType { return BlockTypeArrow }
func (*HTML) Kind() BlockType  { return BlockTypeHTML }
func (*Draw) Kind() BlockType  { return BlockTypeDraw }

func (v *Text) cloneVariant() Variant  { c := *v; return &c }
func (v *Frame) cloneVariant() Variant { return &Frame{} }
func (v *Image) cloneVariant() Variant { c := *v; return &c }
func (v *Arrow) cloneVariant() Variant { c := *v; return &c }
func (v *HTML) cloneVariant() Variant  { c := *v; return &c }
func (v *Draw) cloneVariant() Variant {
	c := *v
	c.Points = append([]float64(nil), v.Points...)
	return &c
}

// Block is a single placeable object on the canvas.
type Block struct {
	Base
	Data Variant
}

// Type returns the variant tag, or "" for a block without payload.
func (b *Block) Type() BlockType {
	if b == nil || b.Data == nil {
		return ""
	}
	return b.Data.Kind()
}

// Clone returns a deep copy.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	c := &Block{Base: b.Base}
	if b.Border != nil {
		border := *b.Border
		border.Dash = append([]float64(nil), b.Border.Dash...)
		c.Border = &border
	}
	if b.Radius != nil {
		r := *b.Radius
		c.Radius = &r
	}
	if b.Shadow != nil {
		s := *b.Shadow
		c.Shadow = &s
	}
	if b.Flip != nil {
		f := *b.Flip
		c.Flip = &f
	}
	if b.Data != nil {
		c.Data = b.Data.cloneVariant()
	}
	return c
}

func (b *Block) AsText() (*Text, bool) {
	v, ok := b.Data.(*Text)
	return v, ok
}

func (b *Block) AsArrow() (*Arrow, bool) {
	v, ok := b.Data.(*Arrow)
	return v, ok
}

func (b *Block) AsDraw() (*Draw, bool) {
	v, ok := b.Data.(*Draw)
	return v, ok
}

func (b *Block) AsImage() (*Image, bool) {
	v, ok := b.Data.(*Image)
	return v, ok
}

// CloneBlocks deep-copies a block list.
func CloneBlocks(blocks []*Block) []*Block {
	out := make([]*Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}
