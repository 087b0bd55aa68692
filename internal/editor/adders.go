package editor

import (
	"fmt"

	"canvas/internal/domain"
	"canvas/internal/geometry"
)

// addCentered places a block built by build at the viewport centre, labels it
// "<Type> N", selects it and returns to select mode, as one history entry.
// build receives the top-left of the w×h box.
func (s *Store) addCentered(t domain.BlockType, w, h float64, build func(label string, pos geometry.Point) *domain.Block) string {
	var id string
	s.update(func() bool {
		pos := geometry.ViewportCenteredPosition(s.canvas.Viewport(), s.canvas.ContainerSize, s.canvas.Size, w, h)
		label := fmt.Sprintf("%s %d", t.Title(), len(s.order)+1)
		b := build(label, pos)
		normalize(b)

		s.record()
		s.blocks[b.ID] = b
		s.order = append(s.order, b.ID)
		s.selected = []string{b.ID}
		s.canvas.Mode = ModeSelect
		id = b.ID
		s.logger.Debug("block added", "id", id, "type", t)
		return true
	})
	return id
}

// AddTextBlock adds a default 320×52 text block.
func (s *Store) AddTextBlock() string {
	size := domain.DefaultTextSize
	return s.addCentered(domain.BlockTypeText, size.Width, size.Height, func(label string, pos geometry.Point) *domain.Block {
		return domain.NewTextBlock(label, pos.X, pos.Y, size.Width, size.Height)
	})
}

// AddFrameBlock adds a default 240×240 frame.
func (s *Store) AddFrameBlock() string {
	size := domain.DefaultFrameSize
	return s.addCentered(domain.BlockTypeFrame, size.Width, size.Height, func(label string, pos geometry.Point) *domain.Block {
		return domain.NewFrameBlock(label, pos.X, pos.Y, size.Width, size.Height)
	})
}

// AddHTMLBlock adds a default 240×240 embedded-content block.
func (s *Store) AddHTMLBlock(html string) string {
	size := domain.DefaultHTMLSize
	return s.addCentered(domain.BlockTypeHTML, size.Width, size.Height, func(label string, pos geometry.Point) *domain.Block {
		return domain.NewHTMLBlock(label, html, pos.X, pos.Y, size.Width, size.Height)
	})
}

// AddImageBlock adds an image scaled down to fit the maximum image dimension.
func (s *Store) AddImageBlock(url string, width, height float64) string {
	w, h := geometry.ScaleToFit(width, height, s.maxImage)
	return s.addCentered(domain.BlockTypeImage, w, h, func(label string, pos geometry.Point) *domain.Block {
		return domain.NewImageBlock(label, url, pos.X, pos.Y, w, h)
	})
}

// AddArrowBlock adds a 200px rightward arrow whose visual box is centred.
func (s *Store) AddArrowBlock() string {
	pts, ab := geometry.ArrowPlacement(geometry.Point{}, geometry.Point{}, false)
	return s.addCentered(domain.BlockTypeArrow, ab.Width, ab.Height, func(label string, pos geometry.Point) *domain.Block {
		return domain.NewArrowBlock(label, pos.X-ab.Offset.X, pos.Y-ab.Offset.Y, pts, ab.Width, ab.Height)
	})
}
