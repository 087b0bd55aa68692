package mcpserver

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"canvas/internal/domain"
	"canvas/internal/geometry"
)

func (s *Server) registerBlockTools() {
	position := []mcp.ToolOption{
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithString("label", mcp.Description("Layer label (optional)")),
	}
	withPosition := func(opts ...mcp.ToolOption) []mcp.ToolOption {
		return append(opts, position...)
	}

	// ── create_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_block",
		mcp.WithDescription("Propose a block from a JSON object with a \"type\" field and no id. The id is assigned by the canvas."),
		mcp.WithString("block", mcp.Description("Block JSON without id"), mcp.Required()),
	), s.handleCreateBlock)

	// ── create_text_block ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_text_block", withPosition(
		mcp.WithDescription("Create a text block. Height grows with the number of lines."),
		mcp.WithString("text", mcp.Description("Text content"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("Width (default 320)")),
		mcp.WithNumber("fontSize", mcp.Description("Font size in px (default 24)")),
		mcp.WithString("color", mcp.Description("Text color (default #1f2933)")),
		mcp.WithString("align", mcp.Description("left, center, right or justify")),
	)...), s.handleCreateTextBlock)

	// ── create_frame_block ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_frame_block", withPosition(
		mcp.WithDescription("Create a rectangular frame"),
		mcp.WithNumber("width", mcp.Description("Width (default 240)")),
		mcp.WithNumber("height", mcp.Description("Height (default 240)")),
		mcp.WithString("background", mcp.Description("Fill color or linear-gradient(...)")),
	)...), s.handleCreateFrameBlock)

	// ── create_image_block ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_image_block", withPosition(
		mcp.WithDescription("Create an image block. Large images are scaled down to fit the maximum image dimension."),
		mcp.WithString("url", mcp.Description("Image URL"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("Natural width of the image (default 400)")),
		mcp.WithNumber("height", mcp.Description("Natural height of the image (default 300)")),
	)...), s.handleCreateImageBlock)

	// ── create_arrow_block ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_arrow_block",
		mcp.WithDescription("Create an arrow from (x1, y1) to (x2, y2) in canvas coordinates. The head is at (x2, y2)."),
		mcp.WithNumber("x1", mcp.Description("Start X"), mcp.Required()),
		mcp.WithNumber("y1", mcp.Description("Start Y"), mcp.Required()),
		mcp.WithNumber("x2", mcp.Description("End X"), mcp.Required()),
		mcp.WithNumber("y2", mcp.Description("End Y"), mcp.Required()),
		mcp.WithString("stroke", mcp.Description("Stroke and head color")),
		mcp.WithNumber("strokeWidth", mcp.Description("Stroke width (default 4)")),
		mcp.WithString("label", mcp.Description("Layer label (optional)")),
	), s.handleCreateArrowBlock)

	// ── create_html_block ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_html_block", withPosition(
		mcp.WithDescription("Create an embedded HTML block"),
		mcp.WithString("html", mcp.Description("HTML content"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("Width (default 240)")),
		mcp.WithNumber("height", mcp.Description("Height (default 240)")),
	)...), s.handleCreateHTMLBlock)

	// ── create_draw_block ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_draw_block",
		mcp.WithDescription("Create a freehand stroke from canvas points"),
		mcp.WithString("points", mcp.Description("JSON array of x,y pairs, e.g. [0,0,10,20,30,10]"), mcp.Required()),
		mcp.WithString("stroke", mcp.Description("Stroke color")),
		mcp.WithNumber("strokeWidth", mcp.Description("Stroke width")),
		mcp.WithString("label", mcp.Description("Layer label (optional)")),
	), s.handleCreateDrawBlock)

	// ── update_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Merge a partial JSON object onto a block. The id and type cannot change."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("patch", mcp.Description("JSON object of fields to change"), mcp.Required()),
	), s.handleUpdateBlock)

	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List blocks bottom to top, optionally filtered by type"),
		mcp.WithString("type", mcp.Description("Filter by block type (optional)")),
	), s.handleListBlocks)

	// ── get_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_block",
		mcp.WithDescription("Get the full JSON of a block"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleGetBlock)

	// ── delete_block (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a block. Requires user approval."),
		mcp.WithString("blockId", mcp.Description("Block ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)

	// ── duplicate_block ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Duplicate a block 24px down-right, directly above the original"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleDuplicateBlock)

	// ── reorder_block ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_block",
		mcp.WithDescription("Change a block's z-order"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("direction",
			mcp.Description("forward, top, backward or back"),
			mcp.Required(),
			mcp.Enum("forward", "top", "backward", "back"),
		),
	), s.handleReorderBlock)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleCreateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, _ := req.GetArguments()["block"].(string)
	if raw == "" {
		return nil, fmt.Errorf("block is required")
	}
	added, err := s.proposals.Propose(ctx, []byte(raw))
	if err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	s.emitCanvasChanged(ctx, "create_block")
	return jsonResult(summarizeBlock(added))
}

func (s *Server) handleCreateTextBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, _ := args["text"].(string)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	b := domain.NewTextBlock("", 0, 0, 0, 0)
	data, _ := b.AsText()
	data.Text = text
	data.Color = getString(args, "color", data.Color)
	data.TextAlign = domain.TextAlign(getString(args, "align", string(data.TextAlign)))
	if size := getFloat(args, "fontSize", 0); size > 0 {
		data.FontSize = size
		data.LineHeight = math.Round(size * 4 / 3)
	}

	w := getFloat(args, "width", domain.DefaultTextSize.Width)
	h := math.Max(domain.DefaultTextSize.Height, geometry.TextHeight(text, data.LineHeight))
	return s.place(ctx, "create_text_block", args, b, w, h)
}

func (s *Server) handleCreateFrameBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	b := domain.NewFrameBlock("", 0, 0, 0, 0)
	b.Background = getString(args, "background", b.Background)
	w := getFloat(args, "width", domain.DefaultFrameSize.Width)
	h := getFloat(args, "height", domain.DefaultFrameSize.Height)
	return s.place(ctx, "create_frame_block", args, b, w, h)
}

func (s *Server) handleCreateImageBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	url, _ := args["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}
	w, h := geometry.ScaleToFit(getFloat(args, "width", 400), getFloat(args, "height", 300), s.store.MaxImageDimension())
	return s.place(ctx, "create_image_block", args, domain.NewImageBlock("", url, 0, 0, 0, 0), w, h)
}

func (s *Server) handleCreateHTMLBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	html, _ := args["html"].(string)
	if html == "" {
		return nil, fmt.Errorf("html is required")
	}
	w := getFloat(args, "width", domain.DefaultHTMLSize.Width)
	h := getFloat(args, "height", domain.DefaultHTMLSize.Height)
	return s.place(ctx, "create_html_block", args, domain.NewHTMLBlock("", html, 0, 0, 0, 0), w, h)
}

func (s *Server) handleCreateArrowBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	for _, key := range []string{"x1", "y1", "x2", "y2"} {
		if _, ok := args[key].(float64); !ok {
			return nil, fmt.Errorf("%s is required", key)
		}
	}
	start := geometry.Point{X: getFloat(args, "x1", 0), Y: getFloat(args, "y1", 0)}
	end := geometry.Point{X: getFloat(args, "x2", 0), Y: getFloat(args, "y2", 0)}

	b := s.arrowBetween(getString(args, "label", s.nextLabel(domain.BlockTypeArrow)), start, end)
	arrow, _ := b.AsArrow()
	if stroke := getString(args, "stroke", ""); stroke != "" {
		arrow.Stroke = stroke
		arrow.Fill = stroke
	}
	if sw := getFloat(args, "strokeWidth", 0); sw > 0 {
		arrow.StrokeWidth = sw
		ab := geometry.BoundsOfArrow(arrow)
		b.Width, b.Height = ab.Width, ab.Height
	}
	return s.propose(ctx, "create_arrow_block", b)
}

func (s *Server) handleCreateDrawBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	raw, _ := args["points"].(string)
	var points []float64
	if err := parseJSON(raw, &points); err != nil {
		return nil, fmt.Errorf("points must be a JSON array of numbers: %w", err)
	}
	if len(points) < 4 || len(points)%2 != 0 {
		return nil, fmt.Errorf("points needs at least two x,y pairs")
	}

	r, rebased := geometry.StrokeBounds(points)
	b := domain.NewDrawBlock(getString(args, "label", s.nextLabel(domain.BlockTypeDraw)), r.X, r.Y, r.Width, r.Height, rebased)
	draw, _ := b.AsDraw()
	draw.Stroke = getString(args, "stroke", draw.Stroke)
	draw.StrokeWidth = getFloat(args, "strokeWidth", draw.StrokeWidth)
	return s.propose(ctx, "create_draw_block", b)
}

func (s *Server) handleUpdateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	block, err := s.getBlockForTool(args)
	if err != nil {
		return nil, err
	}
	raw, _ := args["patch"].(string)
	var patch domain.Patch
	if err := parseJSON(raw, &patch); err != nil || patch == nil {
		return nil, fmt.Errorf("patch must be a JSON object")
	}

	updated, err := s.proposals.ProposeUpdate(ctx, block.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	s.emitCanvasChanged(ctx, "update_block")
	return jsonResult(summarizeBlock(updated))
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := getString(req.GetArguments(), "type", "")

	summaries := []blockSummary{}
	for _, b := range s.store.Blocks() {
		if filter != "" && string(b.Type()) != filter {
			continue
		}
		summaries = append(summaries, summarizeBlock(b))
	}
	return jsonResult(summaries)
}

func (s *Server) handleGetBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	block, err := s.getBlockForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	return jsonResult(block)
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	block, err := s.getBlockForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}

	meta := fmt.Sprintf(`{"blockIds":[%q]}`, block.ID)
	approved, err := s.approval.Request(ctx, "delete_block",
		fmt.Sprintf("Delete %s block %q (%s)", block.Type(), block.Label, block.ID), meta)
	if err != nil || !approved {
		s.logger.Info("delete not approved", "id", block.ID, "err", err)
		return textResult("Action rejected by user"), nil
	}

	if !s.store.DeleteBlock(block.ID) {
		return nil, domain.NewError(domain.ErrCodeNotFound, "block %s not found", block.ID)
	}
	s.emitCanvasChanged(ctx, "delete_block")
	return textResult(fmt.Sprintf("Block %s deleted", block.ID)), nil
}

func (s *Server) handleDuplicateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	block, err := s.getBlockForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	newID, ok := s.store.DuplicateBlock(block.ID)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeNotFound, "block %s not found", block.ID)
	}
	clone, _ := s.store.Block(newID)
	s.emitCanvasChanged(ctx, "duplicate_block")
	return jsonResult(summarizeBlock(clone))
}

func (s *Server) handleReorderBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	block, err := s.getBlockForTool(args)
	if err != nil {
		return nil, err
	}

	var moved bool
	switch direction, _ := args["direction"].(string); direction {
	case "forward":
		moved = s.store.BringForward(block.ID)
	case "top":
		moved = s.store.BringToTop(block.ID)
	case "backward":
		moved = s.store.BringBackward(block.ID)
	case "back":
		moved = s.store.BringToBack(block.ID)
	default:
		return nil, fmt.Errorf("direction must be forward, top, backward or back, got %q", direction)
	}

	if moved {
		s.emitCanvasChanged(ctx, "reorder_block")
	}
	return jsonResult(map[string]any{"moved": moved, "order": s.store.Order()})
}

// ── Placement ──────────────────────────────────────────────

// place sizes b, positions it from the x/y arguments or the layout engine,
// labels it and proposes it.
func (s *Server) place(ctx context.Context, tool string, args map[string]any, b *domain.Block, w, h float64) (*mcp.CallToolResult, error) {
	b.Width, b.Height = w, h
	b.X, b.Y = s.position(args, w, h)
	b.Label = getString(args, "label", s.nextLabel(b.Type()))
	return s.propose(ctx, tool, b)
}

// position resolves x/y from args. A missing coordinate comes from the
// first free grid slot.
func (s *Server) position(args map[string]any, w, h float64) (float64, float64) {
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if hasX && hasY {
		return x, y
	}
	nx, ny := s.layout.NextPosition(s.store.Blocks(), w, h, s.store.Canvas().Size.Width)
	if hasX {
		nx = x
	}
	if hasY {
		ny = y
	}
	return nx, ny
}

func (s *Server) nextLabel(t domain.BlockType) string {
	return fmt.Sprintf("%s %d", t.Title(), len(s.store.Order())+1)
}

// arrowBetween builds an arrow whose stem runs from start to end.
func (s *Server) arrowBetween(label string, start, end geometry.Point) *domain.Block {
	pts, ab := geometry.ArrowPlacement(start, end, true)
	return domain.NewArrowBlock(label, start.X, start.Y, pts, ab.Width, ab.Height)
}

func (s *Server) propose(ctx context.Context, tool string, b *domain.Block) (*mcp.CallToolResult, error) {
	added, err := s.proposals.ProposeBlock(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tool, err)
	}
	s.emitCanvasChanged(ctx, tool)
	return jsonResult(summarizeBlock(added))
}
