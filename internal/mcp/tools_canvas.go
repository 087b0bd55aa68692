package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"canvas/internal/editor"
	"canvas/internal/selection"
)

func (s *Server) registerCanvasTools() {
	// ── arrange_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_blocks",
		mcp.WithDescription("Lay blocks out in non-overlapping rows. Arranges every block when blockIds is omitted."),
		mcp.WithString("blockIds", mcp.Description("Comma-separated block IDs (optional)")),
		mcp.WithNumber("startX", mcp.Description("Left of the first row (default 0)")),
		mcp.WithNumber("startY", mcp.Description("Top of the first row (default 0)")),
	), s.handleArrangeBlocks)

	// ── connect_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("connect_blocks",
		mcp.WithDescription("Create an arrow from one block to another, between the facing sides of their boxes"),
		mcp.WithString("fromId", mcp.Description("Source block ID"), mcp.Required()),
		mcp.WithString("toId", mcp.Description("Target block ID"), mcp.Required()),
		mcp.WithNumber("gap", mcp.Description("Distance kept from each box (default 8)")),
	), s.handleConnectBlocks)

	// ── select_blocks ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_blocks",
		mcp.WithDescription("Replace the selection. Unknown ids are ignored; an empty list clears it."),
		mcp.WithString("blockIds", mcp.Description("Comma-separated block IDs")),
	), s.handleSelectBlocks)

	// ── selection_bounds ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("selection_bounds",
		mcp.WithDescription("Padded bounding box of the given blocks, or of the current selection when blockIds is omitted"),
		mcp.WithString("blockIds", mcp.Description("Comma-separated block IDs (optional)")),
	), s.handleSelectionBounds)

	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last canvas change"),
	), s.handleUndo)
	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone canvas change"),
	), s.handleRedo)

	// ── set_canvas ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_canvas",
		mcp.WithDescription("Change the canvas size and/or background"),
		mcp.WithNumber("width", mcp.Description("Canvas width")),
		mcp.WithNumber("height", mcp.Description("Canvas height")),
		mcp.WithString("background", mcp.Description("Color or linear-gradient(...)")),
	), s.handleSetCanvas)

	if s.documents != nil {
		// ── save_document ──────────────────────────────
		s.mcp.AddTool(mcp.NewTool("save_document",
			mcp.WithDescription("Save the open document and its undo history"),
		), s.handleSaveDocument)
	}
}

func (s *Server) handleArrangeBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blocks := s.store.Blocks()
	if ids := splitIDs(getString(args, "blockIds", "")); len(ids) > 0 {
		want := make(map[string]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		picked := blocks[:0]
		for _, b := range blocks {
			if want[b.ID] {
				picked = append(picked, b)
			}
		}
		blocks = picked
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("no blocks to arrange")
	}

	positions := s.layout.ArrangeGroup(blocks, getFloat(args, "startX", 0), getFloat(args, "startY", 0), s.store.Canvas().Size.Width)
	if s.store.MoveBlocks(positions) {
		s.emitCanvasChanged(ctx, "arrange_blocks")
	}
	return textResult(fmt.Sprintf("Arranged %d blocks", len(blocks))), nil
}

func (s *Server) handleConnectBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	from, err := s.getBlockForTool(map[string]any{"blockId": args["fromId"]})
	if err != nil {
		return nil, fmt.Errorf("fromId: %w", err)
	}
	to, err := s.getBlockForTool(map[string]any{"blockId": args["toId"]})
	if err != nil {
		return nil, fmt.Errorf("toId: %w", err)
	}
	if from.ID == to.ID {
		return nil, fmt.Errorf("cannot connect a block to itself")
	}

	c := connectBoxes(selection.QuadBox(from), selection.QuadBox(to), getFloat(args, "gap", defaultConnectGap))
	label := fmt.Sprintf("%s → %s", from.Label, to.Label)
	return s.propose(ctx, "connect_blocks", s.arrowBetween(label, c.start, c.end))
}

func (s *Server) handleSelectBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := splitIDs(getString(req.GetArguments(), "blockIds", ""))
	s.store.SetSelectedIDs(ids)
	return jsonResult(map[string]any{"selected": s.store.SelectedIDs()})
}

func (s *Server) handleSelectionBounds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := splitIDs(getString(req.GetArguments(), "blockIds", ""))
	if len(ids) == 0 {
		ids = s.store.SelectedIDs()
	}
	bounds := selection.Bounds(s.store.Blocks(), ids)
	if bounds == nil {
		return textResult("No matching blocks"), nil
	}
	return jsonResult(bounds)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.store.Undo() {
		return textResult("Nothing to undo"), nil
	}
	s.emitCanvasChanged(ctx, "undo")
	return textResult(fmt.Sprintf("Undone, %d blocks on canvas", len(s.store.Order()))), nil
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.store.Redo() {
		return textResult("Nothing to redo"), nil
	}
	s.emitCanvasChanged(ctx, "redo")
	return textResult(fmt.Sprintf("Redone, %d blocks on canvas", len(s.store.Order()))), nil
}

func (s *Server) handleSetCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var patch editor.SizePatch
	if w, ok := args["width"].(float64); ok {
		patch.Width = &w
	}
	if h, ok := args["height"].(float64); ok {
		patch.Height = &h
	}
	bg, hasBG := args["background"].(string)
	if patch.Width == nil && patch.Height == nil && !hasBG {
		return nil, fmt.Errorf("nothing to change: pass width, height or background")
	}

	changed := false
	if patch.Width != nil || patch.Height != nil {
		if !s.store.UpdateCanvasSize(patch) {
			return nil, fmt.Errorf("canvas size must be >= 0")
		}
		changed = true
	}
	if hasBG && s.store.SetCanvasBackground(bg) {
		changed = true
	}
	if changed {
		s.emitCanvasChanged(ctx, "set_canvas")
	}
	canvas := s.store.Canvas()
	return jsonResult(map[string]any{"size": canvas.Size, "background": canvas.Background})
}

func (s *Server) handleSaveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.documents.Save(ctx); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	doc, _ := s.documents.Current()
	return jsonResult(doc)
}
