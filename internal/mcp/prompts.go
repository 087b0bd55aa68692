package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("design_frame",
		mcp.WithPromptDescription("Guide through composing a titled frame with text, imagery and arrows"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the frame presents"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("style",
			mcp.ArgumentDescription("Visual direction, e.g. minimal, playful, corporate (optional)"),
		),
	), s.handleDesignFramePrompt)
}

func (s *Server) handleDesignFramePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	style := req.Params.Arguments["style"]
	if style == "" {
		style = "clean and minimal"
	}
	canvas := s.store.Canvas()

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Design a frame about: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Design a frame on the canvas about "%s" in a %s style.

The canvas is %.0f×%.0f. Coordinates are canvas pixels with y pointing down.

Steps:
1. Read canvas://template to see what is already there.
2. Create a background frame with create_frame_block (use a linear-gradient(...) background if it suits the style).
3. Add a title and one or two short paragraphs with create_text_block, placed inside the frame.
4. Add imagery with create_image_block where it helps.
5. Use connect_blocks or create_arrow_block to point at the key elements.
6. Check the result with selection_bounds and list_blocks; fix overlaps with update_block or arrange_blocks.

Keep text blocks within the frame and leave at least 24px of padding on every side.`, topic, style, canvas.Size.Width, canvas.Size.Height),
				},
			},
		},
	}, nil
}
