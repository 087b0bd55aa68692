package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"canvas/internal/domain"
	"canvas/internal/editor"
	"canvas/internal/service"
	"canvas/internal/storage"
)

// EventCanvasChanged is emitted after every tool call that changed the canvas.
const EventCanvasChanged = "mcp:canvas-changed"

// Server is the MCP server for the canvas.
// It exposes tools, resources, and prompts so AI agents can propose and edit blocks.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	layout   *LayoutEngine
	logger   *log.Logger

	store     *editor.Store
	proposals *service.ProposalService
	documents *service.DocumentService
}

// Deps holds everything the server needs from the application layer.
type Deps struct {
	Store     *editor.Store
	Proposals *service.ProposalService
	Documents *service.DocumentService // optional; enables save_document
	Emitter   EventEmitter
	Logger    *log.Logger

	Approvals   *storage.ApprovalStore // When set, approvals go through the approvals table
	AutoApprove bool

	Name    string
	Version string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	approval := NewApprovalQueue(deps.Emitter, logger)
	if deps.Approvals != nil {
		approval.SetStore(deps.Approvals)
	}
	approval.SetAutoApprove(deps.AutoApprove)

	name, version := deps.Name, deps.Version
	if name == "" {
		name = "canvas-mcp"
	}
	if version == "" {
		version = "1.0.0"
	}

	s := &Server{
		emitter:   deps.Emitter,
		approval:  approval,
		layout:    NewLayoutEngine(),
		logger:    logger,
		store:     deps.Store,
		proposals: deps.Proposals,
		documents: deps.Documents,
	}

	s.mcp = server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerBlockTools()
	s.registerCanvasTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio serves MCP on stdin/stdout until ctx is done or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("starting stdio server")
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) bool {
	return s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) bool {
	return s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// emitCanvasChanged notifies listeners that the canvas changed.
func (s *Server) emitCanvasChanged(ctx context.Context, tool string) {
	s.emitter.Emit(ctx, EventCanvasChanged, map[string]any{
		"tool":     tool,
		"revision": s.store.Revision(),
	})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// getBlockForTool retrieves the block named by the blockId argument.
func (s *Server) getBlockForTool(args map[string]any) (*domain.Block, error) {
	blockID, ok := args["blockId"].(string)
	if !ok || blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	b, ok := s.store.Block(blockID)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeNotFound, "block %s not found", blockID)
	}
	return b, nil
}
