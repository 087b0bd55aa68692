package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"canvas/internal/domain"
)

const (
	templateURI      = "canvas://template"
	blockURIPrefix   = "canvas://block/"
	blockURITemplate = blockURIPrefix + "{id}"
)

func (s *Server) registerResources() {
	// ── canvas://template ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		templateURI,
		"Canvas Template",
		mcp.WithResourceDescription("The full canvas: size, background and blocks in z-order"),
		mcp.WithMIMEType("application/json"),
	), s.handleTemplateResource)

	// ── canvas://block/{id} ────────────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			blockURITemplate,
			"Canvas Block",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleBlockResource,
	)
}

func (s *Server) handleTemplateResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.store.Template(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal template: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      templateURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleBlockResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := extractBlockIDFromURI(uri)
	if id == "" {
		return nil, fmt.Errorf("could not extract block id from URI: %s", uri)
	}
	b, ok := s.store.Block(id)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeNotFound, "block %s not found", id)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal block: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// extractBlockIDFromURI parses canvas://block/{id}.
func extractBlockIDFromURI(uri string) string {
	id, ok := strings.CutPrefix(uri, blockURIPrefix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
