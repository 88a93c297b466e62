package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"column/internal/domain"
)

const (
	documentURI = "column://document"
	savedURI    = "column://saved"
)

func (s *Server) registerResources() {
	// ── column://document ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		documentURI,
		"Column being edited",
		mcp.WithResourceDescription("Blocks of the current editing session, in storage format"),
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentResource)

	// ── column://saved ─────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		savedURI,
		"Saved column",
		mcp.WithResourceDescription("The payload stored by the last submit"),
		mcp.WithMIMEType("application/json"),
	), s.handleSavedResource)
}

func (s *Server) handleDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc := s.editor.Snapshot()
	blocks, err := domain.Encode(doc.Blocks())
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	data, err := json.MarshalIndent(snapshot{Blocks: blocks, SelectedID: doc.SelectedID(), Version: s.editor.Version()}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      documentURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleSavedResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	payload, found, err := s.store.Load(ctx, s.editor.Key())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.editor.Key(), err)
	}
	if !found {
		payload = "[]"
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      savedURI,
			MIMEType: "application/json",
			Text:     payload,
		},
	}, nil
}
