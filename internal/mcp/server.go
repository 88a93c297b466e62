package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"column/internal/domain"
	"column/internal/service"
)

// Server is the MCP server for the column editor.
// It exposes the editing session as tools so AI agents can write a column.
type Server struct {
	mcp *server.MCPServer
	log logrus.FieldLogger

	editor *service.EditorService
	view   *service.ViewService
	store  domain.KeyValue
}

// Deps holds the services shared with the other surfaces.
type Deps struct {
	Editor *service.EditorService
	View   *service.ViewService
	Store  domain.KeyValue
	Log    logrus.FieldLogger
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		log:    log.WithField("component", "mcp"),
		editor: deps.Editor,
		view:   deps.View,
		store:  deps.Store,
	}

	s.mcp = server.NewMCPServer(
		"column-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDocumentTools()
	s.registerStyleTools()
	s.registerViewTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// MCP returns the underlying server, for transports other than stdio.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ── Helpers ────────────────────────────────────────────────

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

// snapshot is what every editing tool returns.
type snapshot struct {
	Blocks     json.RawMessage `json:"blocks"`
	SelectedID string          `json:"selectedId"`
	Version    uint64          `json:"version"`
}

func (s *Server) documentResult(doc domain.Document) (*mcp.CallToolResult, error) {
	blocks, err := domain.Encode(doc.Blocks())
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return jsonResult(snapshot{Blocks: blocks, SelectedID: doc.SelectedID(), Version: s.editor.Version()})
}

// blockID returns the required blockId argument.
func blockID(args map[string]any) (string, error) {
	id, ok := args["blockId"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("blockId is required")
	}
	return id, nil
}

// stringArg reads a string argument; numbers are formatted so that clients
// sending fontSize as a number work too.
func stringArg(args map[string]any, key string) (string, bool) {
	switch v := args[key].(type) {
	case string:
		return v, true
	case float64:
		return fmt.Sprintf("%g", v), true
	}
	return "", false
}
