package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"column/internal/render"
	"column/internal/service"
)

const noContent = "No content found. Use add_block and submit_document to write a column."

func (s *Server) registerViewTools() {
	s.mcp.AddTool(mcp.NewTool("render_view",
		mcp.WithDescription("Render the saved column as the read-only view shows it"),
		mcp.WithString("format", mcp.Description("markdown (default) or html")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleRenderView)
}

func (s *Server) handleRenderView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, _ := req.GetArguments()["format"].(string)
	v := s.view.Load(ctx)
	if v.State != service.ViewPopulated {
		return textResult(noContent), nil
	}

	switch format {
	case "", "markdown":
		return textResult(render.Markdown(v.Blocks)), nil
	case "html":
		out, err := render.String(v.Blocks, render.Options{})
		if err != nil {
			return nil, fmt.Errorf("render view: %w", err)
		}
		return textResult(out), nil
	}
	return nil, fmt.Errorf("unknown format %q, use markdown or html", format)
}
