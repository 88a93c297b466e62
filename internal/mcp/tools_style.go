package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"column/internal/domain"
	"column/internal/toolbar"
)

func (s *Server) registerStyleTools() {
	s.mcp.AddTool(mcp.NewTool("update_block_style",
		mcp.WithDescription("Merge style fields into a text block. Omitted fields keep their value. Non-text blocks are left unchanged."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("format", mcp.Description("paragraph, heading1, heading2, heading3, list-item or code")),
		mcp.WithString("fontSize", mcp.Description(fmt.Sprintf("Font size in px, %d to %d", domain.MinFontSize, domain.MaxFontSize))),
		mcp.WithString("color", mcp.Description("Hex color such as #336699, or empty for the theme default")),
		mcp.WithString("textAlign", mcp.Description("left, center or right")),
		mcp.WithString("fontWeight", mcp.Description("normal or bold")),
		mcp.WithString("fontStyle", mcp.Description("normal or italic")),
		mcp.WithString("textDecoration", mcp.Description("none, underline or line-through")),
	), s.handleUpdateBlockStyle)

	s.mcp.AddTool(mcp.NewTool("toggle_style",
		mcp.WithDescription("Toggle a style field like a toolbar button: set the value, or reset the field when it already has it"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("field", mcp.Description("fontWeight, fontStyle, textDecoration or textAlign"), mcp.Required()),
		mcp.WithString("value", mcp.Description("Value to toggle, e.g. bold"), mcp.Required()),
	), s.handleToggleStyle)

	s.mcp.AddTool(mcp.NewTool("toggle_format",
		mcp.WithDescription("Set a block format, or go back to paragraph when the block already has it"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("format", mcp.Description("heading1, heading2, heading3, list-item or code"), mcp.Required()),
	), s.handleToggleFormat)
}

func (s *Server) handleUpdateBlockStyle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := blockID(args)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	for _, key := range toolbar.StyleKeys {
		if v, ok := stringArg(args, key); ok {
			fields[key] = v
		}
	}
	patch, err := toolbar.ParseStylePatch(fields)
	if err != nil {
		return nil, err
	}
	return s.documentResult(s.editor.UpdateStyle(ctx, id, patch))
}

func (s *Server) handleToggleStyle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := blockID(args)
	if err != nil {
		return nil, err
	}
	field, _ := args["field"].(string)
	value, _ := args["value"].(string)
	if field == "format" {
		return s.toggleFormat(ctx, id, value)
	}
	doc, err := s.editor.ToggleStyle(ctx, id, domain.StyleField(field), value)
	if err != nil {
		return nil, err
	}
	return s.documentResult(doc)
}

func (s *Server) handleToggleFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := blockID(args)
	if err != nil {
		return nil, err
	}
	format, _ := args["format"].(string)
	return s.toggleFormat(ctx, id, format)
}

func (s *Server) toggleFormat(ctx context.Context, id, value string) (*mcp.CallToolResult, error) {
	format, err := domain.ParseFormat(value)
	if err != nil {
		return nil, err
	}
	return s.documentResult(s.editor.ToggleFormat(ctx, id, format))
}
