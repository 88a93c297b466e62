package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"column/internal/domain"
)

func (s *Server) registerDocumentTools() {
	// ── get_document ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Return the column being edited: its blocks in order and the selected block. Set summary=true for a compact listing."),
		mcp.WithBoolean("summary", mcp.Description("Return one short line per block instead of the full payload")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleGetDocument)

	// ── add_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Insert a block right after the selected block. Image, divider and link blocks are followed by a new empty text block, which becomes selected."),
		mcp.WithString("type",
			mcp.Description("Block type: text, image, divider, link"),
			mcp.Required(),
		),
		mcp.WithString("content", mcp.Description("Text, image data URI, or link label (optional)")),
		mcp.WithString("url", mcp.Description("Link target, required for link blocks")),
	), s.handleAddBlock)

	// ── split_block ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("split_block",
		mcp.WithDescription("Start a new text block after the given one, like pressing Enter. The new block copies the style of a text block."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("Final content of the block being split (optional)")),
	), s.handleSplitBlock)

	// ── update_block_content ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block_content",
		mcp.WithDescription("Replace the content of a text, image or link block"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New content"), mcp.Required()),
	), s.handleUpdateBlockContent)

	// ── select_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_block",
		mcp.WithDescription("Select a block. New blocks are inserted after the selection."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleSelectBlock)

	// ── submit_document ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("submit_document",
		mcp.WithDescription("Save the column, replacing what was saved before, and start a new one. Blank text blocks are dropped."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleSubmitDocument)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleGetDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc := s.editor.Snapshot()
	if summary, _ := req.GetArguments()["summary"].(bool); summary {
		return jsonResult(summarizeBlocks(doc))
	}
	return s.documentResult(doc)
}

func (s *Server) handleAddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	typ, _ := args["type"].(string)
	kind, err := domain.ParseBlockType(typ)
	if err != nil {
		return nil, err
	}
	content, _ := args["content"].(string)
	url, _ := args["url"].(string)
	url = strings.TrimSpace(url)

	var opts []domain.BlockOption
	switch kind {
	case domain.BlockTypeLink:
		if url == "" {
			return nil, fmt.Errorf("url is required for link blocks")
		}
		if content == "" {
			content = url
		}
		opts = append(opts, domain.WithContent(content), domain.WithURL(url))
	case domain.BlockTypeText, domain.BlockTypeImage:
		opts = append(opts, domain.WithContent(content))
	}

	doc, err := s.editor.AddBlock(ctx, kind, opts...)
	if err != nil {
		return nil, fmt.Errorf("add block: %w", err)
	}
	return s.documentResult(doc)
}

func (s *Server) handleSplitBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := blockID(args)
	if err != nil {
		return nil, err
	}
	if content, ok := args["content"].(string); ok {
		s.editor.UpdateContent(ctx, id, content)
	}
	return s.documentResult(s.editor.SplitAfter(ctx, id))
}

func (s *Server) handleUpdateBlockContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := blockID(args)
	if err != nil {
		return nil, err
	}
	content, _ := args["content"].(string)
	if _, ok := s.editor.Snapshot().Block(id); !ok {
		return textResult(fmt.Sprintf("Block %s not found, nothing changed", id)), nil
	}
	s.editor.UpdateContent(ctx, id, content)
	return textResult(fmt.Sprintf("Block %s content updated", id)), nil
}

func (s *Server) handleSelectBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := blockID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	return s.documentResult(s.editor.Select(ctx, id))
}

func (s *Server) handleSubmitDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ev, err := s.editor.Submit(ctx)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	s.log.WithField("blocks", ev.Blocks).Info("column submitted")
	return jsonResult(ev)
}
