package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("write_column",
		mcp.WithPromptDescription("Guide through writing and saving a column about a topic"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the column is about"),
			mcp.RequiredArgument(),
		),
	), s.handleWriteColumnPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("restyle_column",
		mcp.WithPromptDescription("Review the current column and tidy up its formatting"),
	), s.handleRestylePrompt)
}

func (s *Server) handleWriteColumnPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Write a column about: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Write a short column about "%s". Follow these steps:

1. Call get_document to find the selected block.
2. Put the title in the selected block with update_block_content, then toggle_format it to heading1.
3. For each paragraph, call split_block on the last block and fill the new block with update_block_content.
4. Use list-item for enumerations and add a divider between sections with add_block.
5. Add links with add_block type=link, always with a url.
6. When done, call submit_document, then render_view to check the result.`, topic),
				},
			},
		},
	}, nil
}

func (s *Server) handleRestylePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Tidy up the formatting of the current column",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: `Read the column with get_document (summary=true) and fix its formatting:

1. Exactly one heading1, at the top. Demote other headings with toggle_format.
2. Consecutive short lines that enumerate things become list-item blocks.
3. Use update_block_style for emphasis sparingly: bold for key terms, a color only when it carries meaning.
4. Do not change the wording. Do not submit; leave that to the author.`,
				},
			},
		},
	}, nil
}
