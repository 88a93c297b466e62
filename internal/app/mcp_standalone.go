package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"column/internal/config"
	mcpserver "column/internal/mcp"
)

// ServeMCP runs the editor as a standalone MCP server on stdin/stdout with no
// GUI. Submits land in the configured store, where a running desktop or web
// surface picks them up.
func ServeMCP(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) error {
	svcs, err := Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svcs.Close()

	srv := mcpserver.New(mcpserver.Deps{
		Editor: svcs.Editor,
		View:   svcs.View,
		Store:  svcs.Backend.Documents,
		Log:    log,
	})
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
