package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"column/internal/config"
)

var (
	flags = struct {
		ConfigFile string
		LogLevel   string
	}{}

	root = &cobra.Command{
		Use:   "column",
		Short: "Column is a block-based column editor",
		Long: `Column edits a single column of text, image, divider and link blocks
and saves it under one storage key. Run "column serve" for the browser editor,
"column desktop" for the window, or "column mcp" to let an agent write it.`,
		SilenceUsage: true,
	}
)

func init() {
	root.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", config.DefaultFile, "configuration file")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "override the configured log level")
	root.AddCommand(serveCmd, desktopCmd, mcpCmd, catCmd, exportCmd)
}

// setup loads the config and builds the logger every command shares. Logs go
// to stderr so stdout stays free for output and the MCP protocol.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	log, err := cfg.Logger(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("config", flags.ConfigFile).Debug("config loaded")
	return cfg, log, nil
}

func Execute() {
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
