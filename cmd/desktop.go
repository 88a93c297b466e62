package cmd

import (
	"github.com/spf13/cobra"

	"column/internal/app"
)

var desktopCmd = &cobra.Command{
	Use:   "desktop",
	Short: "Open the editor in a desktop window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		return app.New(log).Run(cmd.Context(), cfg)
	},
}
