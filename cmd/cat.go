package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"column/internal/config"
	"column/internal/render"
	"column/internal/secret"
	"column/internal/service"
	"column/internal/storage"
)

const noContent = "No content found."

var catFlags = struct {
	Width int
	Style string
	Raw   bool
}{}

var catCmd = &cobra.Command{
	Use:   "cat",
	Short: "Print the saved column in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		view, err := loadView(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if view.State != service.ViewPopulated {
			fmt.Fprintln(out, noContent)
			return nil
		}

		md := render.Markdown(view.Blocks)
		if catFlags.Raw {
			fmt.Fprint(out, md)
			return nil
		}
		style := glamour.WithAutoStyle()
		if catFlags.Style != "" {
			style = glamour.WithStandardStyle(catFlags.Style)
		}
		r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(catFlags.Width))
		if err != nil {
			return fmt.Errorf("terminal renderer: %w", err)
		}
		rendered, err := r.Render(md)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	catCmd.Flags().IntVarP(&catFlags.Width, "width", "w", 80, "wrap width")
	catCmd.Flags().StringVar(&catFlags.Style, "style", "", "glamour style: dark, light, notty (default auto)")
	catCmd.Flags().BoolVar(&catFlags.Raw, "raw", false, "print markdown without terminal styling")
}

// loadView opens the store just long enough to read the saved column.
func loadView(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (service.View, error) {
	backend, err := storage.Open(ctx, cfg.Store, cfg.DataDir, secret.Default())
	if err != nil {
		return service.View{}, fmt.Errorf("open store: %w", err)
	}
	defer backend.Close()
	return service.NewViewService(backend.Documents, cfg.StorageKey, log).Load(ctx), nil
}
