package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"column/internal/app"
)

var serveFlags = struct {
	Listen string
	Open   bool
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editor and the view over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if serveFlags.Listen != "" {
			cfg.Listen = serveFlags.Listen
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		svcs, err := app.Build(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer svcs.Close()

		srv := svcs.Web()
		errc := make(chan error, 1)
		go func() { errc <- srv.Start(cfg.Listen) }()

		if serveFlags.Open || cfg.OpenBrowser {
			url := fmt.Sprintf("http://%s/", cfg.Listen)
			if err := browser.OpenURL(url); err != nil {
				log.WithError(err).Warn("open browser")
			}
		}

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		log.Info("shutting down")
		return srv.Shutdown(context.Background())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.Listen, "listen", "l", "", "address to listen on (default from config)")
	serveCmd.Flags().BoolVar(&serveFlags.Open, "open", false, "open the editor in the default browser")
}
