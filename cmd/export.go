package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"column/internal/render"
	"column/internal/service"
)

var exportFlags = struct {
	Output string
	Page   bool
}{}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the saved column as HTML",
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
		if view.State != service.ViewPopulated {
			return fmt.Errorf("%s nothing to export", noContent)
		}

		var out io.Writer = cmd.OutOrStdout()
		if exportFlags.Output != "" && exportFlags.Output != "-" {
			f, err := os.Create(exportFlags.Output)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportFlags.Output, err)
			}
			defer f.Close()
			out = f
		}
		if err := writeExport(out, view, exportFlags.Page); err != nil {
			return err
		}
		log.WithField("blocks", len(view.Blocks)).Debug("exported")
		return nil
	},
}

func writeExport(w io.Writer, view service.View, page bool) error {
	if page {
		if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Column</title></head><body>\n"); err != nil {
			return err
		}
	}
	if err := render.HTML(w, view.Blocks, render.Options{}); err != nil {
		return err
	}
	if page {
		if _, err := io.WriteString(w, "\n</body></html>\n"); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.Output, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportFlags.Page, "page", false, "wrap the blocks in a complete HTML page")
}
