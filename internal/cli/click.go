package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bbusse/lights/internal/host"
	"github.com/bbusse/lights/internal/lights"
)

func newClickCmd(opts *rootOptions) *cobra.Command {
	var barProcess string

	cmd := &cobra.Command{
		Use:   "click <button>",
		Short: "Handle a click on the widget",
		Long: `Handle a click on the widget and update the strip.

Buttons:
  1  cycle through the palette
  2  stream colours from the colour picker
  3  switch the strip off
  4  light one more LED
  5  light one LED less

Other buttons are ignored. After the click the bar process is sent
SIGRTMIN+signal (see the light's signal setting) so it re-runs status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			button, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid button %q: %w", args[0], err)
			}

			cfg, light, err := opts.loadLight(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bar := host.NewSignalRefresher(barProcess, light.Signal, opts.logger.Named("refresh"))

			// The bar re-reads the stored state, so save before signalling.
			var m *lights.Module
			refresh := host.RefreshFunc(func() {
				if err := m.Save(); err != nil {
					opts.logger.Error("failed to store state", "error", err)
				}
				bar.Refresh()
			})

			m, err = opts.newModule(ctx, cfg, light, refresh)
			if err != nil {
				return err
			}
			defer m.Close()

			m.HandleClick(ctx, button)
			bar.Refresh()
			return nil
		},
	}

	cmd.Flags().StringVar(&barProcess, "bar-process", "waybar", "name of the bar process to signal")

	return cmd
}
