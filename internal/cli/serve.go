package cli

import (
	"encoding/json"

	goplugin "github.com/hashicorp/go-plugin"
	"github.com/spf13/cobra"

	"github.com/bbusse/lights/internal/host"
	"github.com/bbusse/lights/internal/lights"
	"github.com/bbusse/lights/pkg/plugin"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var pluginInfo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a light as a go-plugin module",
		Long: `Serve a light over the go-plugin RPC protocol.

This is started by plugin hosts, not by hand. Hosts first run
"lights serve --plugin-info" to check compatibility.

The host redraws after each click returns. While a middle click streams
colours from the colour picker the strip follows every colour, but the host
only shows the last one once the picker exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pluginInfo {
				enc := json.NewEncoder(cmd.OutOrStdout())
				return enc.Encode(lights.Info())
			}

			cfg, light, err := opts.loadLight(cmd)
			if err != nil {
				return err
			}

			// The plugin host redraws after every click.
			m, err := opts.newModule(cmd.Context(), cfg, light, host.NopRefresher{})
			if err != nil {
				return err
			}
			defer m.Close()

			goplugin.Serve(&goplugin.ServeConfig{
				HandshakeConfig: plugin.Handshake,
				Plugins:         plugin.PluginMap(m),
				Logger:          opts.logger,
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&pluginInfo, "plugin-info", false, "print module info as JSON and exit")

	return cmd
}
