package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/bbusse/lights/internal/bar"
	"github.com/bbusse/lights/internal/plugin/executor"
)

func newBarCmd(opts *rootOptions) *cobra.Command {
	var pluginCmds []string

	cmd := &cobra.Command{
		Use:   "bar",
		Short: "Run as an i3bar/swaybar status command",
		Long: `Speak the i3bar protocol on stdout and handle click events from stdin.

Every configured light (or only --name) becomes one block. Modules served by
other binaries can be added with --plugin; the value is a command line,
optionally prefixed with an instance name. Without a prefix the module's
reported name is used, suffixed with -2, -3... when already taken:

  lights bar --plugin "desk=lights serve --name desk --config /etc/lights.yaml"

sway example:

  bar {
    status_command lights bar
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			interval, err := cfg.RefreshInterval()
			if err != nil {
				return err
			}
			selected, err := opts.selectLights(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b := bar.New(cmd.OutOrStdout(), opts.logger.Named("bar"), interval)

			for _, light := range selected {
				m, err := opts.newModule(ctx, cfg, light, b)
				if err != nil {
					return err
				}
				defer m.Close()
				if err := b.Add(light.Name, m); err != nil {
					return err
				}
			}

			for _, arg := range pluginCmds {
				instance, argv, err := parsePluginArg(arg)
				if err != nil {
					return err
				}

				e := executor.New(argv, opts.logger)
				if err := e.Start(ctx); err != nil {
					return err
				}
				defer e.Close()

				if instance == "" {
					instance = b.FreeInstance(e.GetMetadata().Name)
				}
				if err := b.Add(instance, e); err != nil {
					return err
				}
			}

			return b.Run(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringArrayVar(&pluginCmds, "plugin", nil, "module command line, [instance=]command args... (repeatable)")

	return cmd
}

// parsePluginArg splits "[instance=]command args..." into its parts.
func parsePluginArg(arg string) (string, []string, error) {
	var instance string
	if before, after, found := strings.Cut(arg, "="); found && !strings.ContainsAny(before, " \t'\"") {
		instance, arg = before, after
	}

	argv, err := shlex.Split(arg)
	if err != nil {
		return "", nil, fmt.Errorf("invalid plugin command %q: %w", arg, err)
	}
	if len(argv) == 0 {
		return "", nil, fmt.Errorf("empty plugin command")
	}
	return instance, argv, nil
}
