// Package cli provides the command-line interface for lights.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/bbusse/lights/internal/config"
	"github.com/bbusse/lights/internal/host"
	"github.com/bbusse/lights/internal/lights"
	"github.com/bbusse/lights/internal/version"
)

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	configPath string
	name       string
	verbose    bool
	quiet      bool
	overrides  config.Overrides

	logger hclog.Logger
}

// NewRootCmd builds the lights command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "lights",
		Short: "Control network LED strips from your status bar",
		Long: `lights drives LED strip controllers (WLED and friends) over UDP and
shows their state as a clickable status bar widget.

Clicks cycle the palette, stream colours from a colour picker, switch the
strip off and grow or shrink the number of lit LEDs.

It runs as a waybar custom module (status/click), as an i3bar/swaybar
status command (bar) or as a go-plugin module for other hosts (serve).`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = host.NewLogger("lights", os.Stderr, opts.verbose, opts.quiet)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default: "+config.DefaultPath()+")")
	pf.StringVarP(&opts.name, "name", "n", "", "light to control (default: first light in config)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	opts.overrides.RegisterFlags(pf)

	cmd.SetVersionTemplate(version.String() + "\n")

	cmd.AddCommand(
		newStatusCmd(opts),
		newClickCmd(opts),
		newBarCmd(opts),
		newServeCmd(opts),
		newFrameCmd(opts),
		newListCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads and validates the config, applying command line overrides
// to every light.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	for i := range cfg.Lights {
		o.overrides.Apply(cmd.Flags(), &cfg.Lights[i])
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadLight loads the config and selects the light named by --name.
func (o *rootOptions) loadLight(cmd *cobra.Command) (*config.Config, config.Light, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, config.Light{}, err
	}
	light, err := cfg.Find(o.name)
	if err != nil {
		return nil, config.Light{}, err
	}
	return cfg, *light, nil
}

// selectLights returns the light named by --name, or every light.
func (o *rootOptions) selectLights(cfg *config.Config) ([]config.Light, error) {
	if o.name == "" {
		return cfg.Lights, nil
	}
	light, err := cfg.Find(o.name)
	if err != nil {
		return nil, err
	}
	return []config.Light{*light}, nil
}

// newModule creates a module whose state lives in the configured state dir.
func (o *rootOptions) newModule(ctx context.Context, cfg *config.Config, light config.Light, r host.Refresher, mopts ...lights.Option) (*lights.Module, error) {
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	storage, err := host.NewFileStorage(cfg.StateDir, light.Name)
	if err != nil {
		return nil, err
	}

	h := &host.Host{
		Storage:   storage,
		Logger:    o.logger,
		Refresher: r,
		ColorGood: light.ColorGood,
	}
	return lights.New(ctx, light, h, mopts...), nil
}

// discardSender is used by commands that only read state.
type discardSender struct{}

func (discardSender) Send(string) {}
