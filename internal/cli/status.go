package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bbusse/lights/internal/config"
	"github.com/bbusse/lights/internal/host"
	"github.com/bbusse/lights/internal/lights"
	"github.com/bbusse/lights/pkg/plugin"
)

// waybarOutput is the JSON accepted by waybar custom modules with return-type json.
type waybarOutput struct {
	Text       string `json:"text"`
	Alt        string `json:"alt"`
	Tooltip    string `json:"tooltip"`
	Class      string `json:"class"`
	Percentage int    `json:"percentage"`
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the widget of a light",
		Long: `Print the current widget of a light without touching the strip.

The default output is meant for a waybar custom module:

  "custom/lights": {
    "exec": "lights status",
    "return-type": "json",
    "signal": 8,
    "on-click": "lights click 1",
    "on-click-middle": "lights click 2",
    "on-click-right": "lights click 3",
    "on-scroll-up": "lights click 4",
    "on-scroll-down": "lights click 5"
  }

Use --format widget to print the raw widget record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, light, err := opts.loadLight(cmd)
			if err != nil {
				return err
			}

			m, err := opts.newModule(cmd.Context(), cfg, light, host.NopRefresher{}, lights.WithSender(discardSender{}))
			if err != nil {
				return err
			}
			defer m.Close()

			return writeStatus(cmd.OutOrStdout(), light, m.Widget(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "waybar", "output format (waybar, widget)")

	return cmd
}

func writeStatus(out io.Writer, light config.Light, w plugin.Widget, format string) error {
	var v any
	switch format {
	case "waybar":
		v = waybarOutput{
			Text:       w.FullText,
			Alt:        w.Color,
			Tooltip:    fmt.Sprintf("%s: %d/%d LEDs %s (%s)", light.Name, w.Leds, light.Total(), w.Color, light.Address()),
			Class:      light.Name,
			Percentage: percentage(w.Leds, light.Total()),
		}
	case "widget":
		v = w
	default:
		return fmt.Errorf("unknown format %q (expected waybar or widget)", format)
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func percentage(leds, total int) int {
	if total <= 0 {
		return 0
	}
	return leds * 100 / total
}
