package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bbusse/lights/internal/host"
	"github.com/bbusse/lights/internal/lights"
	"github.com/bbusse/lights/internal/transport"
)

func newFrameCmd(opts *rootOptions) *cobra.Command {
	var (
		leds  int
		color string
		send  bool
	)

	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Print the frame for a light",
		Long: `Print the hex frame that would be sent for the stored state of a light.

--leds and --color replace the stored values. With --send the frame is
also sent to the controller. The stored state is never modified.`,
		Example: `  lights frame --proto drgb --leds-total 8 --leds 3 --color red
  lights frame --name lounge --mode center --send`,
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
			st := m.State()
			_ = m.Close()

			if cmd.Flags().Changed("leds") {
				st.Leds = leds
			}
			if cmd.Flags().Changed("color") {
				st.Color = color
			}

			frame, ok := lights.EncodeFrame(light.Proto, st.Leds, light.Total(), light.Mode, st.Color)
			if !ok {
				return fmt.Errorf("%s mode produces no frame for %d LEDs", light.Mode, st.Leds)
			}
			fmt.Fprintln(cmd.OutOrStdout(), frame)

			if !send {
				return nil
			}

			s := transport.NewSender(light.Address(), opts.logger.Named("transport"))
			s.Open(cmd.Context())
			defer s.Close()
			if !s.Ready() {
				return transport.ErrDisabled
			}
			s.Send(frame)
			return nil
		},
	}

	cmd.Flags().IntVar(&leds, "leds", 0, "number of lit LEDs (default: stored value)")
	cmd.Flags().StringVar(&color, "color", "", "colour as hex or name (default: stored value)")
	cmd.Flags().BoolVar(&send, "send", false, "send the frame to the controller")

	return cmd
}
