package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured lights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			table := NewTable([]string{"NAME", "ADDRESS", "PROTO", "MODE", "LEDS", "SIGNAL", "COLORS"})
			table.SetColumnMaxWidth(6, 30)
			for _, l := range cfg.Lights {
				table.AddRow([]string{
					l.Name,
					l.Address(),
					l.Proto,
					l.Mode,
					strconv.Itoa(l.Total()),
					strconv.Itoa(l.Signal),
					strings.Join(l.Colors, " "),
				})
			}

			fmt.Fprint(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
}
