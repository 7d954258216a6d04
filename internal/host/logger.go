package host

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"
)

// NewLogger returns the named root logger. verbose selects debug output, quiet
// limits output to errors. Colour is only used when out is a terminal.
func NewLogger(name string, out *os.File, verbose, quiet bool) hclog.Logger {
	level := hclog.Info
	switch {
	case verbose:
		level = hclog.Debug
	case quiet:
		level = hclog.Error
	}

	colour := hclog.ColorOff
	if term.IsTerminal(int(out.Fd())) {
		colour = hclog.AutoColor
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Output: out,
		Level:  level,
		Color:  colour,
	})
}
