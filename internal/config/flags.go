package config

import (
	"net"
	"strconv"

	"github.com/spf13/pflag"
)

// Overrides holds command line overrides for a light.
type Overrides struct {
	Host        string
	Port        int
	Proto       string
	Mode        string
	LedsTotal   int
	ColorPicker Command
}

// RegisterFlags registers override flags on fs.
func (o *Overrides) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Host, "host", "", "override the controller host")
	fs.IntVar(&o.Port, "port", 0, "override the controller UDP port")
	fs.StringVar(&o.Proto, "proto", "", "override the frame protocol (rgb, drgb)")
	fs.StringVar(&o.Mode, "mode", "", "override the placement mode (default, center, distribute)")
	fs.IntVar(&o.LedsTotal, "leds-total", -1, "override the total number of LEDs")
	fs.Var(&o.ColorPicker, "color-picker", "override the colour picker command")
}

// Apply copies every flag that was changed on fs into l.
func (o *Overrides) Apply(fs *pflag.FlagSet, l *Light) {
	if fs.Changed("host") {
		l.Host = o.Host
	}
	if fs.Changed("port") {
		l.Port = o.Port
	}
	if fs.Changed("proto") {
		l.Proto = o.Proto
	}
	if fs.Changed("mode") {
		l.Mode = o.Mode
	}
	if fs.Changed("leds-total") {
		n := o.LedsTotal
		l.LedsTotal = &n
	}
	if fs.Changed("color-picker") {
		l.ColorPicker = append(Command(nil), o.ColorPicker...)
	}
}

func netJoin(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
