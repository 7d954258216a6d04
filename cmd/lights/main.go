// lights - LED strip control for status bars
//
// lights sends colour frames to network LED controllers over UDP and shows
// the strip's state as a clickable widget in waybar, swaybar or i3bar.
package main

import (
	"github.com/bbusse/lights/internal/cli"
)

func main() {
	cli.Execute()
}
