// Package colour converts user supplied colour strings into the form sent to LED controllers.
package colour

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// Off is the frame colour of an unlit LED.
const Off = "000000"

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a display hex string (e.g., "#1A2B3C").
func (rgb RGB) Hex() string {
	return "#" + rgb.FrameHex()
}

// FrameHex returns the six hex digits used for one LED in a frame.
func (rgb RGB) FrameHex() string {
	return fmt.Sprintf("%02X%02X%02X", rgb.R, rgb.G, rgb.B)
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// Parse parses "#RRGGBB", "RRGGBB" or an SVG colour name such as "teal".
func Parse(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return ToRGB(c), nil
	}

	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q: expected 6 hex digits or a colour name", s)
	}

	b, err := hex.DecodeString(digits)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}

	return RGB{R: b[0], G: b[1], B: b[2]}, nil
}

// IsValid reports whether s can be parsed as a colour.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// FrameColor normalises a colour for use in a frame body.
// Colour names are resolved and a leading '#' is dropped. Hex digits are kept
// as written. Strings that are not colours pass through so the failure
// surfaces when the frame is decoded for sending.
func FrameColor(s string) string {
	if c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(s))]; ok {
		return ToRGB(c).FrameHex()
	}
	return strings.TrimPrefix(s, "#")
}
