package lights

import (
	"strings"

	"github.com/bbusse/lights/internal/colour"
)

// Protocols understood by EncodeFrame.
const (
	ProtocolRGB  = "rgb"
	ProtocolDRGB = "drgb"
)

// Placement modes.
const (
	ModeDefault    = "default"
	ModeCenter     = "center"
	ModeDistribute = "distribute"
)

// drgb header: protocol id 0x02, 0xFF keeps the frame until the next one arrives.
const drgbHeader = "02" + "FF"

// Header returns the hex header for a protocol. Protocols without a header return "".
func Header(protocol string) string {
	switch protocol {
	case ProtocolDRGB:
		return drgbHeader
	default:
		return ""
	}
}

// EncodeFrame builds the hex payload lighting ledsOn of totalLeds LEDs in color.
// The second return value is false when there is nothing to send, which only
// happens in distribute mode with no LEDs on.
func EncodeFrame(protocol string, ledsOn, totalLeds int, mode, color string) (string, bool) {
	color = colour.FrameColor(color)

	var b strings.Builder
	b.Grow(len(Header(protocol)) + 6*max(totalLeds, 0))
	b.WriteString(Header(protocol))

	switch mode {
	case ModeDefault, ModeCenter:
		start := 0
		if mode == ModeCenter {
			start = floorDiv(totalLeds-ledsOn, 2)
		}
		for n := 0; n < totalLeds; n++ {
			if n >= start && n < start+ledsOn {
				b.WriteString(color)
			} else {
				b.WriteString(colour.Off)
			}
		}

	case ModeDistribute:
		if ledsOn < 1 {
			return "", false
		}
		m := floorDiv(totalLeds, ledsOn)
		for n := 0; n < totalLeds; n++ {
			if m < 2 || n%m == 1 {
				b.WriteString(color)
			} else {
				b.WriteString(colour.Off)
			}
		}
	}

	return b.String(), true
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
