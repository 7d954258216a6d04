package colour

import (
	"image/color"
	"testing"
)

func TestToRGB(t *testing.T) {
	tests := []struct {
		name  string
		color color.Color
		want  RGB
	}{
		{
			name:  "red",
			color: color.RGBA{R: 255, G: 0, B: 0, A: 255},
			want:  RGB{R: 255, G: 0, B: 0},
		},
		{
			name:  "grey",
			color: color.Gray{Y: 128},
			want:  RGB{R: 128, G: 128, B: 128},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToRGB(tt.color)
			if got != tt.want {
				t.Errorf("ToRGB() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRGBHex(t *testing.T) {
	rgb := RGB{R: 0x68, G: 0xD7, B: 0x4C}
	if got := rgb.Hex(); got != "#68D74C" {
		t.Errorf("Hex() = %s, want #68D74C", got)
	}
	if got := rgb.FrameHex(); got != "68D74C" {
		t.Errorf("FrameHex() = %s, want 68D74C", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    RGB
		wantErr bool
	}{
		{"#68D74C", RGB{R: 0x68, G: 0xD7, B: 0x4C}, false},
		{"e05b22", RGB{R: 0xE0, G: 0x5B, B: 0x22}, false},
		{"red", RGB{R: 255, G: 0, B: 0}, false},
		{"Teal", RGB{R: 0, G: 128, B: 128}, false},
		{"#12345", RGB{}, true},
		{"#GGGGGG", RGB{}, true},
		{"", RGB{}, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestFrameColor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#68D74C", "68D74C"},
		{"c60d12", "c60d12"},
		{"blue", "0000FF"},
		{Off, Off},
		{"not a colour", "not a colour"},
	}

	for _, tt := range tests {
		if got := FrameColor(tt.input); got != tt.want {
			t.Errorf("FrameColor(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
