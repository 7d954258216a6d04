package lights

import (
	"fmt"

	"github.com/bbusse/lights/internal/host"
)

// Storage keys.
const (
	keyLeds     = "leds"
	keyColor    = "color"
	keyColorIdx = "color_idx"
)

// DefaultLedsOn is the number of lit LEDs on first run.
const DefaultLedsOn = 23

// State is the mutable part of a light, persisted after every click.
type State struct {
	Leds     int    `json:"leds"`
	Color    string `json:"color"`
	ColorIdx int    `json:"color_idx"`
}

// loadState reads the state from storage; keys that were never stored take
// their first-run defaults.
func loadState(s host.Storage, colorGood string) (State, error) {
	st := State{Leds: DefaultLedsOn, Color: colorGood}

	if _, err := s.Get(keyLeds, &st.Leds); err != nil {
		return st, fmt.Errorf("failed to load %s: %w", keyLeds, err)
	}
	if _, err := s.Get(keyColor, &st.Color); err != nil {
		return st, fmt.Errorf("failed to load %s: %w", keyColor, err)
	}
	if _, err := s.Get(keyColorIdx, &st.ColorIdx); err != nil {
		return st, fmt.Errorf("failed to load %s: %w", keyColorIdx, err)
	}
	if st.Color == "" {
		st.Color = colorGood
	}
	return st, nil
}

func storeState(s host.Storage, st State) error {
	if err := s.Set(keyLeds, st.Leds); err != nil {
		return fmt.Errorf("failed to store %s: %w", keyLeds, err)
	}
	if err := s.Set(keyColor, st.Color); err != nil {
		return fmt.Errorf("failed to store %s: %w", keyColor, err)
	}
	if err := s.Set(keyColorIdx, st.ColorIdx); err != nil {
		return fmt.Errorf("failed to store %s: %w", keyColorIdx, err)
	}
	return nil
}
