// Package config loads light definitions from YAML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"github.com/bbusse/lights/internal/colour"
)

// Defaults used when a field is left empty.
const (
	DefaultName       = "light"
	DefaultHost       = "localhost"
	DefaultPort       = 2342
	DefaultProtocol   = "rgb"
	DefaultLedsTotal  = 100
	DefaultMode       = "default"
	DefaultIcon       = "💡"
	DefaultIconColor  = "●"
	DefaultFormat     = "{icon} {name} {leds} {icon_color} {color}"
	DefaultColorGood  = "#00FF00"
	DefaultPickerName = "color_picker"
	DefaultInterval   = 5 * time.Second
)

// DefaultColors is the palette cycled by the primary button.
var DefaultColors = []string{"#68D74C", "#E05B22", "#C60D12"}

// Errors returned by Validate.
var (
	ErrEmptyPalette   = errors.New("palette must contain at least one colour")
	ErrNegativeLeds   = errors.New("leds_total must not be negative")
	ErrInvalidPort    = errors.New("port must be between 1 and 65535")
	ErrNoLights       = errors.New("no lights defined in config")
	ErrDuplicateLight = errors.New("duplicate light name")
)

// Command is an argument vector. In a config file it may be written as a
// list or as a single shell-quoted string.
type Command []string

// UnmarshalYAML accepts a sequence or a scalar.
func (c *Command) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return c.parse(node.Value)
	}
	var argv []string
	if err := node.Decode(&argv); err != nil {
		return err
	}
	*c = argv
	return nil
}

// UnmarshalJSON accepts an array or a string.
func (c *Command) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return c.parse(s)
	}
	var argv []string
	if err := json.Unmarshal(data, &argv); err != nil {
		return err
	}
	*c = argv
	return nil
}

// Set implements pflag.Value.
func (c *Command) Set(s string) error { return c.parse(s) }

// Type implements pflag.Value.
func (c *Command) Type() string { return "command" }

func (c *Command) String() string {
	if c == nil {
		return ""
	}
	return strings.Join(*c, " ")
}

func (c *Command) parse(s string) error {
	argv, err := shlex.Split(s)
	if err != nil {
		return fmt.Errorf("failed to parse command %q: %w", s, err)
	}
	*c = argv
	return nil
}

// Light is the static configuration of a single LED strip.
type Light struct {
	Name        string   `yaml:"name" json:"name"`
	Host        string   `yaml:"host" json:"host"`
	Port        int      `yaml:"port" json:"port"`
	Proto       string   `yaml:"proto" json:"proto"`
	LedsTotal   *int     `yaml:"leds_total" json:"leds_total"`
	Mode        string   `yaml:"mode" json:"mode"`
	Colors      []string `yaml:"colors" json:"colors"`
	ColorPicker Command  `yaml:"color_picker" json:"color_picker"`
	Format      string   `yaml:"format" json:"format"`
	Icon        string   `yaml:"icon" json:"icon"`
	IconColor   string   `yaml:"icon_color" json:"icon_color"`
	ColorGood   string   `yaml:"color_good" json:"color_good"`
	// Signal is the RTMIN offset waybar listens on for this module. Zero disables signalling.
	Signal int `yaml:"signal" json:"signal"`
}

// Total returns the configured LED count.
func (l *Light) Total() int {
	if l.LedsTotal == nil {
		return DefaultLedsTotal
	}
	return *l.LedsTotal
}

// Address returns host:port suitable for the net package.
func (l *Light) Address() string {
	return netJoin(l.Host, l.Port)
}

// Config is the file layout.
type Config struct {
	StateDir string  `yaml:"state_dir" json:"state_dir"`
	Interval string  `yaml:"interval" json:"interval"`
	Lights   []Light `yaml:"lights" json:"lights"`
}

// Default returns a configuration with a single default light.
func Default() *Config {
	cfg := &Config{Lights: []Light{{}}}
	ApplyDefaults(cfg)
	return cfg
}

// DefaultPath returns $XDG_CONFIG_HOME/lights/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".config", "lights", "config.yaml")
	}
	return filepath.Join(dir, "lights", "config.yaml")
}

// DefaultStateDir returns $XDG_STATE_HOME/lights, falling back to ~/.local/state/lights.
func DefaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "lights")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "state", "lights")
	}
	return filepath.Join(home, ".local", "state", "lights")
}

// Load reads a config file. An empty path loads DefaultPath and a missing
// default file yields Default().
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	path = expandPath(path)

	data, err := os.ReadFile(path) // #nosec G304 - user-specified config file
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes data according to ext (".yaml", ".yml", ".json"); any other
// extension tries YAML first, then JSON. Defaults are applied.
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			if jsonErr := json.Unmarshal(data, &cfg); jsonErr != nil {
				return nil, fmt.Errorf("failed to parse config as YAML or JSON: %w", err)
			}
		}
	}

	if len(cfg.Lights) == 0 {
		cfg.Lights = []Light{{}}
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills every empty field.
func ApplyDefaults(cfg *Config) {
	if cfg.StateDir == "" {
		cfg.StateDir = DefaultStateDir()
	}
	cfg.StateDir = expandPath(cfg.StateDir)
	if cfg.Interval == "" {
		cfg.Interval = DefaultInterval.String()
	}

	for i := range cfg.Lights {
		l := &cfg.Lights[i]
		if l.Name == "" {
			l.Name = DefaultName
		}
		if l.Host == "" {
			l.Host = DefaultHost
		}
		if l.Port == 0 {
			l.Port = DefaultPort
		}
		if l.Proto == "" {
			l.Proto = DefaultProtocol
		}
		if l.LedsTotal == nil {
			n := DefaultLedsTotal
			l.LedsTotal = &n
		}
		if l.Mode == "" {
			l.Mode = DefaultMode
		}
		if l.Colors == nil {
			l.Colors = append([]string(nil), DefaultColors...)
		}
		if len(l.ColorPicker) == 0 {
			l.ColorPicker = Command{DefaultPickerName}
		}
		if l.Format == "" {
			l.Format = DefaultFormat
		}
		if l.Icon == "" {
			l.Icon = DefaultIcon
		}
		if l.IconColor == "" {
			l.IconColor = DefaultIconColor
		}
		if l.ColorGood == "" {
			l.ColorGood = DefaultColorGood
		}
	}
}

// Validate checks the invariants of every light.
func Validate(cfg *Config) error {
	if len(cfg.Lights) == 0 {
		return ErrNoLights
	}

	seen := make(map[string]bool, len(cfg.Lights))
	for i := range cfg.Lights {
		l := &cfg.Lights[i]
		if seen[l.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateLight, l.Name)
		}
		seen[l.Name] = true

		if err := l.Validate(); err != nil {
			return fmt.Errorf("light %q: %w", l.Name, err)
		}
	}
	return nil
}

// Validate checks the invariants of a single light.
func (l *Light) Validate() error {
	if l.Total() < 0 {
		return ErrNegativeLeds
	}
	if len(l.Colors) == 0 {
		return ErrEmptyPalette
	}
	if l.Port < 1 || l.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, l.Port)
	}
	for _, c := range l.Colors {
		if !colour.IsValid(c) {
			return fmt.Errorf("palette entry %q is not a colour", c)
		}
	}
	if l.Signal < 0 {
		return fmt.Errorf("signal must not be negative: %d", l.Signal)
	}
	if l.Proto == "" || l.Mode == "" {
		return fmt.Errorf("proto and mode must be set")
	}
	return nil
}

// RefreshInterval parses Interval. An empty interval means DefaultInterval.
func (c *Config) RefreshInterval() (time.Duration, error) {
	if c.Interval == "" {
		return DefaultInterval, nil
	}
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", c.Interval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("interval must not be negative: %s", c.Interval)
	}
	return d, nil
}

// Find returns the light with the given name. An empty name selects the first light.
func (c *Config) Find(name string) (*Light, error) {
	if len(c.Lights) == 0 {
		return nil, ErrNoLights
	}
	if name == "" {
		return &c.Lights[0], nil
	}
	for i := range c.Lights {
		if c.Lights[i].Name == name {
			return &c.Lights[i], nil
		}
	}
	return nil, fmt.Errorf("light %q not found in config", name)
}

// applyEnv applies LIGHTS_* overrides to every light.
func applyEnv(cfg *Config) {
	for i := range cfg.Lights {
		l := &cfg.Lights[i]
		if v := os.Getenv("LIGHTS_HOST"); v != "" {
			l.Host = v
		}
		if v := os.Getenv("LIGHTS_PORT"); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				l.Port = port
			}
		}
		if v := os.Getenv("LIGHTS_PROTO"); v != "" {
			l.Proto = v
		}
		if v := os.Getenv("LIGHTS_MODE"); v != "" {
			l.Mode = v
		}
	}
}

// expandPath expands ~ to the home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
