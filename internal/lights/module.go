// Package lights implements the LED status widget: click handling, frame
// encoding and persistence of the light's state.
package lights

import (
	"context"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/bbusse/lights/internal/colour"
	"github.com/bbusse/lights/internal/config"
	"github.com/bbusse/lights/internal/host"
	"github.com/bbusse/lights/internal/picker"
	"github.com/bbusse/lights/internal/transport"
	"github.com/bbusse/lights/internal/version"
	"github.com/bbusse/lights/pkg/plugin"
)

// FrameSender delivers encoded frames. Implementations must not fail loudly.
type FrameSender interface {
	Send(frame string)
}

// Option configures a Module.
type Option func(*Module)

// WithSender replaces the UDP transport.
func WithSender(s FrameSender) Option {
	return func(m *Module) { m.sender = s }
}

// WithPickerStarter replaces how the colour picker process is started.
func WithPickerStarter(s picker.Starter) Option {
	return func(m *Module) { m.starter = s }
}

// Module is one light in the bar.
type Module struct {
	cfg    config.Light
	host   *host.Host
	logger hclog.Logger

	sender  FrameSender
	starter picker.Starter
	picker  *picker.Picker

	state State
}

var _ plugin.Module = (*Module)(nil)

// New creates the module for cfg, restores its state from the host's storage
// and opens the socket unless a sender was supplied.
func New(ctx context.Context, cfg config.Light, h *host.Host, opts ...Option) *Module {
	if h == nil {
		h = &host.Host{}
	}
	if h.Storage == nil {
		h.Storage = host.NewMemoryStorage()
	}
	if h.ColorGood == "" {
		h.ColorGood = cfg.ColorGood
	}

	m := &Module{
		cfg:    cfg,
		host:   h,
		logger: h.Log().Named(cfg.Name),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.picker = picker.New(cfg.ColorPicker, m.starter, m.logger.Named("picker"))

	if !m.hasStoredState() {
		m.logger.Warn("storage empty, setting initial values")
	}
	st, err := loadState(h.Storage, h.ColorGood)
	if err != nil {
		m.logger.Error("failed to restore state, using defaults", "error", err)
	}
	m.state = st

	if m.sender == nil {
		s := transport.NewSender(cfg.Address(), m.logger.Named("transport"))
		s.Open(ctx)
		m.sender = s
	}

	return m
}

func (m *Module) hasStoredState() bool {
	var leds int
	found, _ := m.host.Storage.Get(keyLeds, &leds)
	return found
}

// State returns a copy of the current state.
func (m *Module) State() State {
	return m.state
}

// HandleClick applies a click on button and persists the resulting state.
// Sending and storage failures are logged, never returned.
func (m *Module) HandleClick(ctx context.Context, button int) {
	switch button {
	case plugin.ButtonLeft:
		if len(m.cfg.Colors) == 0 {
			m.logger.Error("no colours configured")
			break
		}
		m.state.ColorIdx = nextIndex(m.state.ColorIdx, len(m.cfg.Colors))
		m.state.Color = m.cfg.Colors[m.state.ColorIdx]
		m.sendFrame()

	case plugin.ButtonMiddle:
		m.pickColors(ctx)

	case plugin.ButtonRight:
		m.state.Color = colour.Off
		m.sendFrame()
		// The bar shows the idle colour while the strip is off.
		m.state.Color = m.host.ColorGood

	case plugin.ButtonScrollUp:
		if m.state.Leds < m.cfg.Total() {
			m.state.Leds++
			m.sendFrame()
		}

	case plugin.ButtonScrollDown:
		if m.state.Leds > 0 {
			m.state.Leds--
			m.sendFrame()
		}

	default:
		m.logger.Debug("ignoring click", "button", button)
	}

	if err := m.Save(); err != nil {
		m.logger.Error("failed to store state", "error", err)
	}
}

// Save persists the current state to the host storage.
func (m *Module) Save() error {
	return storeState(m.host.Storage, m.state)
}

// pickColors sends every colour the picker prints, as soon as it is printed.
func (m *Module) pickColors(ctx context.Context) {
	stream, err := m.picker.Stream(ctx)
	if err != nil {
		m.logger.Error("failed to run colour picker", "error", err)
		return
	}

	for c := range stream.All() {
		m.state.Color = c
		m.logger.Info("colour picked", "color", c)
		m.sendFrame()
		m.host.Refresh()
	}

	if err := stream.Close(); err != nil {
		m.logger.Warn("colour picker failed", "error", err)
	}
}

func (m *Module) sendFrame() {
	frame, ok := EncodeFrame(m.cfg.Proto, m.state.Leds, m.cfg.Total(), m.cfg.Mode, m.state.Color)
	if !ok {
		m.logger.Debug("no frame to send", "mode", m.cfg.Mode, "leds", m.state.Leds)
		return
	}
	m.sender.Send(frame)
}

// Widget renders the current state.
func (m *Module) Widget() plugin.Widget {
	params := map[string]any{
		"name":       m.cfg.Name,
		"color":      m.state.Color,
		"icon":       m.cfg.Icon,
		"icon_color": m.cfg.IconColor,
		"leds":       m.state.Leds,
	}

	return plugin.Widget{
		FullText:  host.SafeFormat(m.cfg.Format, params),
		Name:      m.cfg.Name,
		Color:     m.state.Color,
		Icon:      m.cfg.Icon,
		IconColor: m.cfg.IconColor,
		Leds:      m.state.Leds,
	}
}

// Render implements plugin.Module.
func (m *Module) Render(_ context.Context) (plugin.Widget, error) {
	return m.Widget(), nil
}

// OnClick implements plugin.Module.
func (m *Module) OnClick(ctx context.Context, event plugin.ClickEvent) error {
	m.HandleClick(ctx, event.Button)
	return nil
}

// GetMetadata implements plugin.Module.
func (m *Module) GetMetadata() plugin.PluginInfo {
	return Info()
}

// Info describes this module to plugin hosts.
func Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            "lights",
		Type:            plugin.ModuleName,
		Version:         version.Short(),
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "Control LED strips over UDP",
		PluginProtocol:  string(plugin.PluginTypeGoPlugin),
	}
}

// Close releases the socket.
func (m *Module) Close() error {
	if c, ok := m.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// nextIndex advances i circularly over n entries.
func nextIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i+1)%n + n) % n
}
