// Package host provides the collaborators a light module needs from the status
// bar it runs in: key/value storage, logging, text formatting and a way to ask
// the bar to redraw.
package host

import (
	"github.com/hashicorp/go-hclog"
)

// Storage persists small values by key across restarts.
type Storage interface {
	// Get decodes the value stored under key into v. It reports false when
	// the key has never been set.
	Get(key string, v any) (bool, error)

	// Set stores v under key.
	Set(key string, v any) error
}

// Refresher asks the host to redraw the widget.
type Refresher interface {
	Refresh()
}

// RefreshFunc adapts a function to the Refresher interface.
type RefreshFunc func()

// Refresh calls f.
func (f RefreshFunc) Refresh() { f() }

// NopRefresher ignores refresh requests.
type NopRefresher struct{}

// Refresh does nothing.
func (NopRefresher) Refresh() {}

// Host bundles the collaborators handed to a module at construction.
type Host struct {
	Storage   Storage
	Logger    hclog.Logger
	Refresher Refresher

	// ColorGood is the bar's "good" colour, shown while the light is idle.
	ColorGood string
}

// Log returns the host logger, or a null logger when none was set.
func (h *Host) Log() hclog.Logger {
	if h.Logger == nil {
		return hclog.NewNullLogger()
	}
	return h.Logger
}

// Refresh forwards to the configured Refresher, if any.
func (h *Host) Refresh() {
	if h.Refresher != nil {
		h.Refresher.Refresh()
	}
}
