package plugin

import (
	"context"
)

// Module is the interface a light module implements, in process or over go-plugin RPC.
type Module interface {
	// Render returns the widget for the module's current state.
	Render(ctx context.Context) (Widget, error)

	// OnClick handles a click on the widget. It returns once every side
	// effect of the click has completed.
	OnClick(ctx context.Context, event ClickEvent) error

	// GetMetadata returns module metadata.
	GetMetadata() PluginInfo
}
