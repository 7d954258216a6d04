package plugin

// PluginInfo contains metadata about a module.
type PluginInfo struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"`
}

// Widget is the rendered state of a module, consumed by the bar.
type Widget struct {
	FullText  string `json:"full_text"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	IconColor string `json:"icon_color"`
	Leds      int    `json:"leds"`
}

// Mouse buttons as reported by i3bar-compatible bars.
const (
	ButtonLeft       = 1
	ButtonMiddle     = 2
	ButtonRight      = 3
	ButtonScrollUp   = 4
	ButtonScrollDown = 5
)

// ClickEvent is a click on a widget.
type ClickEvent struct {
	Name      string   `json:"name"`
	Instance  string   `json:"instance"`
	Button    int      `json:"button"`
	Modifiers []string `json:"modifiers,omitempty"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
}
