// Package plugin provides the public API for out-of-process light modules.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current module API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "0.1.0"

	// MinCompatibleVersion is the oldest protocol version this host can work with.
	MinCompatibleVersion = "0.1.0"

	// ModuleName is the name modules are dispensed under.
	ModuleName = "module"
)

// Handshake is the handshake configuration for go-plugin protocol.
// This ensures that modules using go-plugin can only connect to compatible hosts.
//
// NOTE: go-plugin's ProtocolVersion is a single uint that must match exactly.
// The major version of ProtocolVersion is used here; the full semantic check
// happens via the --plugin-info query and IsCompatible().
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  uint(GetCurrentVersion().Major),
	MagicCookieKey:   "LIGHTS_PLUGIN",
	MagicCookieValue: "lights_led_module",
}

// PluginType defines the type of plugin communication protocol.
type PluginType string

const (
	// PluginTypeGoPlugin indicates the module uses HashiCorp go-plugin RPC protocol.
	PluginTypeGoPlugin PluginType = "go-plugin"
)

// PluginMap returns the plugin set served and consumed by lights.
func PluginMap(impl Module) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		ModuleName: &ModuleRPC{Impl: impl},
	}
}
