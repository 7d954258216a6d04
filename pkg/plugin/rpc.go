package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// ModuleRPC implements the go-plugin Plugin interface for modules.
type ModuleRPC struct {
	plugin.Plugin
	Impl Module
}

// Server returns an RPC server for this plugin.
func (p *ModuleRPC) Server(*plugin.MuxBroker) (any, error) {
	return &ModuleRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *ModuleRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &ModuleRPCClient{client: c}, nil
}

// ModuleRPCServer is the RPC server implementation for modules.
type ModuleRPCServer struct {
	Impl Module
}

// Render implements the RPC method for rendering the widget.
func (s *ModuleRPCServer) Render(_ any, resp *Widget) error {
	w, err := s.Impl.Render(context.Background())
	if err != nil {
		return err
	}
	*resp = w
	return nil
}

// OnClick implements the RPC method for click handling.
func (s *ModuleRPCServer) OnClick(event ClickEvent, resp *string) error {
	if err := s.Impl.OnClick(context.Background(), event); err != nil {
		*resp = err.Error()
	}
	return nil
}

// GetMetadata implements the RPC method for fetching module metadata.
func (s *ModuleRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// ModuleRPCClient is the RPC client implementation for modules.
type ModuleRPCClient struct {
	client *rpc.Client
}

// NewModuleRPCClient wraps an established RPC client.
func NewModuleRPCClient(c *rpc.Client) *ModuleRPCClient {
	return &ModuleRPCClient{client: c}
}

// Render calls the remote Render method.
func (c *ModuleRPCClient) Render(_ context.Context) (Widget, error) {
	var w Widget
	err := c.client.Call("Plugin.Render", new(any), &w)
	return w, err
}

// OnClick calls the remote OnClick method.
func (c *ModuleRPCClient) OnClick(_ context.Context, event ClickEvent) error {
	var errMsg string
	if err := c.client.Call("Plugin.OnClick", event, &errMsg); err != nil {
		return err
	}
	if errMsg != "" {
		return &RPCError{Message: errMsg}
	}
	return nil
}

// GetMetadata calls the remote GetMetadata method.
func (c *ModuleRPCClient) GetMetadata() PluginInfo {
	var info PluginInfo
	if err := c.client.Call("Plugin.GetMetadata", new(any), &info); err != nil {
		return PluginInfo{}
	}
	return info
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
