package plugin

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"testing"
)

// Mock implementation for testing.
type mockModule struct {
	widget    Widget
	metadata  PluginInfo
	renderErr error
	clickErr  error
	clicks    []ClickEvent
}

func (m *mockModule) Render(_ context.Context) (Widget, error) {
	if m.renderErr != nil {
		return Widget{}, m.renderErr
	}
	return m.widget, nil
}

func (m *mockModule) OnClick(_ context.Context, event ClickEvent) error {
	m.clicks = append(m.clicks, event)
	return m.clickErr
}

func (m *mockModule) GetMetadata() PluginInfo {
	return m.metadata
}

func newMockModule() *mockModule {
	return &mockModule{
		widget: Widget{
			FullText:  "💡 lounge 23 ● #E05B22",
			Name:      "lounge",
			Color:     "#E05B22",
			Icon:      "💡",
			IconColor: "●",
			Leds:      23,
		},
		metadata: PluginInfo{
			Name:            "lights",
			Type:            ModuleName,
			Version:         "1.0.0",
			ProtocolVersion: ProtocolVersion,
			Description:     "Test module",
			PluginProtocol:  string(PluginTypeGoPlugin),
		},
	}
}

// connect serves impl over an in-memory connection the way go-plugin's
// net/rpc transport does and returns a client for it.
func connect(t *testing.T, impl Module) *ModuleRPCClient {
	t.Helper()

	raw, err := (&ModuleRPC{Impl: impl}).Server(nil)
	if err != nil {
		t.Fatalf("Server() error = %v", err)
	}

	server := rpc.NewServer()
	if err := server.RegisterName("Plugin", raw); err != nil {
		t.Fatalf("RegisterName() error = %v", err)
	}

	serverConn, clientConn := net.Pipe()
	go server.ServeConn(serverConn)

	client := rpc.NewClient(clientConn)
	t.Cleanup(func() { client.Close() })

	return NewModuleRPCClient(client)
}

// TestModuleRPC tests the module RPC wrapper.
func TestModuleRPC(t *testing.T) {
	mock := newMockModule()
	p := &ModuleRPC{Impl: mock}

	t.Run("Server", func(t *testing.T) {
		server, err := p.Server(nil)
		if err != nil {
			t.Fatalf("Server() error = %v", err)
		}
		rpcServer, ok := server.(*ModuleRPCServer)
		if !ok {
			t.Fatal("Server() returned wrong type")
		}
		if rpcServer.Impl != mock {
			t.Fatal("Server() impl not set correctly")
		}
	})

	t.Run("Client", func(t *testing.T) {
		client, err := p.Client(nil, nil)
		if err != nil {
			t.Fatalf("Client() error = %v", err)
		}
		if _, ok := client.(*ModuleRPCClient); !ok {
			t.Fatal("Client() returned wrong type")
		}
	})

	t.Run("PluginMap", func(t *testing.T) {
		m := PluginMap(mock)
		if _, ok := m[ModuleName].(*ModuleRPC); !ok {
			t.Fatalf("PluginMap()[%q] has wrong type", ModuleName)
		}
	})
}

// TestModuleRPCRoundTrip exercises every method across a real RPC connection.
func TestModuleRPCRoundTrip(t *testing.T) {
	mock := newMockModule()
	client := connect(t, mock)
	ctx := context.Background()

	t.Run("Render", func(t *testing.T) {
		w, err := client.Render(ctx)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if w != mock.widget {
			t.Errorf("Render() = %+v, want %+v", w, mock.widget)
		}
	})

	t.Run("OnClick", func(t *testing.T) {
		event := ClickEvent{Name: "lights", Instance: "lounge", Button: ButtonScrollUp, Modifiers: []string{"Shift"}}
		if err := client.OnClick(ctx, event); err != nil {
			t.Fatalf("OnClick() error = %v", err)
		}
		if len(mock.clicks) != 1 || mock.clicks[0].Button != ButtonScrollUp || mock.clicks[0].Instance != "lounge" {
			t.Errorf("server received %+v", mock.clicks)
		}
	})

	t.Run("GetMetadata", func(t *testing.T) {
		info := client.GetMetadata()
		if info != mock.metadata {
			t.Errorf("GetMetadata() = %+v, want %+v", info, mock.metadata)
		}
	})
}

func TestModuleRPCErrors(t *testing.T) {
	mock := newMockModule()
	mock.renderErr = errors.New("render failed")
	mock.clickErr = errors.New("click failed")
	client := connect(t, mock)

	if _, err := client.Render(context.Background()); err == nil || err.Error() != "render failed" {
		t.Errorf("Render() error = %v, want render failed", err)
	}

	err := client.OnClick(context.Background(), ClickEvent{Button: ButtonLeft})
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Message != "click failed" {
		t.Errorf("OnClick() error = %v, want RPCError(click failed)", err)
	}
}
