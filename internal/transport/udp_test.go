package transport

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
)

type fakeConn struct {
	writes [][]byte
	addrs  []net.Addr
	closed bool
	err    error
}

func (c *fakeConn) ReadFrom([]byte) (int, net.Addr, error) {
	return 0, nil, errors.New("not implemented")
}

func (c *fakeConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.writes = append(c.writes, append([]byte(nil), p...))
	c.addrs = append(c.addrs, addr)
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}
func (c *fakeConn) LocalAddr() net.Addr { return &net.UDPAddr{} }
func (c *fakeConn) SetDeadline(time.Time) error { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

// fakeResolver fails every network listed in errs and resolves the rest to addr.
type fakeResolver struct {
	errs  map[string]error
	addr  *net.UDPAddr
	calls []string
}

func (r *fakeResolver) ResolveUDPAddr(_ context.Context, network, _ string) (*net.UDPAddr, error) {
	r.calls = append(r.calls, network)
	if err, ok := r.errs[network]; ok {
		return nil, err
	}
	return r.addr, nil
}

type fakeListener struct {
	conns    map[string]*fakeConn
	errs     map[string]error
	networks []string
}

func (l *fakeListener) listen(network string) (net.PacketConn, error) {
	l.networks = append(l.networks, network)
	if err, ok := l.errs[network]; ok {
		return nil, err
	}
	c := &fakeConn{}
	if l.conns == nil {
		l.conns = make(map[string]*fakeConn)
	}
	l.conns[network] = c
	return c, nil
}

func TestOpenIPv4(t *testing.T) {
	resolver := &fakeResolver{addr: &net.UDPAddr{IP: net.IPv4(10, 0, 0, 9), Port: 2342}}
	listener := &fakeListener{}

	s := NewSender("10.0.0.9:2342", hclog.NewNullLogger(), WithResolver(resolver), WithListener(listener.listen))
	s.Open(context.Background())

	if !s.Ready() || s.Network() != "udp4" {
		t.Fatalf("Expected ready udp4 socket, got ready=%v network=%q", s.Ready(), s.Network())
	}
	if len(listener.networks) != 1 {
		t.Errorf("Expected one socket, got %v", listener.networks)
	}
}

func TestOpenFallsBackToIPv6OnResolutionError(t *testing.T) {
	resolver := &fakeResolver{
		errs: map[string]error{"udp4": &net.DNSError{Err: "no such host", Name: "lights.example", IsNotFound: true}},
		addr: &net.UDPAddr{IP: net.IPv6loopback, Port: 2342},
	}
	listener := &fakeListener{}

	s := NewSender("lights.example:2342", hclog.NewNullLogger(), WithResolver(resolver), WithListener(listener.listen))
	s.Open(context.Background())

	if !s.Ready() {
		t.Fatal("Expected sender to be ready after fallback")
	}
	if s.Network() != "udp6" {
		t.Errorf("Network() = %q, want udp6", s.Network())
	}
	if len(resolver.calls) != 2 || resolver.calls[0] != "udp4" || resolver.calls[1] != "udp6" {
		t.Errorf("resolver calls = %v, want [udp4 udp6]", resolver.calls)
	}

	s.Send("02FF000000")
	conn := listener.conns["udp6"]
	if len(conn.writes) != 1 {
		t.Fatalf("Expected one datagram on the v6 socket, got %d", len(conn.writes))
	}
	if conn.addrs[0].String() != "[::1]:2342" {
		t.Errorf("datagram sent to %s", conn.addrs[0])
	}
}

func TestOpenFallsBackOnAddrError(t *testing.T) {
	resolver := &fakeResolver{
		errs: map[string]error{"udp4": &net.AddrError{Err: "no suitable address found", Addr: "v6only.example"}},
		addr: &net.UDPAddr{IP: net.IPv6loopback, Port: 2342},
	}
	listener := &fakeListener{}

	s := NewSender("v6only.example:2342", nil, WithResolver(resolver), WithListener(listener.listen))
	s.Open(context.Background())

	if s.Network() != "udp6" {
		t.Errorf("Network() = %q, want udp6", s.Network())
	}
}

func TestOpenOtherErrorDisablesSending(t *testing.T) {
	resolver := &fakeResolver{addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2342}}
	listener := &fakeListener{errs: map[string]error{"udp4": errors.New("permission denied")}}

	s := NewSender("127.0.0.1:2342", hclog.NewNullLogger(), WithResolver(resolver), WithListener(listener.listen))
	s.Open(context.Background())

	if s.Ready() {
		t.Fatal("Expected sending to be disabled")
	}
	if len(listener.networks) != 1 {
		t.Errorf("Expected no IPv6 fallback for a non-resolution error, got %v", listener.networks)
	}

	// Must not panic.
	s.Send("02FF")
	if err := s.send("02FF"); !errors.Is(err, ErrDisabled) {
		t.Errorf("send() error = %v, want ErrDisabled", err)
	}
}

func TestSendInvalidHex(t *testing.T) {
	resolver := &fakeResolver{addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2342}}
	listener := &fakeListener{}

	s := NewSender("127.0.0.1:2342", hclog.NewNullLogger(), WithResolver(resolver), WithListener(listener.listen))
	s.Open(context.Background())

	if err := s.send("02FF#68D74C"); err == nil {
		t.Error("Expected error for invalid hex")
	}
	s.Send("zz")
	if n := len(listener.conns["udp4"].writes); n != 0 {
		t.Errorf("Expected no datagrams for invalid frames, got %d", n)
	}
}

func TestSendWriteError(t *testing.T) {
	resolver := &fakeResolver{addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2342}}
	listener := &fakeListener{}

	s := NewSender("127.0.0.1:2342", hclog.NewNullLogger(), WithResolver(resolver), WithListener(listener.listen))
	s.Open(context.Background())
	listener.conns["udp4"].err = errors.New("network unreachable")

	if err := s.send("02FF"); err == nil {
		t.Error("Expected write error to be returned by send")
	}
	s.Send("02FF")
}

func TestReopenClosesPrevious(t *testing.T) {
	resolver := &fakeResolver{addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2342}}
	listener := &fakeListener{}

	s := NewSender("127.0.0.1:2342", hclog.NewNullLogger(), WithResolver(resolver), WithListener(listener.listen))
	s.Open(context.Background())
	first := listener.conns["udp4"]

	if err := s.Reopen(context.Background(), "udp6"); err != nil {
		t.Fatalf("Reopen() error = %v", err)
	}
	if !first.closed {
		t.Error("Expected previous socket to be closed")
	}
	if s.Network() != "udp6" {
		t.Errorf("Network() = %q", s.Network())
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if s.Ready() {
		t.Error("Expected sender not ready after Close")
	}
}

func TestSendLoopback(t *testing.T) {
	server, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("loopback UDP unavailable: %v", err)
	}
	defer server.Close()

	s := NewSender(server.LocalAddr().String(), hclog.NewNullLogger())
	s.Open(context.Background())
	defer s.Close()

	if !s.Ready() {
		t.Fatal("Expected sender to be ready")
	}

	s.Send("02FF68D74C000000")

	if err := server.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 64)
	n, _, err := server.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}

	want := []byte{0x02, 0xFF, 0x68, 0xD7, 0x4C, 0x00, 0x00, 0x00}
	if !bytes.Equal(buf[:n], want) {
		t.Errorf("received % X, want % X", buf[:n], want)
	}
}
