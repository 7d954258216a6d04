// Package transport sends LED frames to a controller as UDP datagrams.
package transport

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"

	"github.com/hashicorp/go-hclog"
)

// ErrDisabled is returned when sending was disabled by a socket error.
var ErrDisabled = errors.New("sending disabled: no usable socket")

// Resolver resolves a host:port for a UDP network ("udp4" or "udp6").
type Resolver interface {
	ResolveUDPAddr(ctx context.Context, network, address string) (*net.UDPAddr, error)
}

// ListenFunc opens an unconnected packet socket for network.
type ListenFunc func(network string) (net.PacketConn, error)

type netResolver struct{}

func (netResolver) ResolveUDPAddr(ctx context.Context, network, address string) (*net.UDPAddr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return net.ResolveUDPAddr(network, address)
}

func listenPacket(network string) (net.PacketConn, error) {
	return net.ListenPacket(network, "")
}

// Option configures a Sender.
type Option func(*Sender)

// WithResolver replaces the system resolver.
func WithResolver(r Resolver) Option {
	return func(s *Sender) { s.resolver = r }
}

// WithListener replaces net.ListenPacket.
func WithListener(l ListenFunc) Option {
	return func(s *Sender) { s.listen = l }
}

// Sender owns the single socket used to reach a controller.
type Sender struct {
	address  string
	logger   hclog.Logger
	resolver Resolver
	listen   ListenFunc

	conn    net.PacketConn
	target  net.Addr
	network string
}

// NewSender returns a Sender for address (host:port). Open must be called
// before frames are sent.
func NewSender(address string, logger hclog.Logger, opts ...Option) *Sender {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &Sender{
		address:  address,
		logger:   logger,
		resolver: netResolver{},
		listen:   listenPacket,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates the socket. An IPv4 socket is tried first; if the address
// cannot be resolved for IPv4 an IPv6 socket replaces it. Any other failure
// is logged and leaves sending disabled.
func (s *Sender) Open(ctx context.Context) {
	err := s.Reopen(ctx, "udp4")
	if err != nil && isResolutionError(err) {
		s.logger.Warn("failed to bind v4 socket, falling back to v6", "address", s.address, "error", err)
		err = s.Reopen(ctx, "udp6")
	}
	if err != nil {
		s.logger.Error("socket error, sending disabled", "address", s.address, "error", err)
		return
	}
	s.logger.Debug("socket ready", "network", s.network, "target", s.target)
}

// Reopen replaces the current socket with one for network ("udp4" or "udp6").
// On failure the previous socket is closed and sending is disabled.
func (s *Sender) Reopen(ctx context.Context, network string) error {
	s.Close()

	target, err := s.resolver.ResolveUDPAddr(ctx, network, s.address)
	if err != nil {
		return fmt.Errorf("failed to resolve %s for %s: %w", s.address, network, err)
	}

	conn, err := s.listen(network)
	if err != nil {
		return fmt.Errorf("failed to open %s socket: %w", network, err)
	}

	s.conn = conn
	s.target = target
	s.network = network
	return nil
}

// Network returns the network of the open socket, or "" when disabled.
func (s *Sender) Network() string {
	return s.network
}

// Ready reports whether frames can be sent.
func (s *Sender) Ready() bool {
	return s.conn != nil
}

// Send decodes a hex frame and sends it as one datagram. Failures are logged
// and never returned; UDP delivery is best effort.
func (s *Sender) Send(frame string) {
	if err := s.send(frame); err != nil {
		s.logger.Error("failed to contact light", "address", s.address, "error", err)
	}
}

func (s *Sender) send(frame string) error {
	payload, err := hex.DecodeString(frame)
	if err != nil {
		return fmt.Errorf("invalid frame: %w", err)
	}
	if s.conn == nil {
		return ErrDisabled
	}
	if _, err := s.conn.WriteTo(payload, s.target); err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}
	s.logger.Trace("frame sent", "bytes", len(payload), "target", s.target)
	return nil
}

// Close releases the socket.
func (s *Sender) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.target = nil
	s.network = ""
	return err
}

// isResolutionError reports whether err means the name has no address for
// the requested family.
func isResolutionError(err error) bool {
	var dnsErr *net.DNSError
	var addrErr *net.AddrError
	return errors.As(err, &dnsErr) || errors.As(err, &addrErr)
}
