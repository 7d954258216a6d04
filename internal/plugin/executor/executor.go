// Package executor runs light modules shipped as separate go-plugin binaries.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/bbusse/lights/internal/security"
	"github.com/bbusse/lights/pkg/plugin"
)

// infoTimeout bounds the --plugin-info query.
const infoTimeout = 5 * time.Second

// ErrNotStarted is returned when the module is used before Start.
var ErrNotStarted = errors.New("plugin not started")

// connectFunc launches the module and returns its RPC handle and a kill function.
type connectFunc func(argv []string, logger hclog.Logger) (plugin.Module, func(), error)

// PluginExecutor exposes an external module binary as a plugin.Module.
type PluginExecutor struct {
	argv    []string
	runner  ProcessRunner
	logger  hclog.Logger
	connect connectFunc

	info   plugin.PluginInfo
	module plugin.Module
	kill   func()
}

var _ plugin.Module = (*PluginExecutor)(nil)

// Option configures a PluginExecutor.
type Option func(*PluginExecutor)

// WithRunner overrides the runner used for the --plugin-info query.
func WithRunner(r ProcessRunner) Option {
	return func(e *PluginExecutor) { e.runner = r }
}

func withConnect(c connectFunc) Option {
	return func(e *PluginExecutor) { e.connect = c }
}

// New creates an executor for the module started by argv. The binary must
// print its info for argv plus --plugin-info and serve go-plugin for argv.
func New(argv []string, logger hclog.Logger, opts ...Option) *PluginExecutor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	e := &PluginExecutor{
		argv:    append([]string(nil), argv...),
		runner:  NewRealProcessRunner(),
		logger:  logger.Named("plugin"),
		connect: connectGoPlugin,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query asks the binary to describe itself via --plugin-info.
func (e *PluginExecutor) Query(ctx context.Context) (plugin.PluginInfo, error) {
	var info plugin.PluginInfo

	if err := security.ValidateCommand(e.argv); err != nil {
		return info, fmt.Errorf("invalid plugin path: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	args := append(append([]string(nil), e.argv[1:]...), "--plugin-info")
	stdout, stderr, err := e.runner.Run(ctx, e.argv[0], args)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return info, fmt.Errorf("failed to query plugin: %w\nStderr: %s", err, msg)
		}
		return info, fmt.Errorf("failed to query plugin: %w", err)
	}

	if err := json.Unmarshal(bytes.TrimSpace(stdout), &info); err != nil {
		return info, fmt.Errorf("failed to parse plugin info: %w", err)
	}
	return info, nil
}

// Start verifies the binary and connects to it.
func (e *PluginExecutor) Start(ctx context.Context) error {
	if e.module != nil {
		return nil
	}

	info, err := e.Query(ctx)
	if err != nil {
		return err
	}
	if err := plugin.CheckInfo(info); err != nil {
		return fmt.Errorf("plugin %s: %w", e.argv[0], err)
	}

	module, kill, err := e.connect(e.argv, e.logger)
	if err != nil {
		return err
	}

	e.info = info
	e.module = module
	e.kill = kill
	e.logger.Debug("plugin started", "path", e.argv[0], "name", info.Name, "version", info.Version)
	return nil
}

// Render asks the module for its widget.
func (e *PluginExecutor) Render(ctx context.Context) (plugin.Widget, error) {
	if e.module == nil {
		return plugin.Widget{}, ErrNotStarted
	}
	return e.module.Render(ctx)
}

// OnClick forwards a click to the module.
func (e *PluginExecutor) OnClick(ctx context.Context, ev plugin.ClickEvent) error {
	if e.module == nil {
		return ErrNotStarted
	}
	return e.module.OnClick(ctx, ev)
}

// GetMetadata returns the info reported at Start.
func (e *PluginExecutor) GetMetadata() plugin.PluginInfo {
	return e.info
}

// Close stops the module process.
func (e *PluginExecutor) Close() {
	if e.kill != nil {
		e.kill()
	}
	e.kill = nil
	e.module = nil
}

func connectGoPlugin(argv []string, logger hclog.Logger) (plugin.Module, func(), error) {
	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  plugin.Handshake,
		Plugins:          plugin.PluginMap(nil),
		Cmd:              exec.Command(argv[0], argv[1:]...),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           logger,
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.ModuleName)
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	module, ok := raw.(plugin.Module)
	if !ok {
		client.Kill()
		return nil, nil, fmt.Errorf("plugin dispensed unexpected type %T", raw)
	}

	return module, client.Kill, nil
}
