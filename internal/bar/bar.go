// Package bar hosts modules in an i3bar-protocol status line, as consumed by
// i3bar and swaybar.
package bar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/bbusse/lights/pkg/plugin"
)

// BlockName is the i3bar block name of every light; the instance carries the light's name.
const BlockName = "lights"

// Header is the first message of the i3bar protocol.
type Header struct {
	Version     int  `json:"version"`
	ClickEvents bool `json:"click_events"`
}

// Block is one entry of a status line.
type Block struct {
	FullText string `json:"full_text"`
	Color    string `json:"color,omitempty"`
	Name     string `json:"name"`
	Instance string `json:"instance"`
}

type entry struct {
	instance string
	module   plugin.Module
}

// Bar writes status lines to out and routes click events to modules.
// All methods must be called from the goroutine running Run.
type Bar struct {
	out      io.Writer
	logger   hclog.Logger
	interval time.Duration

	entries []entry
	lines   int
}

// New returns a Bar writing to out. Every interval the status line is redrawn;
// zero disables periodic redraws.
func New(out io.Writer, logger hclog.Logger, interval time.Duration) *Bar {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Bar{
		out:      out,
		logger:   logger,
		interval: interval,
	}
}

// ErrDuplicateInstance is returned by Add when the instance is already taken.
var ErrDuplicateInstance = errors.New("duplicate instance")

// Add appends a module; clicks on blocks with the given instance go to it.
func (b *Bar) Add(instance string, m plugin.Module) error {
	if b.has(instance) {
		return fmt.Errorf("%w: %q", ErrDuplicateInstance, instance)
	}
	b.entries = append(b.entries, entry{instance: instance, module: m})
	return nil
}

// FreeInstance returns name if no module uses it, otherwise the first free
// name-2, name-3 and so on.
func (b *Bar) FreeInstance(name string) string {
	if !b.has(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", name, i)
		if !b.has(candidate) {
			return candidate
		}
	}
}

func (b *Bar) has(instance string) bool {
	for _, e := range b.entries {
		if e.instance == instance {
			return true
		}
	}
	return false
}

// Refresh writes a new status line. It implements host.Refresher.
func (b *Bar) Refresh() {
	if err := b.writeLine(context.Background()); err != nil {
		b.logger.Error("failed to write status line", "error", err)
	}
}

// Run writes the protocol header and serves click events read from in until
// in is closed or ctx is cancelled.
func (b *Bar) Run(ctx context.Context, in io.Reader) error {
	if err := b.writeHeader(); err != nil {
		return err
	}
	if err := b.writeLine(ctx); err != nil {
		return err
	}

	events := make(chan plugin.ClickEvent)
	var readErr error
	go func() {
		defer close(events)
		readErr = readEvents(ctx, in, events)
	}()

	var tick <-chan time.Time
	if b.interval > 0 {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				if readErr != nil {
					return fmt.Errorf("failed to read click events: %w", readErr)
				}
				b.logger.Debug("click event stream closed")
				return nil
			}
			b.dispatch(ctx, ev)
			b.Refresh()

		case <-tick:
			b.Refresh()
		}
	}
}

func (b *Bar) dispatch(ctx context.Context, ev plugin.ClickEvent) {
	if ev.Name != BlockName {
		b.logger.Debug("ignoring click on foreign block", "name", ev.Name)
		return
	}
	for _, e := range b.entries {
		if e.instance == ev.Instance {
			b.logger.Debug("click", "instance", ev.Instance, "button", ev.Button)
			if err := e.module.OnClick(ctx, ev); err != nil {
				b.logger.Error("click failed", "instance", ev.Instance, "error", err)
			}
			return
		}
	}
	b.logger.Warn("click on unknown instance", "instance", ev.Instance)
}

func (b *Bar) writeHeader() error {
	data, err := json.Marshal(Header{Version: 1, ClickEvents: true})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(b.out, "%s\n[\n", data); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// Blocks renders every module. Modules that fail to render are left out.
func (b *Bar) Blocks(ctx context.Context) []Block {
	blocks := make([]Block, 0, len(b.entries))
	for _, e := range b.entries {
		w, err := e.module.Render(ctx)
		if err != nil {
			b.logger.Error("failed to render module", "instance", e.instance, "error", err)
			continue
		}
		blocks = append(blocks, Block{
			FullText: w.FullText,
			Color:    w.Color,
			Name:     BlockName,
			Instance: e.instance,
		})
	}
	return blocks
}

func (b *Bar) writeLine(ctx context.Context) error {
	data, err := json.Marshal(b.Blocks(ctx))
	if err != nil {
		return err
	}

	sep := ""
	if b.lines > 0 {
		sep = ","
	}
	if _, err := fmt.Fprintf(b.out, "%s%s\n", sep, data); err != nil {
		return fmt.Errorf("failed to write status line: %w", err)
	}
	b.lines++
	return nil
}

// readEvents decodes the infinite JSON array of click events the bar writes to stdin.
func readEvents(ctx context.Context, in io.Reader, events chan<- plugin.ClickEvent) error {
	dec := json.NewDecoder(in)

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("expected '[' at start of click events, got %v", tok)
	}

	for dec.More() {
		var ev plugin.ClickEvent
		if err := dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
