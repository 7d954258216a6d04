package bar

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/bbusse/lights/pkg/plugin"
)

type fakeModule struct {
	name      string
	leds      int
	renderErr error
	clicks    []plugin.ClickEvent
}

func (m *fakeModule) Render(_ context.Context) (plugin.Widget, error) {
	if m.renderErr != nil {
		return plugin.Widget{}, m.renderErr
	}
	return plugin.Widget{
		FullText: m.name + " " + strings.Repeat("|", m.leds),
		Name:     m.name,
		Color:    "#00FF00",
		Leds:     m.leds,
	}, nil
}

func (m *fakeModule) OnClick(_ context.Context, ev plugin.ClickEvent) error {
	m.clicks = append(m.clicks, ev)
	switch ev.Button {
	case plugin.ButtonScrollUp:
		m.leds++
	case plugin.ButtonScrollDown:
		m.leds--
	}
	return nil
}

func (m *fakeModule) GetMetadata() plugin.PluginInfo {
	return plugin.PluginInfo{Name: m.name}
}

// parseOutput splits bar output into header and status lines.
func parseOutput(t *testing.T, out string) (Header, [][]Block) {
	t.Helper()

	sc := bufio.NewScanner(strings.NewReader(out))
	if !sc.Scan() {
		t.Fatal("missing header")
	}
	var h Header
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		t.Fatalf("invalid header %q: %v", sc.Text(), err)
	}
	if !sc.Scan() || sc.Text() != "[" {
		t.Fatalf("expected '[' after header, got %q", sc.Text())
	}

	var lines [][]Block
	for sc.Scan() {
		line := strings.TrimPrefix(sc.Text(), ",")
		var blocks []Block
		if err := json.Unmarshal([]byte(line), &blocks); err != nil {
			t.Fatalf("invalid status line %q: %v", sc.Text(), err)
		}
		lines = append(lines, blocks)
	}
	return h, lines
}

func TestRunDispatchesClicks(t *testing.T) {
	lounge := &fakeModule{name: "lounge", leds: 1}
	desk := &fakeModule{name: "desk", leds: 2}

	var out bytes.Buffer
	b := New(&out, hclog.NewNullLogger(), 0)
	b.Add("lounge", lounge)
	b.Add("desk", desk)

	in := strings.NewReader(`[
{"name":"lights","instance":"desk","button":4,"x":10,"y":3}
,{"name":"lights","instance":"lounge","button":1}
,{"name":"clock","instance":"lounge","button":1}
,{"name":"lights","instance":"garage","button":1}
`)

	if err := b.Run(context.Background(), in); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(desk.clicks) != 1 || desk.clicks[0].Button != plugin.ButtonScrollUp || desk.clicks[0].X != 10 {
		t.Errorf("desk clicks = %+v", desk.clicks)
	}
	if len(lounge.clicks) != 1 || lounge.clicks[0].Button != plugin.ButtonLeft {
		t.Errorf("lounge clicks = %+v", lounge.clicks)
	}

	h, lines := parseOutput(t, out.String())
	if h.Version != 1 || !h.ClickEvents {
		t.Errorf("header = %+v", h)
	}
	// Initial line plus one per click event.
	if len(lines) != 5 {
		t.Fatalf("got %d status lines, want 5", len(lines))
	}
	last := lines[len(lines)-1]
	if len(last) != 2 || last[0].Instance != "lounge" || last[1].Instance != "desk" {
		t.Fatalf("last line = %+v", last)
	}
	if last[1].FullText != "desk |||" || last[1].Name != BlockName || last[1].Color != "#00FF00" {
		t.Errorf("desk block = %+v", last[1])
	}
}

func TestRunEmptyInput(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, nil, 0)
	b.Add("lounge", &fakeModule{name: "lounge"})

	if err := b.Run(context.Background(), strings.NewReader("")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, lines := parseOutput(t, out.String()); len(lines) != 1 {
		t.Errorf("got %d lines, want 1", len(lines))
	}
}

func TestRunInvalidInput(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, nil, 0)

	if err := b.Run(context.Background(), strings.NewReader(`{"button":1}`)); err == nil {
		t.Error("Expected error for input that is not an array")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, nil, 10*time.Millisecond)
	b.Add("lounge", &fakeModule{name: "lounge"})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// A reader that never delivers anything keeps the bar running until ctx expires.
	release := make(chan struct{})
	defer close(release)

	if err := b.Run(ctx, blockingReader{done: release}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, lines := parseOutput(t, out.String()); len(lines) < 2 {
		t.Errorf("expected periodic redraws, got %d lines", len(lines))
	}
}

type blockingReader struct {
	done <-chan struct{}
}

func (r blockingReader) Read([]byte) (int, error) {
	<-r.done
	return 0, errors.New("closed")
}

func TestBlocksSkipsFailingModules(t *testing.T) {
	b := New(&bytes.Buffer{}, nil, 0)
	b.Add("broken", &fakeModule{name: "broken", renderErr: errors.New("boom")})
	b.Add("ok", &fakeModule{name: "ok"})

	blocks := b.Blocks(context.Background())
	if len(blocks) != 1 || blocks[0].Instance != "ok" {
		t.Errorf("Blocks() = %+v", blocks)
	}
}

func TestRefreshWritesLine(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, nil, 0)
	b.Add("lounge", &fakeModule{name: "lounge"})

	b.Refresh()
	b.Refresh()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || strings.HasPrefix(lines[0], ",") || !strings.HasPrefix(lines[1], ",") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestAddRejectsDuplicateInstance(t *testing.T) {
	b := New(&bytes.Buffer{}, nil, 0)
	if err := b.Add("lights", &fakeModule{name: "lounge"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := b.Add("lights", &fakeModule{name: "desk"}); !errors.Is(err, ErrDuplicateInstance) {
		t.Errorf("Add() error = %v, want ErrDuplicateInstance", err)
	}
	if blocks := b.Blocks(context.Background()); len(blocks) != 1 {
		t.Errorf("Blocks() = %+v", blocks)
	}
}

func TestFreeInstance(t *testing.T) {
	b := New(&bytes.Buffer{}, nil, 0)
	if got := b.FreeInstance("lights"); got != "lights" {
		t.Errorf("FreeInstance() = %q, want lights", got)
	}

	_ = b.Add("lights", &fakeModule{name: "a"})
	_ = b.Add("lights-2", &fakeModule{name: "b"})
	if got := b.FreeInstance("lights"); got != "lights-3" {
		t.Errorf("FreeInstance() = %q, want lights-3", got)
	}

	// Clicks reach the module behind each generated instance.
	second := &fakeModule{name: "c"}
	_ = b.Add(b.FreeInstance("lights"), second)
	b.dispatch(context.Background(), plugin.ClickEvent{Name: BlockName, Instance: "lights-3", Button: plugin.ButtonLeft})
	if len(second.clicks) != 1 {
		t.Errorf("clicks = %+v", second.clicks)
	}
}
