package picker

import (
	"context"
	"io"
	"strings"
)

// MockStarter is a Starter for tests. Its processes print Output and exit
// with WaitErr once the output has been consumed or the context is cancelled.
type MockStarter struct {
	Output   string
	StartErr error
	WaitErr  error

	// CallCount tracks how many times Start was called
	CallCount int

	// LastArgs stores the last argument vector passed to Start
	LastArgs []string
}

type mockProcess struct {
	ctx     context.Context
	stdout  io.Reader
	waitErr error
}

func (p *mockProcess) Stdout() io.Reader { return p.stdout }

func (p *mockProcess) Wait() error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	return p.waitErr
}

// Start implements Starter.
func (m *MockStarter) Start(ctx context.Context, argv []string, _ io.Writer) (Process, error) {
	m.CallCount++
	m.LastArgs = append([]string(nil), argv...)

	if m.StartErr != nil {
		return nil, m.StartErr
	}
	return &mockProcess{
		ctx:     ctx,
		stdout:  strings.NewReader(m.Output),
		waitErr: m.WaitErr,
	}, nil
}

// NewMockStarter returns a MockStarter printing the given lines.
func NewMockStarter(lines ...string) *MockStarter {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return &MockStarter{Output: b.String()}
}

// PipeStarter is a Starter whose process prints what the test writes to W,
// line by line, and exits once W is closed. Cancelling the picker's context
// ends the output like killing the process would.
type PipeStarter struct {
	W *io.PipeWriter

	r *io.PipeReader
}

// NewPipeStarter returns a PipeStarter ready to be started once.
func NewPipeStarter() *PipeStarter {
	r, w := io.Pipe()
	return &PipeStarter{W: w, r: r}
}

// Start implements Starter.
func (s *PipeStarter) Start(ctx context.Context, _ []string, _ io.Writer) (Process, error) {
	go func() {
		<-ctx.Done()
		s.r.CloseWithError(ctx.Err())
	}()
	return &mockProcess{ctx: ctx, stdout: s.r}, nil
}

// WriteLine writes one line of picker output. It blocks until the reader
// has taken it.
func (s *PipeStarter) WriteLine(line string) error {
	_, err := io.WriteString(s.W, line+"\n")
	return err
}
