// Package picker runs an external colour picker and streams the colours it prints.
package picker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"os/exec"

	"github.com/hashicorp/go-hclog"

	"github.com/bbusse/lights/internal/security"
)

// MaxLineSize is the longest picker line accepted. A longer line ends the
// stream and Close reports bufio.ErrTooLong.
const MaxLineSize = 64 * 1024

// Process is a started picker.
type Process interface {
	// Stdout returns the picker's standard output.
	Stdout() io.Reader

	// Wait blocks until the process exits.
	Wait() error
}

// Starter starts picker processes.
// This abstraction allows for dependency injection and easier testing.
type Starter interface {
	Start(ctx context.Context, argv []string, stderr io.Writer) (Process, error)
}

// ExecStarter starts real processes with os/exec.
type ExecStarter struct{}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Wait() error { return p.cmd.Wait() }

// Start implements Starter.
func (ExecStarter) Start(ctx context.Context, argv []string, stderr io.Writer) (Process, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) // #nosec G204 - picker command comes from user config
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd, stdout: stdout}, nil
}

// Picker runs a configured colour picker command.
type Picker struct {
	argv    []string
	starter Starter
	logger  hclog.Logger
}

// New returns a Picker for argv. A nil starter uses ExecStarter.
func New(argv []string, starter Starter, logger hclog.Logger) *Picker {
	if starter == nil {
		starter = ExecStarter{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Picker{
		argv:    append([]string(nil), argv...),
		starter: starter,
		logger:  logger,
	}
}

// Stream starts the picker. The caller must Close the stream.
func (p *Picker) Stream(ctx context.Context) (*Stream, error) {
	if err := security.ValidateCommand(p.argv); err != nil {
		return nil, fmt.Errorf("invalid colour picker: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	stderr := p.logger.StandardWriter(&hclog.StandardLoggerOptions{ForceLevel: hclog.Debug})

	proc, err := p.starter.Start(ctx, p.argv, stderr)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start colour picker %q: %w", p.argv[0], err)
	}

	scanner := bufio.NewScanner(proc.Stdout())
	scanner.Buffer(make([]byte, 0, 4096), MaxLineSize)

	p.logger.Debug("colour picker started", "command", p.argv)
	return &Stream{
		ctx:     ctx,
		cancel:  cancel,
		proc:    proc,
		scanner: scanner,
	}, nil
}

// Stream yields the lines printed by a running picker, without their line
// terminator, as they are produced.
type Stream struct {
	ctx     context.Context
	cancel  context.CancelFunc
	proc    Process
	scanner *bufio.Scanner

	line   string
	err    error
	eof    bool
	closed bool
}

// Next blocks until the picker prints another line or exits.
func (s *Stream) Next() bool {
	if s.closed || s.eof {
		return false
	}
	if s.scanner.Scan() {
		s.line = s.scanner.Text()
		return true
	}
	s.eof = true
	s.err = s.scanner.Err()
	return false
}

// Color returns the line read by the last call to Next.
func (s *Stream) Color() string {
	return s.line
}

// All returns an iterator over the remaining lines.
func (s *Stream) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for s.Next() {
			if !yield(s.Color()) {
				return
			}
		}
	}
}

// Close stops the picker if it is still running and waits for it to exit.
// It returns the first read or exit error; stopping a picker whose output was
// not read to the end is not an error.
func (s *Stream) Close() error {
	if s.closed {
		return s.err
	}
	s.closed = true

	interrupted := !s.eof || s.err != nil
	if interrupted {
		s.cancel()
	}
	waitErr := s.proc.Wait()
	ctxErr := s.ctx.Err()
	s.cancel()

	switch {
	case s.err != nil, interrupted:
	case ctxErr != nil:
		s.err = fmt.Errorf("colour picker interrupted: %w", ctxErr)
	case waitErr != nil:
		s.err = fmt.Errorf("colour picker exited: %w", waitErr)
	}
	return s.err
}
