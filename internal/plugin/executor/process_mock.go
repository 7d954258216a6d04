package executor

import (
	"context"
	"errors"
)

// MockProcessRunner is a ProcessRunner for tests.
type MockProcessRunner struct {
	// RunFunc allows tests to provide custom behavior.
	RunFunc func(ctx context.Context, path string, args []string) (stdout, stderr []byte, err error)

	// ShouldTimeout blocks Run until the context is cancelled.
	ShouldTimeout bool

	CallCount int
	LastPath  string
	LastArgs  []string
}

// Run executes the mock behavior.
func (m *MockProcessRunner) Run(ctx context.Context, path string, args []string) ([]byte, []byte, error) {
	m.CallCount++
	m.LastPath = path
	m.LastArgs = args

	if m.ShouldTimeout {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	if m.RunFunc != nil {
		return m.RunFunc(ctx, path, args)
	}

	return []byte("{}"), nil, nil
}

// NewTimeoutMockProcessRunner creates a mock that never finishes on its own.
func NewTimeoutMockProcessRunner() *MockProcessRunner {
	return &MockProcessRunner{ShouldTimeout: true}
}

// NewErrorMockProcessRunner creates a mock that fails with errMsg on stderr.
func NewErrorMockProcessRunner(errMsg string) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(context.Context, string, []string) ([]byte, []byte, error) {
			return nil, []byte(errMsg), errors.New(errMsg)
		},
	}
}

// NewSuccessMockProcessRunner creates a mock that prints stdout.
func NewSuccessMockProcessRunner(stdout []byte) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(context.Context, string, []string) ([]byte, []byte, error) {
			return stdout, nil, nil
		},
	}
}
