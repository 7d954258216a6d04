package host

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-ps"
)

// SignalRefresher asks running bar processes to re-run the module by sending
// SIGRTMIN+Signal, the convention waybar uses for custom modules.
type SignalRefresher struct {
	Process string
	Signal  int
	Logger  hclog.Logger

	processes func() ([]ps.Process, error)
	kill      func(pid, sig int) error
}

// NewSignalRefresher returns a refresher signalling every process named process.
func NewSignalRefresher(process string, signal int, logger hclog.Logger) *SignalRefresher {
	return &SignalRefresher{
		Process:   process,
		Signal:    signal,
		Logger:    logger,
		processes: ps.Processes,
		kill:      killProcess,
	}
}

// Refresh signals the bar. Failures are logged.
func (r *SignalRefresher) Refresh() {
	if r.Signal <= 0 {
		return
	}
	if err := r.signal(); err != nil && r.Logger != nil {
		r.Logger.Warn("failed to refresh bar", "process", r.Process, "error", err)
	}
}

func (r *SignalRefresher) signal() error {
	pids, err := findProcessByName(r.processes, r.Process)
	if err != nil {
		return err
	}
	if len(pids) == 0 {
		return fmt.Errorf("no running %s instances found", r.Process)
	}

	sig := sigRTMin + r.Signal
	for _, pid := range pids {
		if err := r.kill(pid, sig); err != nil {
			return fmt.Errorf("failed to signal %s (PID %d): %w", r.Process, pid, err)
		}
	}
	return nil
}

// findProcessByName finds all PIDs of processes with the given name.
func findProcessByName(list func() ([]ps.Process, error), name string) ([]int, error) {
	processes, err := list()
	if err != nil {
		return nil, fmt.Errorf("failed to get process list: %w", err)
	}

	var pids []int
	for _, p := range processes {
		if p.Executable() == name {
			pids = append(pids, p.Pid())
		}
	}
	return pids, nil
}
