// Package procstate answers questions about the execution state of the
// processes that own windows.
package procstate

import (
	"github.com/shirou/gopsutil/v4/process"
)

// Inspector reads process state from the operating system.
type Inspector struct {
	newProcess func(pid int32) (statusReader, error)
}

type statusReader interface {
	Status() ([]string, error)
	Name() (string, error)
}

// NewInspector returns an Inspector backed by gopsutil.
func NewInspector() *Inspector {
	return &Inspector{
		newProcess: func(pid int32) (statusReader, error) {
			return process.NewProcess(pid)
		},
	}
}

// Suspended reports whether the process is stopped (SIGSTOP, job control,
// or a frozen cgroup reporting T state). Unknown or vanished processes are
// not suspended.
func (i *Inspector) Suspended(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := i.newProcess(int32(pid))
	if err != nil {
		return false
	}
	states, err := p.Status()
	if err != nil {
		return false
	}
	return isSuspended(states)
}

// Name returns the process executable name, or "" when unknown.
func (i *Inspector) Name(pid int) string {
	if pid <= 0 {
		return ""
	}
	p, err := i.newProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return name
}

func isSuspended(states []string) bool {
	for _, state := range states {
		if state == process.Stop {
			return true
		}
	}
	return false
}
