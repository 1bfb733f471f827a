package windows

import (
	"github.com/shirou/gopsutil/v4/process"
)

// ProcessWatcher reports whether a launched process is still running.
type ProcessWatcher struct{}

// NewProcessWatcher creates a new process watcher
func NewProcessWatcher() *ProcessWatcher {
	return &ProcessWatcher{}
}

// Alive reports whether pid still exists. An unknown pid (0) or a failed
// lookup counts as alive so that polling is never cut short on doubt.
func (p *ProcessWatcher) Alive(pid uint32) bool {
	if pid == 0 {
		return true
	}

	exists, err := process.PidExists(int32(pid))
	if err != nil {
		return true
	}

	return exists
}
