package testutil

import (
	"sync"
	"time"
)

// MockLauncher implements interfaces.Launcher for testing
type MockLauncher struct {
	pid         uint32
	err         error
	onLaunch    []func()
	LaunchCalls []LaunchCall
}

type LaunchCall struct {
	Path string
	Show bool
}

func NewMockLauncher() *MockLauncher {
	return &MockLauncher{
		pid:         4242,
		LaunchCalls: []LaunchCall{},
	}
}

// Helper methods for fluent configuration
func (m *MockLauncher) WithPid(pid uint32) *MockLauncher {
	m.pid = pid
	return m
}

func (m *MockLauncher) WithError(err error) *MockLauncher {
	m.err = err
	return m
}

// OnLaunch runs fn after every successful launch, typically a FakeDesktop.Reveal hook.
func (m *MockLauncher) OnLaunch(fn func()) *MockLauncher {
	m.onLaunch = append(m.onLaunch, fn)
	return m
}

func (m *MockLauncher) Launch(path string, show bool) (uint32, error) {
	m.LaunchCalls = append(m.LaunchCalls, LaunchCall{path, show})
	if m.err != nil {
		return 0, m.err
	}

	for _, fn := range m.onLaunch {
		fn()
	}

	return m.pid, nil
}

// MockProcessChecker implements interfaces.ProcessChecker for testing.
// Processes are alive until MarkExited is called for them.
type MockProcessChecker struct {
	exited     map[uint32]bool
	exitAfter  map[uint32]int
	AliveCalls []uint32
}

func NewMockProcessChecker() *MockProcessChecker {
	return &MockProcessChecker{
		exited:     make(map[uint32]bool),
		exitAfter:  make(map[uint32]int),
		AliveCalls: []uint32{},
	}
}

func (m *MockProcessChecker) MarkExited(pid uint32) *MockProcessChecker {
	m.exited[pid] = true
	return m
}

// ExitAfter reports pid alive for the first n checks and exited afterwards.
func (m *MockProcessChecker) ExitAfter(pid uint32, n int) *MockProcessChecker {
	m.exitAfter[pid] = n
	return m
}

func (m *MockProcessChecker) Alive(pid uint32) bool {
	m.AliveCalls = append(m.AliveCalls, pid)

	if n, ok := m.exitAfter[pid]; ok {
		if n <= 0 {
			return false
		}

		m.exitAfter[pid] = n - 1
	}

	return !m.exited[pid]
}

// FakeTimer fires immediately and records every requested duration.
type FakeTimer struct {
	mu     sync.Mutex
	waits  []time.Duration
	onTick func(n int)
}

func NewFakeTimer() *FakeTimer {
	return &FakeTimer{}
}

// OnTick runs fn before the n-th wait (1-based) fires.
func (t *FakeTimer) OnTick(fn func(n int)) *FakeTimer {
	t.onTick = fn
	return t
}

func (t *FakeTimer) After(d time.Duration) <-chan time.Time {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	n := len(t.waits)
	fn := t.onTick
	t.mu.Unlock()

	if fn != nil {
		fn(n)
	}

	ch := make(chan time.Time, 1)
	ch <- time.Time{}.Add(d)
	return ch
}

// Waits returns the durations waited so far.
func (t *FakeTimer) Waits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]time.Duration(nil), t.waits...)
}

// Total sums every wait.
func (t *FakeTimer) Total() time.Duration {
	var total time.Duration
	for _, d := range t.Waits() {
		total += d
	}

	return total
}
