// Package poll repeats a window discovery query on a fixed interval until it
// finds something or the timeout policy runs out.
package poll

import (
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/Norgate-AV/htauto/internal/apperr"
	"github.com/Norgate-AV/htauto/internal/timeouts"
	"github.com/Norgate-AV/htauto/internal/windows"
)

// Timer is how a poll sleeps. It matches retry.Timer so tests can skip real waits.
type Timer interface {
	After(d time.Duration) <-chan time.Time
}

type realTimer struct{}

func (realTimer) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealTimer sleeps for real.
var RealTimer Timer = realTimer{}

var (
	// ErrNotReady is what a probe reports while its target is not there yet.
	ErrNotReady = errors.New("not ready")

	// ErrTimeout is returned once every attempt came back not ready.
	ErrTimeout = errors.New("poll timed out")
)

// Probe runs one discovery query. NoWindow with a nil error means "not yet".
type Probe func() (windows.Handle, error)

// Until sleeps one interval and then probes, up to policy.Attempts() times.
// Not-ready results and retryable errors keep the poll going; any other error
// ends it immediately. Exhausting the attempts returns an error wrapping
// ErrTimeout and the last probe error.
func Until(policy timeouts.Policy, timer Timer, probe Probe) (windows.Handle, error) {
	if timer == nil {
		timer = RealTimer
	}

	attempts := policy.Attempts()
	if attempts == 0 {
		return windows.NoWindow, fmt.Errorf("%w: no attempts allowed", ErrTimeout)
	}

	// The first query also waits: the target was only just asked to appear.
	<-timer.After(policy.Interval())

	h, err := retry.DoWithData(
		func() (windows.Handle, error) {
			h, err := probe()
			if err != nil {
				return windows.NoWindow, err
			}

			if h == windows.NoWindow {
				return windows.NoWindow, ErrNotReady
			}

			return h, nil
		},
		retry.Attempts(uint(attempts)),
		retry.Delay(policy.Interval()),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.WithTimer(timer),
		retry.RetryIf(keepPolling),
	)
	if err == nil {
		return h, nil
	}

	if keepPolling(err) {
		return windows.NoWindow, fmt.Errorf("%w after %d attempts: %w", ErrTimeout, attempts, err)
	}

	return windows.NoWindow, err
}

func keepPolling(err error) bool {
	return errors.Is(err, ErrNotReady) || apperr.IsRetryable(err)
}

// Sleep blocks for d on timer.
func Sleep(timer Timer, d time.Duration) {
	if timer == nil {
		timer = RealTimer
	}

	if d <= 0 {
		return
	}

	<-timer.After(d)
}
