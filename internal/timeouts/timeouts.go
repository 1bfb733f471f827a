// Package timeouts defines the polling policy and fixed delays used while
// driving the trading client.
package timeouts

import "time"

const (
	// DefaultMaxSeconds bounds the launch wait, the login wait and the
	// post-login settle delay when no timeout is configured.
	DefaultMaxSeconds = 30

	// DefaultPollIntervalSeconds is the gap between two discovery queries.
	// Window discovery is coarse on purpose: the client takes seconds, not
	// milliseconds, to bring up its dialogs.
	DefaultPollIntervalSeconds = 1

	// ElevationRelaunchDelay gives the elevated copy time to start before the
	// non-elevated parent exits.
	ElevationRelaunchDelay = 500 * time.Millisecond
)

// Policy governs every polling loop of a login run.
type Policy struct {
	MaxSeconds          int
	PollIntervalSeconds int
}

// DefaultPolicy returns the 30s / 1s policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxSeconds:          DefaultMaxSeconds,
		PollIntervalSeconds: DefaultPollIntervalSeconds,
	}
}

// NewPolicy returns a policy with the given maximum and the default interval.
func NewPolicy(maxSeconds int) Policy {
	return Policy{
		MaxSeconds:          maxSeconds,
		PollIntervalSeconds: DefaultPollIntervalSeconds,
	}
}

// Attempts is the number of discovery queries a poll may make.
func (p Policy) Attempts() int {
	if p.MaxSeconds < 0 {
		return 0
	}

	return p.MaxSeconds
}

// Interval is the sleep between two queries.
func (p Policy) Interval() time.Duration {
	if p.PollIntervalSeconds <= 0 {
		return DefaultPollIntervalSeconds * time.Second
	}

	return time.Duration(p.PollIntervalSeconds) * time.Second
}

// Budget is the total time a poll can spend sleeping.
func (p Policy) Budget() time.Duration {
	return time.Duration(p.Attempts()) * p.Interval()
}

// SettleDelay is the single wait before nuisance dialogs are swept.
func (p Policy) SettleDelay() time.Duration {
	return time.Duration(p.Attempts()) * time.Second
}
