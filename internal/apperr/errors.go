// Package apperr defines the typed failures surfaced by the automation engine.
//
// Every type reports whether it is worth retrying the enclosing discovery step
// through Retryable. Only InvalidHandleError is retryable; everything else aborts
// initialization.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Direction names which way an encoding conversion was going.
type Direction string

const (
	ToNative   Direction = "to native"
	FromNative Direction = "from native"
)

// EncodingError reports text that cannot be represented in the target encoding.
type EncodingError struct {
	Direction Direction
	Err       error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding conversion %s failed: %v", e.Direction, e.Err)
}

func (e *EncodingError) Unwrap() error   { return e.Err }
func (e *EncodingError) Retryable() bool { return false }

// InvalidHandleError reports an operation against an absent or destroyed window.
type InvalidHandleError struct {
	Op     string
	Handle uintptr
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("%s: invalid window handle 0x%X", e.Op, e.Handle)
}

func (e *InvalidHandleError) Retryable() bool { return true }

// LaunchTimeoutError reports that the login dialog never appeared after launch.
type LaunchTimeoutError struct {
	Title  string
	Waited time.Duration
}

func (e *LaunchTimeoutError) Error() string {
	return fmt.Sprintf("cannot open client: window %q did not appear within %s", e.Title, e.Waited)
}

func (e *LaunchTimeoutError) Retryable() bool { return false }

// LoginTimeoutError reports that the main window never appeared after submitting credentials.
type LoginTimeoutError struct {
	ClassName string
	Title     string
	Waited    time.Duration
}

func (e *LoginTimeoutError) Error() string {
	return fmt.Sprintf("cannot login client: main window %q (class %s) did not appear within %s",
		e.Title, e.ClassName, e.Waited)
}

func (e *LoginTimeoutError) Retryable() bool { return false }

// UnexpectedLayoutError reports a control missing from a known dialog's child chain.
// It signals an incompatible client version, never a timing race.
type UnexpectedLayoutError struct {
	Dialog  string
	Control string
	Step    int
	Err     error
}

func (e *UnexpectedLayoutError) Error() string {
	msg := fmt.Sprintf("unexpected layout in %s: control %q (step %d) not found", e.Dialog, e.Control, e.Step)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *UnexpectedLayoutError) Unwrap() error   { return e.Err }
func (e *UnexpectedLayoutError) Retryable() bool { return false }

// LaunchError reports that the client process could not be started or exited
// before its login dialog appeared.
type LaunchError struct {
	Path string
	Pid  uint32
	Err  error
}

func (e *LaunchError) Error() string {
	if e.Pid != 0 {
		return fmt.Sprintf("launch %s (pid %d): %v", e.Path, e.Pid, e.Err)
	}

	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error   { return e.Err }
func (e *LaunchError) Retryable() bool { return false }

// ErrProcessExited is wrapped by LaunchError when the launched process goes away mid-poll.
var ErrProcessExited = errors.New("process exited before the login dialog appeared")

// UnsupportedPlatformError is returned by every window call on non-Windows builds.
type UnsupportedPlatformError struct {
	Op string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("%s: window automation requires Windows", e.Op)
}

func (e *UnsupportedPlatformError) Retryable() bool { return false }

type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether any error in err's chain asks to be retried.
func IsRetryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}

	return false
}
