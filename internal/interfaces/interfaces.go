// Package interfaces defines core interfaces for dependency injection and testing.
package interfaces

import (
	"github.com/Norgate-AV/htauto/internal/windows"
)

// WindowQuery locates windows. Queries never wait and never mutate anything.
type WindowQuery interface {
	FindTopLevel(q windows.Query) (windows.Handle, error)
	FindChild(q windows.Query) (windows.Handle, error)
	IsVisible(h windows.Handle) bool
	EnumerateTopLevel() ([]windows.Handle, error)
}

// MessageDispatcher sends synchronous messages to a window.
// Every method fails with *apperr.InvalidHandleError for an absent or stale handle.
type MessageDispatcher interface {
	Click(h windows.Handle) error
	Close(h windows.Handle) error
	SetText(h windows.Handle, text string) error
	GetText(h windows.Handle) (string, error)
}

// Desktop is the full window tree surface used by login and cleanup.
type Desktop interface {
	WindowQuery
	MessageDispatcher
}

// Launcher starts the client executable.
type Launcher interface {
	Launch(path string, show bool) (pid uint32, err error)
}

// ProcessChecker reports whether a launched process is still running.
type ProcessChecker interface {
	Alive(pid uint32) bool
}

// ChildInspector lists a window's controls for diagnostics.
type ChildInspector interface {
	CollectChildInfos(h windows.Handle) []windows.ChildInfo
}
