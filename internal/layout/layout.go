// Package layout recognizes dialogs by the shape of their child controls.
//
// A Pattern is an ordered list of constraints. Matching walks the parent's
// children in z-order: each step looks for the first child after the previous
// step's match that has the step's class (and title, when given), then checks
// the control's text when the step asks for it. A step marked Within looks
// inside the previous sibling-level match instead, without moving the sibling
// cursor.
package layout

import (
	"fmt"

	"github.com/Norgate-AV/htauto/internal/windows"
)

// Tree is the part of the desktop a pattern needs.
type Tree interface {
	FindChild(q windows.Query) (windows.Handle, error)
	GetText(h windows.Handle) (string, error)
}

// Constraint describes one expected control.
type Constraint struct {
	Name   string
	Class  string
	Title  string // matched by the window manager during the lookup
	Text   string // compared with the control's text after the lookup; empty skips the check
	Within bool
}

// Pattern is a named, ordered sequence of constraints.
type Pattern struct {
	Name  string
	Steps []Constraint
}

// Match holds the handle found for each step of a pattern, in step order.
type Match struct {
	pattern Pattern
	handles []windows.Handle
}

// Handles returns the matched handles in step order.
func (m Match) Handles() []windows.Handle {
	return append([]windows.Handle(nil), m.handles...)
}

// Lookup returns the handle matched by the step called name.
func (m Match) Lookup(name string) windows.Handle {
	for i, step := range m.pattern.Steps {
		if step.Name == name && i < len(m.handles) {
			return m.handles[i]
		}
	}

	return windows.NoWindow
}

// MismatchError reports the first step that did not match.
type MismatchError struct {
	Pattern string
	Step    int
	Control string
	Reason  string
	Err     error
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("%s: step %d (%s): %s", e.Pattern, e.Step, e.Control, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *MismatchError) Unwrap() error { return e.Err }

// Match applies p to the children of parent. It stops at the first step that
// fails and never retries.
func (p Pattern) Match(t Tree, parent windows.Handle) (Match, error) {
	m := Match{pattern: p, handles: make([]windows.Handle, 0, len(p.Steps))}
	cursor := windows.NoWindow

	for i, step := range p.Steps {
		mismatch := func(reason string, err error) (Match, error) {
			return Match{}, &MismatchError{Pattern: p.Name, Step: i, Control: step.Name, Reason: reason, Err: err}
		}

		q := windows.Query{ClassName: step.Class, Title: step.Title, Parent: parent, After: cursor}
		if step.Within {
			if cursor == windows.NoWindow {
				return mismatch("nothing to look within", nil)
			}

			q.Parent, q.After = cursor, windows.NoWindow
		}

		h, err := t.FindChild(q)
		if err != nil {
			return mismatch("lookup failed", err)
		}

		if h == windows.NoWindow {
			return mismatch("not found", nil)
		}

		if step.Text != "" {
			text, err := t.GetText(h)
			if err != nil {
				return mismatch("reading text failed", err)
			}

			if text != step.Text {
				return mismatch(fmt.Sprintf("text %q does not equal %q", text, step.Text), nil)
			}
		}

		m.handles = append(m.handles, h)
		if !step.Within {
			cursor = h
		}
	}

	return m, nil
}

// Matches reports whether p matches the children of parent.
func (p Pattern) Matches(t Tree, parent windows.Handle) bool {
	_, err := p.Match(t, parent)
	return err == nil
}
