package windows

import "fmt"

// Handle identifies a native window or control. It is owned by the window
// manager and only valid while the window exists.
type Handle uintptr

// NoWindow is the absent handle.
const NoWindow Handle = 0

// Valid reports whether h refers to something at all. It does not check that
// the window still exists.
func (h Handle) Valid() bool { return h != NoWindow }

func (h Handle) String() string { return fmt.Sprintf("0x%X", uintptr(h)) }

// Query describes a window lookup. Empty ClassName or Title match anything.
// Parent and After are only used for child lookups; After is an exclusive
// lower bound in the parent's z-order.
type Query struct {
	ClassName string
	Title     string
	Parent    Handle
	After     Handle
}

// ChildInfo describes one child control, used for layout diagnostics.
// Masked controls are password edits whose Text is left empty.
type ChildInfo struct {
	Hwnd      Handle
	ClassName string
	Text      string
	Masked    bool
}

// Window classes of the standard controls the client is built from.
const (
	ClassButton   = "Button"
	ClassComboBox = "ComboBox"
	ClassEdit     = "Edit"
	ClassStatic   = "Static"
)
