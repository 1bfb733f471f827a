package testutil

import (
	"github.com/Norgate-AV/htauto/internal/apperr"
	"github.com/Norgate-AV/htauto/internal/textenc"
	"github.com/Norgate-AV/htauto/internal/windows"
)

// FakeWindow is one node of an in-memory window tree.
type FakeWindow struct {
	Hwnd     windows.Handle
	Class    string
	Text     string
	Visible  bool
	Masked   bool
	Children []*FakeWindow

	parent    *FakeWindow
	attached  bool
	pending   int
	destroyed bool
}

// Window builds a visible window with the given class, text and children.
func Window(class, text string, children ...*FakeWindow) *FakeWindow {
	return &FakeWindow{Class: class, Text: text, Visible: true, Children: children}
}

// Hidden marks the window as not visible.
func (w *FakeWindow) Hidden() *FakeWindow {
	w.Visible = false
	return w
}

// Password marks the window as a password edit, whose text diagnostics never read.
func (w *FakeWindow) Password() *FakeWindow {
	w.Masked = true
	return w
}

// Destroyed reports whether the window was closed or destroyed.
func (w *FakeWindow) Destroyed() bool { return w.destroyed }

// SetTextCall records one SetText on the desktop.
type SetTextCall struct {
	Hwnd windows.Handle
	Text string
}

// FakeDesktop implements interfaces.Desktop and interfaces.ChildInspector
// over an in-memory tree, recording every call for verification.
type FakeDesktop struct {
	codec    textenc.Codec
	top      []*FakeWindow
	handles  map[windows.Handle]*FakeWindow
	next     windows.Handle
	onClick  map[windows.Handle]func()
	enumFail error

	FindTopLevelCalls []windows.Query
	FindChildCalls    []windows.Query
	SetTextCalls      []SetTextCall
	GetTextCalls      []windows.Handle
	ClickCalls        []windows.Handle
	CloseCalls        []windows.Handle
	EnumerateCalls    int
}

// NewFakeDesktop creates an empty desktop that encodes text through GBK.
func NewFakeDesktop() *FakeDesktop {
	return &FakeDesktop{
		codec:   textenc.GBK,
		handles: make(map[windows.Handle]*FakeWindow),
		next:    0x1000,
		onClick: make(map[windows.Handle]func()),
	}
}

// WithCodec replaces the codec text passes through.
func (d *FakeDesktop) WithCodec(codec textenc.Codec) *FakeDesktop {
	d.codec = codec
	return d
}

// WithEnumerateError makes EnumerateTopLevel fail.
func (d *FakeDesktop) WithEnumerateError(err error) *FakeDesktop {
	d.enumFail = err
	return d
}

// register assigns handles to w and its descendants
func (d *FakeDesktop) register(w *FakeWindow, parent *FakeWindow) {
	if w.Hwnd == windows.NoWindow {
		d.next += 0x10
		w.Hwnd = d.next
	}

	w.parent = parent
	d.handles[w.Hwnd] = w

	for _, ch := range w.Children {
		d.register(ch, w)
	}
}

// Add places w on the desktop as an existing top-level window.
func (d *FakeDesktop) Add(w *FakeWindow) *FakeWindow {
	return d.AddLater(w, 0)
}

// AddLater places w on the desktop but lets top-level queries that would
// match it miss until the k-th one. k <= 1 means it is found immediately.
func (d *FakeDesktop) AddLater(w *FakeWindow, k int) *FakeWindow {
	d.register(w, nil)
	w.attached = true
	w.pending = max(k, 0)
	d.top = append(d.top, w)

	return w
}

// Prepare assigns handles to w without showing it, for use with Reveal.
func (d *FakeDesktop) Prepare(w *FakeWindow) *FakeWindow {
	d.register(w, nil)
	return w
}

// Reveal returns a hook that adds w once it runs, found on the k-th matching query.
func (d *FakeDesktop) Reveal(w *FakeWindow, k int) func() {
	return func() {
		if w.attached {
			return
		}

		d.AddLater(w, k)
	}
}

// OnClick runs fn whenever h is clicked.
func (d *FakeDesktop) OnClick(h windows.Handle, fn func()) *FakeDesktop {
	d.onClick[h] = fn
	return d
}

// Destroy removes w as if its window had gone away.
func (d *FakeDesktop) Destroy(w *FakeWindow) {
	w.destroyed = true

	for i, t := range d.top {
		if t == w {
			d.top = append(d.top[:i], d.top[i+1:]...)
			break
		}
	}
}

// Lookup returns the window behind h, or nil.
func (d *FakeDesktop) Lookup(h windows.Handle) *FakeWindow {
	w, ok := d.handles[h]
	if !ok || w.destroyed || !w.live() {
		return nil
	}

	return w
}

// live reports whether w or its top-level ancestor is on the desktop
func (w *FakeWindow) live() bool {
	for n := w; n != nil; n = n.parent {
		if n.destroyed {
			return false
		}

		if n.parent == nil {
			return n.attached
		}
	}

	return false
}

func (d *FakeDesktop) encodeQuery(q windows.Query) error {
	if _, err := d.codec.ToNative(q.ClassName); err != nil {
		return err
	}

	_, err := d.codec.ToNative(q.Title)
	return err
}

func matches(w *FakeWindow, q windows.Query) bool {
	if q.ClassName != "" && w.Class != q.ClassName {
		return false
	}

	return q.Title == "" || w.Text == q.Title
}

// FindTopLevel implements interfaces.WindowQuery
func (d *FakeDesktop) FindTopLevel(q windows.Query) (windows.Handle, error) {
	d.FindTopLevelCalls = append(d.FindTopLevelCalls, q)
	if err := d.encodeQuery(q); err != nil {
		return windows.NoWindow, err
	}

	for _, w := range d.top {
		if !matches(w, q) {
			continue
		}

		if w.pending > 0 {
			w.pending--
			if w.pending > 0 {
				continue
			}
		}

		return w.Hwnd, nil
	}

	return windows.NoWindow, nil
}

// FindChild implements interfaces.WindowQuery
func (d *FakeDesktop) FindChild(q windows.Query) (windows.Handle, error) {
	d.FindChildCalls = append(d.FindChildCalls, q)
	if err := d.encodeQuery(q); err != nil {
		return windows.NoWindow, err
	}

	parent := d.Lookup(q.Parent)
	if parent == nil {
		return windows.NoWindow, nil
	}

	started := q.After == windows.NoWindow
	for _, ch := range parent.Children {
		if !started {
			started = ch.Hwnd == q.After
			continue
		}

		if !ch.destroyed && matches(ch, q) {
			return ch.Hwnd, nil
		}
	}

	return windows.NoWindow, nil
}

// IsVisible implements interfaces.WindowQuery
func (d *FakeDesktop) IsVisible(h windows.Handle) bool {
	w := d.Lookup(h)
	return w != nil && w.Visible && w.pending == 0
}

// EnumerateTopLevel implements interfaces.WindowQuery
func (d *FakeDesktop) EnumerateTopLevel() ([]windows.Handle, error) {
	d.EnumerateCalls++
	if d.enumFail != nil {
		return nil, d.enumFail
	}

	handles := make([]windows.Handle, 0, len(d.top))
	for _, w := range d.top {
		if w.pending == 0 {
			handles = append(handles, w.Hwnd)
		}
	}

	return handles, nil
}

func (d *FakeDesktop) target(op string, h windows.Handle) (*FakeWindow, error) {
	w := d.Lookup(h)
	if w == nil {
		return nil, &apperr.InvalidHandleError{Op: op, Handle: uintptr(h)}
	}

	return w, nil
}

// Click implements interfaces.MessageDispatcher
func (d *FakeDesktop) Click(h windows.Handle) error {
	d.ClickCalls = append(d.ClickCalls, h)
	if _, err := d.target("click", h); err != nil {
		return err
	}

	if fn, ok := d.onClick[h]; ok {
		fn()
	}

	return nil
}

// Close implements interfaces.MessageDispatcher. The fake window closes at once.
func (d *FakeDesktop) Close(h windows.Handle) error {
	d.CloseCalls = append(d.CloseCalls, h)

	w, err := d.target("close", h)
	if err != nil {
		return err
	}

	d.Destroy(w)
	return nil
}

// SetText implements interfaces.MessageDispatcher
func (d *FakeDesktop) SetText(h windows.Handle, text string) error {
	d.SetTextCalls = append(d.SetTextCalls, SetTextCall{Hwnd: h, Text: text})

	w, err := d.target("set text", h)
	if err != nil {
		return err
	}

	if _, err := d.codec.ToNative(text); err != nil {
		return err
	}

	w.Text = text
	return nil
}

// GetText implements interfaces.MessageDispatcher
func (d *FakeDesktop) GetText(h windows.Handle) (string, error) {
	d.GetTextCalls = append(d.GetTextCalls, h)

	w, err := d.target("get text", h)
	if err != nil {
		return "", err
	}

	native, err := textenc.GBK.ToNative(w.Text)
	if err != nil {
		return "", err
	}

	return d.codec.FromNative(native)
}

// CollectChildInfos implements interfaces.ChildInspector
func (d *FakeDesktop) CollectChildInfos(h windows.Handle) []windows.ChildInfo {
	w := d.Lookup(h)
	if w == nil {
		return nil
	}

	var infos []windows.ChildInfo
	var walk func(*FakeWindow)
	walk = func(n *FakeWindow) {
		for _, ch := range n.Children {
			info := windows.ChildInfo{Hwnd: ch.Hwnd, ClassName: ch.Class, Masked: ch.Masked}
			if !ch.Masked {
				info.Text = ch.Text
			}

			infos = append(infos, info)
			walk(ch)
		}
	}

	walk(w)
	return infos
}
