//go:build windows

package windows

import (
	"log/slog"
	"unsafe"

	"github.com/Norgate-AV/htauto/internal/apperr"
	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/textenc"
)

// messageDispatcher implements the MessageDispatcher interface.
// SendMessage blocks until the target window has processed the message.
type messageDispatcher struct {
	log   logger.LoggerInterface
	codec textenc.Codec
}

// newMessageDispatcher creates a new message dispatcher
func newMessageDispatcher(log logger.LoggerInterface, codec textenc.Codec) *messageDispatcher {
	return &messageDispatcher{log: log, codec: codec}
}

// checkHandle rejects absent and destroyed windows before a message is sent
func checkHandle(op string, h Handle) error {
	if !IsWindow(h) {
		return &apperr.InvalidHandleError{Op: op, Handle: uintptr(h)}
	}

	return nil
}

// Click sends BM_CLICK, which the button turns into its normal click notification
func (m *messageDispatcher) Click(h Handle) error {
	if err := checkHandle("click", h); err != nil {
		return err
	}

	m.log.Debug("Sending BM_CLICK", slog.String("hwnd", h.String()))
	_, _, _ = procSendMessageA.Call(uintptr(h), BM_CLICK, 0, 0)

	return nil
}

// Close asks the window to close itself; it may still be alive on return
func (m *messageDispatcher) Close(h Handle) error {
	if err := checkHandle("close", h); err != nil {
		return err
	}

	m.log.Debug("Sending WM_CLOSE", slog.String("hwnd", h.String()))
	_, _, _ = procSendMessageA.Call(uintptr(h), WM_CLOSE, 0, 0)

	return nil
}

// SetText replaces the control's text. The value is never logged.
func (m *messageDispatcher) SetText(h Handle, text string) error {
	if err := checkHandle("set text", h); err != nil {
		return err
	}

	raw, err := m.codec.ToNative(text)
	if err != nil {
		return err
	}

	// An absent value still has to clear the control
	if raw == nil {
		raw = []byte{}
	}

	p := cstr(raw)
	_, _, _ = procSendMessageA.Call(uintptr(h), WM_SETTEXT, 0, uintptr(unsafe.Pointer(p)))

	return nil
}

// GetText reads the control's text using a buffer sized from WM_GETTEXTLENGTH
func (m *messageDispatcher) GetText(h Handle) (string, error) {
	if err := checkHandle("get text", h); err != nil {
		return "", err
	}

	length, _, _ := procSendMessageA.Call(uintptr(h), WM_GETTEXTLENGTH, 0, 0)

	// Room for the terminating NUL, so a zero-length text still gets a valid buffer
	buf := make([]byte, int(length)+1)
	copied, _, _ := procSendMessageA.Call(uintptr(h), WM_GETTEXT, uintptr(len(buf)), uintptr(unsafe.Pointer(&buf[0])))

	n := int(copied)
	if n > len(buf)-1 {
		n = len(buf) - 1
	}

	return m.codec.FromNative(buf[:n])
}

// CollectChildInfos returns class and text for all descendants of hwnd.
// Text goes through WM_GETTEXT since GetWindowText cannot read another
// process's edit controls. Password edits are masked and never read.
func (m *messageDispatcher) CollectChildInfos(hwnd Handle) []ChildInfo {
	children := EnumerateChildren(hwnd)
	infos := make([]ChildInfo, 0, len(children))

	for _, ch := range children {
		info := ChildInfo{Hwnd: ch, ClassName: GetClassName(ch)}

		if IsPasswordEdit(ch) {
			info.Masked = true
		} else if text, err := m.GetText(ch); err == nil {
			info.Text = text
		} else {
			m.log.Trace("Could not read control text", slog.String("hwnd", ch.String()), slog.Any("error", err))
		}

		infos = append(infos, info)
	}

	return infos
}
