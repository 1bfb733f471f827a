//go:build windows

package windows

import (
	win "golang.org/x/sys/windows"

	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/textenc"
)

// The client is an ANSI MFC application, so text crosses the boundary as
// native code-page bytes through the A variants.
var (
	user32               = win.NewLazySystemDLL("user32.dll")
	procFindWindowA      = user32.NewProc("FindWindowA")
	procFindWindowExA    = user32.NewProc("FindWindowExA")
	procSendMessageA     = user32.NewProc("SendMessageA")
	procIsWindow         = user32.NewProc("IsWindow")
	procIsWindowVisible  = user32.NewProc("IsWindowVisible")
	procEnumWindows      = user32.NewProc("EnumWindows")
	procEnumChildWindows = user32.NewProc("EnumChildWindows")
	procGetClassNameW    = user32.NewProc("GetClassNameW")
	procGetWindowLongW   = user32.NewProc("GetWindowLongW")
)

const (
	WM_SETTEXT       = 0x000C
	WM_GETTEXT       = 0x000D
	WM_GETTEXTLENGTH = 0x000E
	WM_CLOSE         = 0x0010
	BM_CLICK         = 0x00F5

	GWL_STYLE   = ^uintptr(15) // -16
	ES_PASSWORD = 0x0020

	SW_HIDE       = 0
	SW_SHOWNORMAL = 1
)

// WindowsAPI is the Win32 implementation of the query, dispatch and launch
// interfaces. It wraps a Client the same way the managers are composed there.
type WindowsAPI struct {
	client *Client
}

// NewWindowsAPI creates a WindowsAPI converting text with codec.
func NewWindowsAPI(log logger.LoggerInterface, codec textenc.Codec) *WindowsAPI {
	return &WindowsAPI{
		client: NewClient(log, codec),
	}
}

// WindowQuery interface implementation
func (w *WindowsAPI) FindTopLevel(q Query) (Handle, error) { return w.client.Window.FindTopLevel(q) }
func (w *WindowsAPI) FindChild(q Query) (Handle, error)    { return w.client.Window.FindChild(q) }
func (w *WindowsAPI) IsVisible(h Handle) bool              { return w.client.Window.IsVisible(h) }
func (w *WindowsAPI) EnumerateTopLevel() ([]Handle, error) {
	return w.client.Window.EnumerateTopLevel()
}

// MessageDispatcher interface implementation
func (w *WindowsAPI) Click(h Handle) error { return w.client.Messages.Click(h) }
func (w *WindowsAPI) Close(h Handle) error { return w.client.Messages.Close(h) }
func (w *WindowsAPI) SetText(h Handle, text string) error {
	return w.client.Messages.SetText(h, text)
}
func (w *WindowsAPI) GetText(h Handle) (string, error) { return w.client.Messages.GetText(h) }

// ChildInspector interface implementation
func (w *WindowsAPI) CollectChildInfos(h Handle) []ChildInfo {
	return w.client.Messages.CollectChildInfos(h)
}

// Launcher interface implementation
func (w *WindowsAPI) Launch(path string, show bool) (uint32, error) {
	return w.client.Launcher.Launch(path, show)
}
