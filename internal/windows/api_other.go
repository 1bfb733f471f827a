//go:build !windows

package windows

import (
	"github.com/Norgate-AV/htauto/internal/apperr"
	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/textenc"
)

// WindowsAPI fails every call on platforms without a Win32 window manager.
type WindowsAPI struct{}

// NewWindowsAPI returns the unsupported-platform implementation.
func NewWindowsAPI(_ logger.LoggerInterface, _ textenc.Codec) *WindowsAPI {
	return &WindowsAPI{}
}

func unsupported(op string) error { return &apperr.UnsupportedPlatformError{Op: op} }

func (w *WindowsAPI) FindTopLevel(Query) (Handle, error)   { return NoWindow, unsupported("find window") }
func (w *WindowsAPI) FindChild(Query) (Handle, error)      { return NoWindow, unsupported("find child window") }
func (w *WindowsAPI) IsVisible(Handle) bool                { return false }
func (w *WindowsAPI) EnumerateTopLevel() ([]Handle, error) { return nil, unsupported("enumerate windows") }
func (w *WindowsAPI) Click(Handle) error                   { return unsupported("click") }
func (w *WindowsAPI) Close(Handle) error                   { return unsupported("close") }
func (w *WindowsAPI) SetText(Handle, string) error         { return unsupported("set text") }
func (w *WindowsAPI) GetText(Handle) (string, error)       { return "", unsupported("get text") }
func (w *WindowsAPI) CollectChildInfos(Handle) []ChildInfo { return nil }
func (w *WindowsAPI) Launch(string, bool) (uint32, error)  { return 0, unsupported("launch") }

// IsElevated is always false off Windows.
func IsElevated() bool { return false }

// RelaunchAsAdmin is not available off Windows.
func RelaunchAsAdmin() error { return unsupported("relaunch as admin") }
