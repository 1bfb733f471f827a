//go:build windows

package windows

import (
	"strings"
	"sync"
	"unsafe"

	win "golang.org/x/sys/windows"
)

// cstr returns a NUL-terminated copy of b, or nil for an absent value
func cstr(b []byte) *byte {
	if b == nil {
		return nil
	}

	buf := make([]byte, len(b)+1)
	copy(buf, b)

	return &buf[0]
}

// IsPasswordEdit reports whether hwnd is an edit control with the ES_PASSWORD style
func IsPasswordEdit(hwnd Handle) bool {
	if !strings.EqualFold(GetClassName(hwnd), ClassEdit) {
		return false
	}

	style, _, _ := procGetWindowLongW.Call(uintptr(hwnd), GWL_STYLE)
	return style&ES_PASSWORD != 0
}

// GetClassName retrieves the class name of a window
func GetClassName(hwnd Handle) string {
	buf := make([]uint16, 256)

	ret, _, _ := procGetClassNameW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if ret == 0 {
		return ""
	}

	return win.UTF16ToString(buf)
}

// IsWindow checks if a window handle is valid
func IsWindow(hwnd Handle) bool {
	if hwnd == NoWindow {
		return false
	}

	ret, _, _ := procIsWindow.Call(uintptr(hwnd))
	return ret != 0
}

// IsWindowVisible checks if a window is visible
func IsWindowVisible(hwnd Handle) bool {
	if hwnd == NoWindow {
		return false
	}

	ret, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
	return ret != 0
}

// EnumWindows callbacks are created once: syscall callbacks are never freed
// and the runtime caps how many can exist.
var (
	enumMu       sync.Mutex
	enumFound    []Handle
	enumCallback = win.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		enumFound = append(enumFound, Handle(hwnd))
		return 1 // Continue enumeration
	})
)

// enumerate collects the handles reported by an Enum*Windows proc
func enumerate(call func(cb uintptr) uintptr) ([]Handle, bool) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumFound = nil
	ok := call(enumCallback) != 0

	// Copy so the next enumeration cannot alias this result
	handles := make([]Handle, len(enumFound))
	copy(handles, enumFound)
	enumFound = nil

	return handles, ok
}

// EnumerateTopLevel returns every top-level window in z-order
func EnumerateTopLevel() ([]Handle, bool) {
	return enumerate(func(cb uintptr) uintptr {
		ret, _, _ := procEnumWindows.Call(cb, 0)
		return ret
	})
}

// EnumerateChildren returns every descendant control of hwnd
func EnumerateChildren(hwnd Handle) []Handle {
	handles, _ := enumerate(func(cb uintptr) uintptr {
		// EnumChildWindows' return value is not meaningful
		_, _, _ = procEnumChildWindows.Call(uintptr(hwnd), cb, 0)
		return 1
	})

	return handles
}
