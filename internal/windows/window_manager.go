//go:build windows

package windows

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/textenc"
)

// windowManager implements the WindowQuery interface. Every method is a
// single lookup: no retries, no waiting.
type windowManager struct {
	log   logger.LoggerInterface
	codec textenc.Codec
}

// newWindowManager creates a new window manager
func newWindowManager(log logger.LoggerInterface, codec textenc.Codec) *windowManager {
	return &windowManager{log: log, codec: codec}
}

// encodeQuery converts the class and title filters to native strings
func (w *windowManager) encodeQuery(q Query) (class, title *byte, err error) {
	rawClass, err := w.codec.ToNative(q.ClassName)
	if err != nil {
		return nil, nil, fmt.Errorf("class name %q: %w", q.ClassName, err)
	}

	rawTitle, err := w.codec.ToNative(q.Title)
	if err != nil {
		return nil, nil, fmt.Errorf("title %q: %w", q.Title, err)
	}

	return cstr(rawClass), cstr(rawTitle), nil
}

// FindTopLevel returns the window manager's first top-level match for q
func (w *windowManager) FindTopLevel(q Query) (Handle, error) {
	class, title, err := w.encodeQuery(q)
	if err != nil {
		return NoWindow, err
	}

	ret, _, _ := procFindWindowA.Call(
		uintptr(unsafe.Pointer(class)),
		uintptr(unsafe.Pointer(title)),
	)

	w.log.Trace("FindWindow",
		slog.String("class", q.ClassName),
		slog.String("title", q.Title),
		slog.String("hwnd", Handle(ret).String()),
	)

	return Handle(ret), nil
}

// FindChild returns the first child of q.Parent after q.After matching q
func (w *windowManager) FindChild(q Query) (Handle, error) {
	class, title, err := w.encodeQuery(q)
	if err != nil {
		return NoWindow, err
	}

	ret, _, _ := procFindWindowExA.Call(
		uintptr(q.Parent),
		uintptr(q.After),
		uintptr(unsafe.Pointer(class)),
		uintptr(unsafe.Pointer(title)),
	)

	w.log.Trace("FindWindowEx",
		slog.String("parent", q.Parent.String()),
		slog.String("after", q.After.String()),
		slog.String("class", q.ClassName),
		slog.String("title", q.Title),
		slog.String("hwnd", Handle(ret).String()),
	)

	return Handle(ret), nil
}

// IsVisible reports whether h exists and has the WS_VISIBLE style
func (w *windowManager) IsVisible(h Handle) bool {
	return IsWindowVisible(h)
}

// EnumerateTopLevel materializes the current top-level windows
func (w *windowManager) EnumerateTopLevel() ([]Handle, error) {
	handles, ok := EnumerateTopLevel()
	if !ok {
		return nil, fmt.Errorf("EnumWindows failed")
	}

	w.log.Trace("Enumerated top-level windows", slog.Int("count", len(handles)))
	return handles, nil
}
