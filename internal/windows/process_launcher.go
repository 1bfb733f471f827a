//go:build windows

package windows

import (
	"fmt"
	"log/slog"
	"unsafe"

	win "golang.org/x/sys/windows"

	"github.com/Norgate-AV/htauto/internal/logger"
)

var (
	shell32            = win.NewLazySystemDLL("shell32.dll")
	procShellExecuteEx = shell32.NewProc("ShellExecuteExW")
)

// SHELLEXECUTEINFO for ShellExecuteEx API
type SHELLEXECUTEINFO struct {
	CbSize       uint32
	FMask        uint32
	Hwnd         uintptr
	LpVerb       *uint16
	LpFile       *uint16
	LpParameters *uint16
	LpDirectory  *uint16
	NShow        int32
	HInstApp     uintptr
	LpIDList     uintptr
	LpClass      *uint16
	HkeyClass    uintptr
	DwHotKey     uint32
	HIcon        uintptr
	HProcess     win.Handle
}

// processLauncher implements the Launcher interface
type processLauncher struct {
	log logger.LoggerInterface
}

// newProcessLauncher creates a new process launcher
func newProcessLauncher(log logger.LoggerInterface) *processLauncher {
	return &processLauncher{log: log}
}

// Launch starts path through the shell and returns the new process ID
func (p *processLauncher) Launch(path string, show bool) (uint32, error) {
	showCmd := SW_HIDE
	if show {
		showCmd = SW_SHOWNORMAL
	}

	return ShellExecuteEx("open", path, "", "", showCmd, p.log)
}

// ShellExecuteEx executes a file using the Windows shell and returns the process ID
// This is more reliable than ShellExecute when you need to track the launched process
func ShellExecuteEx(verb, file, args, cwd string, showCmd int, log logger.LoggerInterface) (uint32, error) {
	const SEE_MASK_NOCLOSEPROCESS = 0x00000040

	var verbPtr, filePtr, argsPtr, cwdPtr *uint16
	var err error

	if verb != "" {
		if verbPtr, err = win.UTF16PtrFromString(verb); err != nil {
			return 0, err
		}
	}

	if filePtr, err = win.UTF16PtrFromString(file); err != nil {
		return 0, err
	}

	if args != "" {
		if argsPtr, err = win.UTF16PtrFromString(args); err != nil {
			return 0, err
		}
	}

	if cwd != "" {
		if cwdPtr, err = win.UTF16PtrFromString(cwd); err != nil {
			return 0, err
		}
	}

	sei := SHELLEXECUTEINFO{
		CbSize:       uint32(unsafe.Sizeof(SHELLEXECUTEINFO{})),
		FMask:        SEE_MASK_NOCLOSEPROCESS,
		LpVerb:       verbPtr,
		LpFile:       filePtr,
		LpParameters: argsPtr,
		LpDirectory:  cwdPtr,
		NShow:        int32(showCmd),
	}

	ret, _, callErr := procShellExecuteEx.Call(uintptr(unsafe.Pointer(&sei)))
	if ret == 0 {
		return 0, fmt.Errorf("shell execute ex failed: %w", callErr)
	}

	// The shell may hand the file to an existing instance and give no process back
	if sei.HProcess == 0 {
		log.Debug("ShellExecuteEx returned no process handle", slog.String("file", file))
		return 0, nil
	}

	defer func() {
		if err := win.CloseHandle(sei.HProcess); err != nil {
			log.Debug("Failed to close process handle", slog.Any("error", err))
		}
	}()

	pid, err := win.GetProcessId(sei.HProcess)
	if err != nil {
		return 0, fmt.Errorf("failed to get process ID from handle: %w", err)
	}

	return pid, nil
}
