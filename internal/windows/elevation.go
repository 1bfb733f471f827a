//go:build windows

package windows

import (
	"fmt"
	"os"
	"strings"

	win "golang.org/x/sys/windows"
)

// IsElevated reports whether this process runs with an elevated token.
// The client usually runs elevated and UIPI drops messages sent to it from a
// lower integrity level.
func IsElevated() bool {
	return win.GetCurrentProcessToken().IsElevated()
}

// RelaunchAsAdmin starts this executable again through the "runas" verb
func RelaunchAsAdmin() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	// Check if running via 'go run' (exe will be in temp dir)
	if strings.Contains(exe, "go-build") {
		return fmt.Errorf("cannot relaunch when run via 'go run', please build the executable first with: go build -o htauto.exe")
	}

	verb, err := win.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}

	file, err := win.UTF16PtrFromString(exe)
	if err != nil {
		return err
	}

	args, err := win.UTF16PtrFromString(quoteArgs(os.Args[1:]))
	if err != nil {
		return err
	}

	return win.ShellExecute(0, verb, file, args, nil, SW_SHOWNORMAL)
}

// quoteArgs rebuilds a command line, quoting arguments that contain spaces
func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = win.EscapeArg(a)
	}

	return strings.Join(quoted, " ")
}
