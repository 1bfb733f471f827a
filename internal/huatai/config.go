package huatai

import (
	"errors"
	"fmt"
	"os"
)

// PathEnvVar overrides the client install location.
const PathEnvVar = "HUATAI_PATH"

const DefaultExecutablePath = `C:\Program Files\htwt\xiadan.exe`

// GetHuataiPath returns the path to xiadan.exe.
// It checks the HUATAI_PATH environment variable first,
// falling back to the default installation path if not set.
func GetHuataiPath() string {
	if envPath := os.Getenv(PathEnvVar); envPath != "" {
		return envPath
	}

	return DefaultExecutablePath
}

// ValidateInstallation checks that the executable at path exists and is a file.
// The error explains where the path came from so the user knows what to fix.
func ValidateInstallation(path string) error {
	info, err := os.Stat(path)

	switch {
	case errors.Is(err, os.ErrNotExist):
		if os.Getenv(PathEnvVar) == path {
			return fmt.Errorf("trading client not found at custom path: %s\n"+
				"Please verify the %s environment variable is correct", path, PathEnvVar)
		}

		if path == DefaultExecutablePath {
			return fmt.Errorf("trading client not found at default path: %s\n"+
				"Please install the client or set the %s environment variable", path, PathEnvVar)
		}

		return fmt.Errorf("trading client not found at %s", path)
	case err != nil:
		return fmt.Errorf("error checking trading client installation at %s: %w", path, err)
	case info.IsDir():
		return fmt.Errorf("trading client path %s is a directory, expected xiadan.exe", path)
	}

	return nil
}
