// Package version reports what build of htauto is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags "-X github.com/Norgate-AV/htauto/internal/version.version=..." by release builds.
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Info is the build metadata of the running binary.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Get returns the linked-in metadata. Binaries built with plain `go build` or
// `go install` fall back to the VCS stamp the toolchain embeds.
func Get() Info {
	info := Info{Version: version, Commit: commit, Date: date}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fillFromBuildInfo(info, bi)
	}

	if info.Commit == "" {
		info.Commit = "none"
	}

	if info.Date == "" {
		info.Date = "unknown"
	}

	return info
}

func fillFromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
				if len(info.Commit) > 7 {
					info.Commit = info.Commit[:7]
				}
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		}
	}

	return info
}

func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}

// GetVersion returns the semantic version, or "dev".
func GetVersion() string {
	return Get().Version
}

// GetFullVersion returns version with commit and date info
func GetFullVersion() string {
	return Get().String()
}
