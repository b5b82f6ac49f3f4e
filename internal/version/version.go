// Package version carries the build identity of the docsite binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/docsite/internal/version.Version=v1.0.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Resolved returns Version, falling back to the module version recorded
// by the Go toolchain when ldflags were not set.
func Resolved() string {
	if Version != "unknown" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// String is the one-line version banner.
func String() string {
	return fmt.Sprintf("docsite %s (commit %s, built %s)", Resolved(), GitCommit, BuildTime)
}
