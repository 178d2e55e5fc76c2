package version

import (
	"fmt"
	"runtime"
)

// Version, Commit and Date are overridden at build time with -ldflags "-X".
var (
	// Version of the release tools
	Version = "dev"
	// Commit hash
	Commit = "unknown"
	// Date the binary was built
	Date = "unknown"
)

// VersionInfo returns complete version information for the named binary
func VersionInfo(name string) string {
	return fmt.Sprintf("%s version %s\nCommit: %s\nBuilt: %s\nGo version: %s (%s/%s)",
		name, Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
