// Package version holds build metadata for apicheck.
package version

import "runtime/debug"

// Overridable with ldflags:
// go build -ldflags "-X apicheck/internal/version.Version=1.0.0 -X apicheck/internal/version.Commit=abc123"
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// revision returns Commit, falling back to the vcs.revision stamped by the Go
// toolchain when ldflags did not set one.
func revision() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}

// Info returns the version with a short commit suffix when one is known.
func Info() string {
	if rev := revision(); rev != "unknown" && len(rev) > 7 {
		return Version + " (" + rev[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "apicheck version " + Version + "\n" +
		"Commit: " + revision() + "\n" +
		"Built: " + BuildDate
}
