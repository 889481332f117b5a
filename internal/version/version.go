package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version, commit and build date. When the commit or date were
// not injected, the VCS stamp recorded by the Go toolchain is used instead.
func Info() (string, string, string) {
	commit, date := GitCommit, BuildDate
	if commit != "unknown" && date != "unknown" {
		return Version, commit, date
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "unknown":
				commit = shortRevision(s.Value)
			case s.Key == "vcs.time" && date == "unknown":
				date = s.Value
			}
		}
	}
	return Version, commit, date
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String returns a one-line description for --version output.
func String() string {
	v, commit, date := Info()
	return fmt.Sprintf("%s (commit: %s, built: %s, %s %s/%s)",
		v, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
