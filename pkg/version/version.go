// Package version exposes the build metadata stamped into the planloom binary.
//
// Release builds inject Version, Commit, and Date through -ldflags; source
// builds fall back to the VCS metadata the Go toolchain embeds in the module.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Overridden at link time, e.g.
// -ldflags "-X github.com/planloom/planloom/pkg/version.Version=v1.2.3".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo bundles everything the version command reports.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get assembles the build info for the running binary. When the linker did
// not stamp a commit, the revision recorded by the Go toolchain is used.
func Get() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Commit != "unknown" {
		return info
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// String renders the one-line form printed by the version command.
func (b BuildInfo) String() string {
	return fmt.Sprintf("Planloom %s (commit: %s, built: %s, go: %s)",
		b.Version, b.Commit, b.Date, b.GoVersion)
}

// String reports the one-line version of the running binary.
func String() string {
	return Get().String()
}
