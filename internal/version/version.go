// Package version reports the version of the fwbuild binaries themselves,
// not the firmware version they stamp into the metadata header.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Version and Commit can be set at build time:
//
//	go build -ldflags="-X github.com/muurk/fwbuild/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/fwbuild/internal/version.Commit=abc123"
//
// Unset values are taken from the embedded build info, then fall back to
// "dev-<timestamp>" and "unknown".
var (
	Version = ""
	Commit  = ""
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		v, c := fromBuildInfo(info)
		if Version == "" {
			Version = v
		}
		if Commit == "" {
			Commit = c
		}
	}

	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo derives a version and short commit from build info.
// A module version (set by go install pkg@vX.Y.Z) wins over the VCS
// commit date; either may be empty.
func fromBuildInfo(info *debug.BuildInfo) (version, commit string) {
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; rev != "" {
		commit = rev
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if settings["vcs.modified"] == "true" {
			commit += "-dirty"
		}
	}

	switch {
	case info.Main.Version != "" && info.Main.Version != "(devel)":
		version = info.Main.Version
	case settings["vcs.time"] != "":
		if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			version = "dev-" + t.Format("20060102")
		}
	}

	return version, commit
}

// Full returns the full version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Line formats the one-line banner printed by the version subcommands.
func Line(binary string) string {
	return fmt.Sprintf("%s %s", binary, Full())
}
