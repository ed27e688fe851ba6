// Package version reports which build of followup is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time via ldflags:
//
//	-X github.com/example/followup/internal/version.Commit=$(git rev-parse HEAD)
//	-X github.com/example/followup/internal/version.BuildTime=$(date -u +%FT%TZ)
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info describes the running binary. It is printed by "followup config" and
// logged when serve starts.
type Info struct {
	Commit    string `yaml:"commit"`
	BuildTime string `yaml:"build_time"`
	GoVersion string `yaml:"go_version"`
}

// Get returns the build info. Values not set through ldflags fall back to
// the VCS stamp the go tool embeds, when there is one.
func Get() Info {
	info := Info{Commit: Commit, BuildTime: BuildTime, GoVersion: runtime.Version()}
	if info.Commit != "unknown" && info.BuildTime != "unknown" {
		return info
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fromSettings(info, bi.Settings)
}

func fromSettings(info Info, settings []debug.BuildSetting) Info {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" && s.Value != "" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// Short returns the commit abbreviated to seven characters.
func (i Info) Short() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

// String returns the version string (commit-hash based, no semver)
func String() string {
	info := Get()
	return fmt.Sprintf("followup dev (commit: %s, built: %s)", info.Short(), info.BuildTime)
}
