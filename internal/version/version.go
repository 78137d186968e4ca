// Package version provides version information for the ship CLI.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// cueModule is the module path of the CUE SDK used for schema validation.
const cueModule = "cuelang.org/go"

// Info contains version information.
type Info struct {
	// Version is the CLI version (set via ldflags).
	Version string `json:"version"`

	// GitCommit is the git commit hash.
	GitCommit string `json:"gitCommit"`

	// BuildDate is the build timestamp.
	BuildDate string `json:"buildDate"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"goVersion"`

	// Platform is GOOS/GOARCH.
	Platform string `json:"platform"`

	// CUESDKVersion is the CUE SDK linked into the binary, "unknown" when
	// build information is unavailable.
	CUESDKVersion string `json:"cueSDKVersion"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:       Version,
		GitCommit:     GitCommit,
		BuildDate:     BuildDate,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
		CUESDKVersion: depVersion(cueModule),
	}
}

// depVersion looks up a dependency in the embedded build information.
func depVersion(module string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range bi.Deps {
		if dep.Path != module {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return "unknown"
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("ship version %s\n  Commit:    %s\n  Built:     %s\n  Go:        %s\n  Platform:  %s\n  CUE SDK:   %s",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform, i.CUESDKVersion)
}
