package buildctx

import "os"

// Attribution records who runs the build.
type Attribution int

const (
	// Developer builds run on a workstation and never publish.
	Developer Attribution = iota
	// BuildServer builds run under CI and may publish.
	BuildServer
)

// String returns the attribution name.
func (a Attribution) String() string {
	if a == BuildServer {
		return "build-server"
	}
	return "developer"
}

// ciVariables are set by well-known build servers.
var ciVariables = []string{
	"CI",
	"TEAMCITY_VERSION",
	"JENKINS_URL",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"TF_BUILD",
	"BUILDKITE",
}

// EnvAttribution reports BuildServer when any CI variable is set.
func EnvAttribution() Attribution {
	for _, name := range ciVariables {
		if v, ok := os.LookupEnv(name); ok && v != "" && v != "false" {
			return BuildServer
		}
	}
	return Developer
}
