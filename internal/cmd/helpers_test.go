package cmd

import (
	"testing"

	"github.com/opmodel/ship/internal/testutil"
)

// isolateEnv clears build server and SHIP_* variables so runs are attributed
// to a developer regardless of where the tests execute.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CI", "TEAMCITY_VERSION", "JENKINS_URL", "GITHUB_ACTIONS", "GITLAB_CI", "TF_BUILD", "BUILDKITE",
		"SHIP_CONFIG", "SHIP_BRANCH", "SHIP_BUILD_ID", "SHIP_ENVIRONMENT", "SHIP_VERSION",
		"SHIP_UPLOAD_ENDPOINT", "SHIP_RELEASE_URL", "SHIP_SERVER_URL",
	} {
		t.Setenv(name, "")
	}
}

const projectConfig = `version: 1.2.3
package:
  name: App
  description: Sample application
  paths:
    - path: bin
      include: ["*.dll"]
`

// project writes a build root with ship.yaml, build outputs and a platform tree.
func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"ship.yaml":              projectConfig,
		"bin/App.dll":            "app",
		"bin/App.pdb":            "symbols",
		"platform/db/schema.sql": "create table",
	})
	return root
}
