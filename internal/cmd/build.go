package cmd

import (
	"github.com/spf13/cobra"
)

// runFlags are shared by build and package.
type runFlags struct {
	Output string
	List   bool
}

// AddTo registers the run flags on the given cobra command.
func (f *runFlags) AddTo(c *cobra.Command) {
	c.Flags().StringVarP(&f.Output, "output", "o", "table", "Report format: table, json, yaml")
	c.Flags().BoolVar(&f.List, "list", false, "Print the archive contents")
}

// NewBuildCmd creates the build command.
func NewBuildCmd(g *GlobalConfig) *cobra.Command {
	var rf runFlags

	c := &cobra.Command{
		Use:   "build",
		Short: "Version, package and release the build outputs",
		Long: `Run the full pipeline: resolve the version, assemble the package and,
on a build server building develop, release or master, upload it and
register it with the deployment system.

Examples:
  # Package the current build root as a developer build
  ship build

  # Build server run
  SHIP_BUILD_ID=4711 ship build --branch origin/develop

  # Machine readable report
  ship build -o json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			_, err := runPipeline(c.Context(), g, runOptions{Output: rf.Output, List: rf.List})
			return err
		},
	}

	rf.AddTo(c)
	return c
}

// NewPackageCmd creates the package command.
func NewPackageCmd(g *GlobalConfig) *cobra.Command {
	var rf runFlags

	c := &cobra.Command{
		Use:   "package",
		Short: "Assemble the package without uploading",
		Long: `Resolve the version and assemble the package archive. Nothing is
uploaded and the upload and release settings are not required.

Examples:
  ship package --version 1.4.0

  # Show what went into the archive
  ship package --list`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			_, err := runPipeline(c.Context(), g, runOptions{PackageOnly: true, Output: rf.Output, List: rf.List})
			return err
		},
	}

	rf.AddTo(c)
	return c
}
