// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/ship/internal/output"
)

// GlobalConfig holds the CLI-wide flags. It is populated by cobra and passed
// explicitly into every sub-command constructor.
type GlobalConfig struct {
	ConfigFlag  string
	Root        string
	Verbose     bool
	Timestamps  bool
	Branch      string
	BuildID     string
	Environment string
	Version     string

	// TimestampsSet records whether --timestamps was given explicitly, in
	// which case it wins over the log section of ship.yaml.
	TimestampsSet bool
}

// NewRootCmd creates the root command for the ship CLI.
func NewRootCmd() *cobra.Command {
	g := &GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "ship",
		Short: "Version, package and release build outputs",
		Long: `ship resolves the version of a build, assembles a deployment package
from the build outputs and, on a build server, uploads it and registers it
with the deployment system.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			g.TimestampsSet = c.Flags().Changed("timestamps")
			setupLogging(g, nil)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.ConfigFlag, "config", "", "Path to ship.yaml (env: SHIP_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&g.Root, "root", ".", "Build root directory")
	rootCmd.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&g.Timestamps, "timestamps", true, "Show timestamps in log output")
	rootCmd.PersistentFlags().StringVar(&g.Branch, "branch", "", "Source branch (env: SHIP_BRANCH, default: current git branch)")
	rootCmd.PersistentFlags().StringVar(&g.BuildID, "build-id", "", "Build server run id (env: SHIP_BUILD_ID)")
	rootCmd.PersistentFlags().StringVar(&g.Environment, "environment", "", "Target environment (env: SHIP_ENVIRONMENT)")
	rootCmd.PersistentFlags().StringVar(&g.Version, "version", "", "Version used when ship.yaml has none (env: SHIP_VERSION)")

	rootCmd.AddCommand(NewBuildCmd(g))
	rootCmd.AddCommand(NewPackageCmd(g))
	rootCmd.AddCommand(NewConfigCmd(g))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// setupLogging applies flag > config > default precedence for timestamps.
func setupLogging(g *GlobalConfig, configured *bool) {
	logCfg := output.LogConfig{Verbose: g.Verbose}
	switch {
	case g.TimestampsSet:
		logCfg.Timestamps = output.BoolPtr(g.Timestamps)
	case configured != nil:
		logCfg.Timestamps = configured
	}
	output.SetupLogging(logCfg)
}
