package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/ship/internal/output"
	"github.com/opmodel/ship/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show ship version information.

Displays:
  - ship version, commit, and build date
  - Go version and platform
  - CUE SDK version used for configuration validation`,
		RunE: func(_ *cobra.Command, _ []string) error {
			output.Println(version.Get().String())
			return nil
		},
	}
}
