package cmd

import (
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(g *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Create and validate the ship.yaml build configuration.`,
	}

	c.AddCommand(NewConfigInitCmd(g))
	c.AddCommand(NewConfigVetCmd(g))

	return c
}
