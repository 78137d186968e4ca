package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/ship/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(g *GlobalConfig) *cobra.Command {
	var server bool

	c := &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate ship.yaml.

Checks performed:
  1. Config file exists at the resolved path
  2. Config matches the schema
  3. Every property a build needs is present
  4. With --server, every upload and release property is present

The config path is resolved using precedence:
  --config flag > SHIP_CONFIG env > <root>/ship.yaml`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigVet(g, server)
		},
	}

	c.Flags().BoolVar(&server, "server", false, "Also check the build server settings")

	return c
}

func runConfigVet(g *GlobalConfig, server bool) error {
	cfg, _, path, err := loadBuildConfig(g)
	if err != nil {
		return NewExitError(err)
	}
	output.Debug("validating config", "path", path.Value, "source", path.Source)

	if err := cfg.Validate(); err != nil {
		return NewExitError(err)
	}
	if server {
		if err := cfg.WithDefaults().ValidateServer(); err != nil {
			return NewExitError(err)
		}
	}

	output.Println(output.FormatCheckmark("Configuration is valid: " + output.StyleNoun.Render(path.Value)))
	return nil
}
