package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opmodel/ship/internal/config"
	oerrors "github.com/opmodel/ship/internal/errors"
	"github.com/opmodel/ship/internal/output"
)

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(g *GlobalConfig) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Write a default ship.yaml",
		Long: `Write a default ship.yaml into the build root.

Examples:
  # Initialize configuration
  ship config init

  # Overwrite existing configuration
  ship config init --force`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInit(g, force)
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return c
}

func runConfigInit(g *GlobalConfig, force bool) error {
	root, err := filepath.Abs(g.Root)
	if err != nil {
		return fmt.Errorf("resolving build root: %w", err)
	}
	path := config.ResolveConfigPath(g.ConfigFlag, root).Value

	if _, err := os.Stat(path); err == nil && !force {
		return NewExitError(&oerrors.DetailError{
			Type:     "invalid configuration",
			Message:  "configuration already exists",
			Location: path,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrInvalidConfiguration,
		})
	}

	data, err := marshalConfig(config.DefaultConfig())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	output.Println(output.FormatCheckmark("Configuration written to " + output.StyleNoun.Render(path)))
	output.Println("Validate with: ship config vet")
	return nil
}

func marshalConfig(cfg *config.BuildConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return buf.Bytes(), nil
}
