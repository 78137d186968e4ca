package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/ship/internal/config"
	"github.com/opmodel/ship/internal/testutil"
)

func TestConfigInit(t *testing.T) {
	isolateEnv(t)
	root := t.TempDir()
	g := &GlobalConfig{Root: root}

	require.NoError(t, runConfigInit(g, false))

	path := filepath.Join(root, config.DefaultConfigFile)
	require.FileExists(t, path)

	loader, err := config.NewLoader()
	require.NoError(t, err)
	cfg, err := loader.Load(path)
	require.NoError(t, err, "written configuration must pass the schema")
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "App", cfg.Package.Name)
	assert.Equal(t, "0.1.0", cfg.Version)
	assert.Equal(t, config.BackendHTTP, cfg.Release.Backend)
}

func TestConfigInit_ExistingFile(t *testing.T) {
	isolateEnv(t)
	root := t.TempDir()
	path := testutil.WriteFile(t, root, config.DefaultConfigFile, "version: 9.9.9\n")
	g := &GlobalConfig{Root: root}

	err := runConfigInit(g, false)
	require.Error(t, err)
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))

	require.NoError(t, runConfigInit(g, true))

	loader, err := config.NewLoader()
	require.NoError(t, err)
	cfg, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", cfg.Version, "--force overwrites")
}

func TestConfigInit_ConfigFlag(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "custom.yaml")

	require.NoError(t, runConfigInit(&GlobalConfig{Root: t.TempDir(), ConfigFlag: path}, false))
	assert.FileExists(t, path)
}
