package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()

	assert.Equal(t, "ship", root.Use)
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"build", "package", "config", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "root", "verbose", "timestamps", "branch", "build-id", "environment", "version"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing --%s", flag)
	}
}

func TestRootCmd_ConfigSubcommands(t *testing.T) {
	root := NewRootCmd()

	cfgCmd, _, err := root.Find([]string{"config"})
	require.NoError(t, err)

	var names []string
	for _, c := range cfgCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"init", "vet"}, names)
}

func TestSetupLogging_TimestampPrecedence(t *testing.T) {
	// Smoke test: every combination configures the logger without panicking.
	tests := []struct {
		name       string
		g          GlobalConfig
		configured *bool
	}{
		{name: "default", g: GlobalConfig{}},
		{name: "config value", g: GlobalConfig{}, configured: boolPtr(false)},
		{name: "explicit flag", g: GlobalConfig{TimestampsSet: true, Timestamps: false}, configured: boolPtr(true)},
		{name: "verbose", g: GlobalConfig{Verbose: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() { setupLogging(&tt.g, tt.configured) })
		})
	}
}

func boolPtr(b bool) *bool { return &b }
