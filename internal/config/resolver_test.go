package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		name         string
		flag         string
		env          string
		config       string
		def          string
		wantValue    string
		wantSource   ConfigSource
		wantShadowed map[ConfigSource]string
	}{
		{
			name:       "flag wins",
			flag:       "flag",
			env:        "env",
			config:     "config",
			def:        "default",
			wantValue:  "flag",
			wantSource: SourceFlag,
			wantShadowed: map[ConfigSource]string{
				SourceEnv:     "env",
				SourceConfig:  "config",
				SourceDefault: "default",
			},
		},
		{
			name:         "env over config",
			env:          "env",
			config:       "config",
			wantValue:    "env",
			wantSource:   SourceEnv,
			wantShadowed: map[ConfigSource]string{SourceConfig: "config"},
		},
		{
			name:         "config over default",
			config:       "config",
			def:          "default",
			wantValue:    "config",
			wantSource:   SourceConfig,
			wantShadowed: map[ConfigSource]string{SourceDefault: "default"},
		},
		{
			name:         "default",
			def:          "default",
			wantValue:    "default",
			wantSource:   SourceDefault,
			wantShadowed: map[ConfigSource]string{},
		},
		{
			name:         "nothing set",
			wantShadowed: map[ConfigSource]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SHIP_TEST_VALUE", tt.env)

			got := Resolve(ResolveOptions{
				Key:         "test",
				FlagValue:   tt.flag,
				EnvVar:      "SHIP_TEST_VALUE",
				ConfigValue: tt.config,
				Default:     tt.def,
			})

			assert.Equal(t, "test", got.Key)
			assert.Equal(t, tt.wantValue, got.Value)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantShadowed, got.Shadowed)
		})
	}
}

func TestResolveRun(t *testing.T) {
	t.Setenv(EnvBranch, "")
	t.Setenv(EnvBuildID, "421")
	t.Setenv(EnvEnvironment, "")
	t.Setenv(EnvVersion, "")

	cfg := validConfig()
	cfg.Environment = "Staging"
	cfg.Server.BuildID = "7"

	got := ResolveRun(cfg, RunOptions{
		Version:        "9.9.9",
		DetectedBranch: "develop",
	})

	assert.Equal(t, "develop", got.Branch.Value)
	assert.Equal(t, SourceDefault, got.Branch.Source)
	assert.Equal(t, "421", got.BuildID.Value)
	assert.Equal(t, SourceEnv, got.BuildID.Source)
	assert.Equal(t, "7", got.BuildID.Shadowed[SourceConfig])
	assert.Equal(t, "Staging", got.Environment.Value)
	assert.Equal(t, "9.9.9", got.VersionFallback.Value)
	assert.Len(t, got.All(), 4)
}

func TestResolveConfigPath(t *testing.T) {
	t.Run("default is ship.yaml in build root", func(t *testing.T) {
		t.Setenv(EnvConfig, "")
		got := ResolveConfigPath("", "/work/repo")
		assert.Equal(t, filepath.Join("/work/repo", "ship.yaml"), got.Value)
		assert.Equal(t, SourceDefault, got.Source)
	})

	t.Run("env beats default", func(t *testing.T) {
		t.Setenv(EnvConfig, "/etc/ship.yaml")
		got := ResolveConfigPath("", "/work/repo")
		assert.Equal(t, "/etc/ship.yaml", got.Value)
		assert.Equal(t, SourceEnv, got.Source)
	})

	t.Run("flag beats env", func(t *testing.T) {
		t.Setenv(EnvConfig, "/etc/ship.yaml")
		got := ResolveConfigPath("custom.yaml", "/work/repo")
		assert.Equal(t, "custom.yaml", got.Value)
		assert.Equal(t, "/etc/ship.yaml", got.Shadowed[SourceEnv])
	})
}

func TestDeveloperBuildID(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 3, 5, 8, 9, 10, 0, loc)
	assert.Equal(t, "20240305060910", DeveloperBuildID(now))
}
