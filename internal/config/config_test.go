package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/ship/internal/errors"
)

func validConfig() *BuildConfig {
	return &BuildConfig{
		Version: "1.2.3",
		Package: PackageConfig{
			Name:  "App",
			Paths: []PathConfig{{Path: "bin", Include: []string{"*.dll"}}},
		},
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Package.Extension = ".nupkg"

	out := cfg.WithDefaults()

	assert.Equal(t, DefaultOutputDir, out.OutputDir)
	assert.Equal(t, "App", out.Package.Title)
	assert.Equal(t, "nupkg", out.Package.Extension)
	assert.Equal(t, DefaultPlatformPath, out.Package.Platform.Path)
	assert.Equal(t, DefaultPlatformExcludes, out.Package.Platform.Exclude)
	assert.Equal(t, BackendHTTP, out.Release.Backend)
	assert.Equal(t, "App", out.Release.Application)
	assert.Equal(t, DefaultPackageVariable, out.Release.PackageVariable)

	// Original untouched
	assert.Empty(t, cfg.OutputDir)
	assert.Equal(t, ".nupkg", cfg.Package.Extension)
}

func TestWithDefaults_KeepsExplicitEmptyPlatformExcludes(t *testing.T) {
	cfg := validConfig()
	cfg.Package.Platform.Exclude = []string{}

	assert.Empty(t, cfg.WithDefaults().Package.Platform.Exclude)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*BuildConfig)
		wantField string
	}{
		{
			name:      "missing package name",
			mutate:    func(c *BuildConfig) { c.Package.Name = "" },
			wantField: "package.name",
		},
		{
			name:      "no paths",
			mutate:    func(c *BuildConfig) { c.Package.Paths = nil },
			wantField: "package.paths",
		},
		{
			name:      "path without Path",
			mutate:    func(c *BuildConfig) { c.Package.Paths = append(c.Package.Paths, PathConfig{}) },
			wantField: "package.paths[1].path",
		},
		{
			name:      "prerelease rule without label",
			mutate:    func(c *BuildConfig) { c.Prerelease = []PrereleaseRule{{Branch: "develop"}} },
			wantField: "prerelease[0].label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, oerrors.ErrMissingConfiguration))
			assert.Contains(t, err.Error(), "mandatory")

			var detail *oerrors.DetailError
			require.True(t, errors.As(err, &detail))
			assert.Equal(t, tt.wantField, detail.Field)
		})
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := &BuildConfig{}

	err := cfg.Validate()
	require.Error(t, err)

	var verrs *ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs.Errs, 2)
	assert.Contains(t, err.Error(), "package.name")
	assert.Contains(t, err.Error(), "package.paths")
}

func TestValidateServer(t *testing.T) {
	t.Run("http backend needs endpoint and api", func(t *testing.T) {
		cfg := validConfig().WithDefaults()

		err := cfg.ValidateServer()
		require.Error(t, err)
		assert.True(t, errors.Is(err, oerrors.ErrMissingConfiguration))
		for _, field := range []string{"upload.endpoint", "upload.credentialId", "release.url", "release.credentialId"} {
			assert.Contains(t, err.Error(), field)
		}
	})

	t.Run("kubernetes backend needs no release url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Upload = UploadConfig{Endpoint: "https://feed.example.com/upload", CredentialID: "feed"}
		cfg.Release.Backend = BackendKubernetes

		assert.NoError(t, cfg.ValidateServer())
	})

	t.Run("unknown backend is invalid", func(t *testing.T) {
		cfg := validConfig()
		cfg.Upload = UploadConfig{Endpoint: "https://feed.example.com/upload", CredentialID: "feed"}
		cfg.Release.Backend = "ftp"

		err := cfg.ValidateServer()
		require.Error(t, err)
		assert.True(t, errors.Is(err, oerrors.ErrInvalidConfiguration))
	})
}
