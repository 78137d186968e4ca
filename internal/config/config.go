// Package config provides build configuration loading and validation.
package config

import (
	"fmt"
	"strings"

	oerrors "github.com/opmodel/ship/internal/errors"
)

// Default values applied by WithDefaults.
const (
	DefaultOutputDir       = "artifacts"
	DefaultExtension       = "upack"
	DefaultPlatformPath    = "platform"
	DefaultPlatformDocs    = "docs/platform-setup.md"
	DefaultReleaseBackend  = BackendHTTP
	DefaultPackageVariable = "PackageVersion"
	DefaultNamespace       = "default"
)

// Release backends.
const (
	BackendHTTP       = "http"
	BackendKubernetes = "kubernetes"
)

// DefaultPlatformExcludes are the platform component directories never packaged.
var DefaultPlatformExcludes = []string{"tools", "tests", "samples"}

// PrereleaseRule maps branches matching Branch to a prerelease Label.
type PrereleaseRule struct {
	Branch string `mapstructure:"branch" json:"branch" yaml:"branch"`
	Label  string `mapstructure:"label" json:"label" yaml:"label"`
}

// PublishConfig controls publish classification.
type PublishConfig struct {
	// Branches are anchored regular expressions. Empty means the defaults
	// develop, release, release/.*, master.
	Branches []string `mapstructure:"branches" json:"branches,omitempty" yaml:"branches,omitempty"`

	// ReleaseName overrides the release name derived from the branch.
	ReleaseName string `mapstructure:"releaseName" json:"releaseName,omitempty" yaml:"releaseName,omitempty"`
}

// ServerConfig holds inputs that only exist on a build server.
type ServerConfig struct {
	// URL is the build server address.
	// Env: SHIP_SERVER_URL
	URL string `mapstructure:"url" json:"url,omitempty" yaml:"url,omitempty"`

	// BuildID identifies the current run.
	// Env: SHIP_BUILD_ID
	BuildID string `mapstructure:"buildId" json:"buildId,omitempty" yaml:"buildId,omitempty"`
}

// PathConfig is one source tree to package.
type PathConfig struct {
	Path    string   `mapstructure:"path" json:"path" yaml:"path"`
	Include []string `mapstructure:"include" json:"include,omitempty" yaml:"include,omitempty"`
}

// PlatformConfig locates the platform subtree.
type PlatformConfig struct {
	// Path is relative to the build root. Default: platform
	Path string `mapstructure:"path" json:"path,omitempty" yaml:"path,omitempty"`

	// Exclude names component directories that are never packaged.
	Exclude []string `mapstructure:"exclude" json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// Docs is referenced when the platform directory is missing.
	Docs string `mapstructure:"docs" json:"docs,omitempty" yaml:"docs,omitempty"`
}

// PackageConfig describes the deployment package.
type PackageConfig struct {
	Name        string         `mapstructure:"name" json:"name" yaml:"name"`
	Title       string         `mapstructure:"title" json:"title,omitempty" yaml:"title,omitempty"`
	Description string         `mapstructure:"description" json:"description,omitempty" yaml:"description,omitempty"`
	Extension   string         `mapstructure:"extension" json:"extension,omitempty" yaml:"extension,omitempty"`
	Paths       []PathConfig   `mapstructure:"paths" json:"paths" yaml:"paths"`
	Exclude     []string       `mapstructure:"exclude" json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Platform    PlatformConfig `mapstructure:"platform" json:"platform,omitempty" yaml:"platform,omitempty"`
}

// UploadConfig locates the package feed.
type UploadConfig struct {
	// Endpoint receives the archive via PUT.
	// Env: SHIP_UPLOAD_ENDPOINT
	Endpoint string `mapstructure:"endpoint" json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// CredentialID names the credential used for basic authentication.
	CredentialID string `mapstructure:"credentialId" json:"credentialId,omitempty" yaml:"credentialId,omitempty"`
}

// ReleaseConfig locates the deployment system.
type ReleaseConfig struct {
	// Backend is "http" (default) or "kubernetes".
	Backend string `mapstructure:"backend" json:"backend,omitempty" yaml:"backend,omitempty"`

	// Application is the application name releases are looked up under.
	Application string `mapstructure:"application" json:"application,omitempty" yaml:"application,omitempty"`

	// URL is the release API base address (http backend).
	// Env: SHIP_RELEASE_URL
	URL string `mapstructure:"url" json:"url,omitempty" yaml:"url,omitempty"`

	// CredentialID names the API key credential (http backend).
	CredentialID string `mapstructure:"credentialId" json:"credentialId,omitempty" yaml:"credentialId,omitempty"`

	// PackageVariable is bound to the full version on every registered package.
	PackageVariable string `mapstructure:"packageVariable" json:"packageVariable,omitempty" yaml:"packageVariable,omitempty"`

	// Namespace, Kubeconfig and Context configure the kubernetes backend.
	Namespace  string `mapstructure:"namespace" json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Kubeconfig string `mapstructure:"kubeconfig" json:"kubeconfig,omitempty" yaml:"kubeconfig,omitempty"`
	Context    string `mapstructure:"context" json:"context,omitempty" yaml:"context,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" json:"timestamps,omitempty" yaml:"timestamps,omitempty"`
}

// BuildConfig is the typed build configuration.
// Loaded from ship.yaml, validated against the embedded CUE schema.
type BuildConfig struct {
	// Environment names the target environment.
	Environment string `mapstructure:"environment" json:"environment,omitempty" yaml:"environment,omitempty"`

	// Version is the raw version token. It stays untyped because YAML may
	// decode it as a number or a date; the version resolver converts it.
	Version any `mapstructure:"version" json:"version,omitempty" yaml:"version,omitempty"`

	// OutputDir is relative to the build root. Default: artifacts
	OutputDir string `mapstructure:"outputDir" json:"outputDir,omitempty" yaml:"outputDir,omitempty"`

	Prerelease []PrereleaseRule `mapstructure:"prerelease" json:"prerelease,omitempty" yaml:"prerelease,omitempty"`
	Publish    PublishConfig    `mapstructure:"publish" json:"publish,omitempty" yaml:"publish,omitempty"`
	Server     ServerConfig     `mapstructure:"server" json:"server,omitempty" yaml:"server,omitempty"`
	Package    PackageConfig    `mapstructure:"package" json:"package" yaml:"package"`
	Upload     UploadConfig     `mapstructure:"upload" json:"upload,omitempty" yaml:"upload,omitempty"`
	Release    ReleaseConfig    `mapstructure:"release" json:"release,omitempty" yaml:"release,omitempty"`
	Log        LogConfig        `mapstructure:"log" json:"log,omitempty" yaml:"log,omitempty"`
}

// DefaultConfig returns a BuildConfig used by `ship config init`.
func DefaultConfig() *BuildConfig {
	return &BuildConfig{
		Version:   "0.1.0",
		OutputDir: DefaultOutputDir,
		Publish: PublishConfig{
			Branches: []string{"develop", "release", "release/.*", "master"},
		},
		Package: PackageConfig{
			Name:      "App",
			Extension: DefaultExtension,
			Paths: []PathConfig{
				{Path: "bin", Include: []string{"*.dll", "*.exe", "*.config"}},
			},
			Platform: PlatformConfig{
				Path:    DefaultPlatformPath,
				Exclude: DefaultPlatformExcludes,
			},
		},
		Release: ReleaseConfig{
			Backend:         DefaultReleaseBackend,
			PackageVariable: DefaultPackageVariable,
		},
	}
}

// WithDefaults returns a copy with every optional field defaulted.
func (c *BuildConfig) WithDefaults() *BuildConfig {
	out := *c
	if out.OutputDir == "" {
		out.OutputDir = DefaultOutputDir
	}
	if out.Package.Title == "" {
		out.Package.Title = out.Package.Name
	}
	if out.Package.Extension == "" {
		out.Package.Extension = DefaultExtension
	}
	out.Package.Extension = strings.TrimPrefix(out.Package.Extension, ".")
	if out.Package.Platform.Path == "" {
		out.Package.Platform.Path = DefaultPlatformPath
	}
	if out.Package.Platform.Exclude == nil {
		out.Package.Platform.Exclude = DefaultPlatformExcludes
	}
	if out.Package.Platform.Docs == "" {
		out.Package.Platform.Docs = DefaultPlatformDocs
	}
	if out.Release.Backend == "" {
		out.Release.Backend = DefaultReleaseBackend
	}
	if out.Release.PackageVariable == "" {
		out.Release.PackageVariable = DefaultPackageVariable
	}
	if out.Release.Application == "" {
		out.Release.Application = out.Package.Name
	}
	if out.Release.Namespace == "" {
		out.Release.Namespace = DefaultNamespace
	}
	return &out
}

// Validate checks the properties every build needs. It reports all
// problems at once; each is a DetailError naming its config path.
func (c *BuildConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Package.Name) == "" {
		errs = append(errs, oerrors.NewMissingConfigurationError("package.name", "Name the package in ship.yaml"))
	}
	if len(c.Package.Paths) == 0 {
		errs = append(errs, oerrors.NewMissingConfigurationError("package.paths", "Declare at least one path to package"))
	}
	for i, p := range c.Package.Paths {
		if strings.TrimSpace(p.Path) == "" {
			errs = append(errs, oerrors.NewMissingConfigurationError(
				fmt.Sprintf("package.paths[%d].path", i), "Every package path needs a Path"))
		}
	}
	for i, r := range c.Prerelease {
		if r.Branch == "" {
			errs = append(errs, oerrors.NewMissingConfigurationError(fmt.Sprintf("prerelease[%d].branch", i), ""))
		}
		if r.Label == "" {
			errs = append(errs, oerrors.NewMissingConfigurationError(fmt.Sprintf("prerelease[%d].label", i), ""))
		}
	}

	return joinErrors(errs)
}

// ValidateServer checks the properties needed to upload and register a
// release. It is only run for build-server attributed builds.
func (c *BuildConfig) ValidateServer() error {
	var errs []error

	if c.Upload.Endpoint == "" {
		errs = append(errs, oerrors.NewMissingConfigurationError("upload.endpoint", "Set SHIP_UPLOAD_ENDPOINT or upload.endpoint"))
	}
	if c.Upload.CredentialID == "" {
		errs = append(errs, oerrors.NewMissingConfigurationError("upload.credentialId", "Name the feed credential"))
	}

	switch c.Release.Backend {
	case "", BackendHTTP:
		if c.Release.URL == "" {
			errs = append(errs, oerrors.NewMissingConfigurationError("release.url", "Set SHIP_RELEASE_URL or release.url"))
		}
		if c.Release.CredentialID == "" {
			errs = append(errs, oerrors.NewMissingConfigurationError("release.credentialId", "Name the release API credential"))
		}
	case BackendKubernetes:
	default:
		errs = append(errs, oerrors.NewInvalidConfigurationError("release.backend",
			fmt.Sprintf("unknown backend %q (valid: http, kubernetes)", c.Release.Backend)))
	}

	return joinErrors(errs)
}

func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &ValidationErrors{Errs: errs}
	}
}

// ValidationErrors groups several configuration errors.
type ValidationErrors struct {
	Errs []error
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e.Errs {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Unwrap exposes the grouped errors to errors.Is and errors.As.
func (e *ValidationErrors) Unwrap() []error {
	return e.Errs
}
