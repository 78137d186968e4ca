// Package buildctx composes the resolved version, publish classification and
// environment facts into one immutable BuildContext.
package buildctx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/opmodel/ship/internal/branch"
	"github.com/opmodel/ship/internal/config"
	oerrors "github.com/opmodel/ship/internal/errors"
	"github.com/opmodel/ship/internal/output"
	"github.com/opmodel/ship/internal/versioning"
)

// BuildContext is created once per invocation and read-only afterwards,
// except for the credential store which is filled before tasks run.
type BuildContext struct {
	environment string
	buildRoot   string
	outputDir   string
	version     versioning.Info
	config      *config.BuildConfig
	publish     bool
	releaseName string
	attribution Attribution
	buildID     string
	branch      string
	credentials *Credentials
}

// Environment returns the target environment name.
func (c *BuildContext) Environment() string { return c.environment }

// BuildRoot returns the absolute repository root being built.
func (c *BuildContext) BuildRoot() string { return c.buildRoot }

// OutputDir returns the directory archives are written to. It exists.
func (c *BuildContext) OutputDir() string { return c.outputDir }

// Version returns the resolved version.
func (c *BuildContext) Version() versioning.Info { return c.version }

// Config returns the validated build configuration.
func (c *BuildContext) Config() *config.BuildConfig { return c.config }

// Publish reports whether the branch classifies as publishing.
// Always false for developer builds.
func (c *BuildContext) Publish() bool { return c.publish }

// ReleaseName returns the configured override, else the branch when the
// build publishes.
func (c *BuildContext) ReleaseName() string { return c.releaseName }

// Attribution returns who ran the build.
func (c *BuildContext) Attribution() Attribution { return c.attribution }

// BuildID returns the build server id or the developer timestamp id.
func (c *BuildContext) BuildID() string { return c.buildID }

// Branch returns the raw branch name the run was resolved for.
func (c *BuildContext) Branch() string { return c.branch }

// Credentials returns the credential store populated before tasks run.
func (c *BuildContext) Credentials() *Credentials { return c.credentials }

// IsBuildServer reports whether the build is attributed to a build server.
func (c *BuildContext) IsBuildServer() bool { return c.attribution == BuildServer }

// Inputs are the per-run facts Build composes.
type Inputs struct {
	Config    *config.BuildConfig
	BuildRoot string

	Branch      string
	BuildID     string
	ServerURL   string
	Environment string

	// VersionFallback is used when the configuration has no version.
	VersionFallback string

	// PackageOnly skips the upload and release settings check.
	PackageOnly bool
}

// Builder creates BuildContexts. Zero values use EnvAttribution and time.Now.
type Builder struct {
	Attribution func() Attribution
	Now         func() time.Time
}

// Build validates the configuration once and resolves the context.
func (b Builder) Build(ctx context.Context, in Inputs) (*BuildContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Config == nil {
		return nil, oerrors.NewMissingConfigurationError("package", "Provide a build configuration")
	}
	if err := in.Config.Validate(); err != nil {
		return nil, err
	}
	cfg := in.Config.WithDefaults()

	attribution := b.attribution()
	buildID := in.BuildID

	if attribution == BuildServer {
		if err := checkServerInputs(cfg, in); err != nil {
			return nil, err
		}
	} else if buildID == "" {
		buildID = config.DeveloperBuildID(b.now())
	}

	version, err := versioning.Resolve(versioning.Request{
		Raw:      cfg.Version,
		Fallback: in.VersionFallback,
		Branch:   branch.StripRemote(in.Branch),
		Rules:    prereleaseRules(cfg.Prerelease),
		BuildID:  buildID,
	})
	if err != nil {
		return nil, err
	}

	var classification branch.Classification
	if attribution == BuildServer {
		classification, err = branch.Classify(in.Branch, cfg.Publish.Branches, cfg.Publish.ReleaseName)
		if err != nil {
			var perr *branch.PatternError
			if errors.As(err, &perr) {
				return nil, oerrors.NewInvalidConfigurationError(
					fmt.Sprintf("publish.branches[%d]", perr.Index), perr.Error())
			}
			return nil, err
		}
	}

	outputDir, err := config.ResolveUnder(in.BuildRoot, cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	environment := in.Environment
	if environment == "" {
		environment = cfg.Environment
	}

	bc := &BuildContext{
		environment: environment,
		buildRoot:   in.BuildRoot,
		outputDir:   outputDir,
		version:     version,
		config:      cfg,
		publish:     classification.Publish,
		releaseName: classification.ReleaseName,
		attribution: attribution,
		buildID:     buildID,
		branch:      in.Branch,
		credentials: NewCredentials(),
	}

	output.Debug("build context created",
		"attribution", attribution,
		"version", version.Full(),
		"branch", in.Branch,
		"publish", bc.publish,
		"release", bc.releaseName,
		"output", outputDir,
	)

	return bc, nil
}

func (b Builder) attribution() Attribution {
	if b.Attribution != nil {
		return b.Attribution()
	}
	return EnvAttribution()
}

func (b Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func checkServerInputs(cfg *config.BuildConfig, in Inputs) error {
	if in.BuildID == "" {
		return oerrors.NewMissingConfigurationError("server.buildId",
			"Build server runs need a build id (--build-id or SHIP_BUILD_ID)")
	}
	if in.ServerURL == "" && cfg.Server.URL == "" {
		return oerrors.NewMissingConfigurationError("server.url",
			"Build server runs need the server address (SHIP_SERVER_URL)")
	}
	if in.PackageOnly {
		return nil
	}
	return cfg.ValidateServer()
}

func prereleaseRules(rules []config.PrereleaseRule) []versioning.PrereleaseRule {
	out := make([]versioning.PrereleaseRule, len(rules))
	for i, r := range rules {
		out[i] = versioning.PrereleaseRule{Pattern: r.Branch, Label: r.Label}
	}
	return out
}
