package pipeline

import (
	"context"
	"io"

	"github.com/opmodel/ship/internal/branch"
	"github.com/opmodel/ship/internal/buildctx"
	"github.com/opmodel/ship/internal/config"
	"github.com/opmodel/ship/internal/output"
	"github.com/opmodel/ship/internal/pack"
	"github.com/opmodel/ship/internal/release"
)

// pipeline implements the Pipeline interface.
type pipeline struct {
	opts Options
}

// NewPipeline creates a new Pipeline implementation.
func NewPipeline(opts Options) Pipeline {
	if opts.Credentials == nil {
		opts.Credentials = EnvCredentials
	}
	if opts.Coordinator == nil {
		opts.Coordinator = DefaultCoordinator
	}
	if opts.Wrap == nil {
		opts.Wrap = func(ctx context.Context, stage func(ctx context.Context) error) error {
			return stage(ctx)
		}
	}
	return &pipeline{opts: opts}
}

// Run executes the pipeline and returns the result.
//
// Phase sequence:
//  1. CONTEXT:   buildctx.Builder.Build() → *buildctx.BuildContext; credentials loaded
//  2. TASKS:     declared tasks in order, first failure aborts
//  3. ASSEMBLE:  pack.Assembler.Assemble() → *pack.Artifact
//  4. RELEASE:   release.Coordinator.Run() → *release.Outcome (skipped for package-only runs)
func (p *pipeline) Run(ctx context.Context, in buildctx.Inputs) (*Result, error) {
	// Phase 1: CONTEXT
	bc, err := p.opts.Builder.Build(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := p.opts.Credentials(bc); err != nil {
		return nil, err
	}

	// Phase 2: TASKS
	for _, task := range p.opts.Tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		output.Debug("running task", "task", task.Name())
		if err := task.Run(ctx, bc); err != nil {
			return nil, &TaskError{Task: task.Name(), Err: err}
		}
	}

	// Phase 3: ASSEMBLE
	artifact, err := p.assembler(bc.Config()).Assemble(ctx, packageSpec(bc), bc.OutputDir())
	if err != nil {
		return nil, err
	}
	result := &Result{Context: bc, Artifact: artifact}

	if in.PackageOnly {
		output.Debug("package only run, release stage skipped")
		return result, nil
	}

	// Phase 4: RELEASE
	if reason, ok := release.Eligible(bc.IsBuildServer(), bc.Branch()); !ok {
		output.Debug("release skipped", "reason", reason)
		result.Outcome = &release.Outcome{
			Skipped:   true,
			Reason:    reason,
			Canonical: branch.Canonical(bc.Branch()),
		}
		return result, nil
	}

	coordinator, err := p.opts.Coordinator(bc)
	if err != nil {
		return nil, err
	}
	defer closeAdapters(coordinator)

	cfg := bc.Config()
	req := release.Request{
		BuildServer:     bc.IsBuildServer(),
		Branch:          bc.Branch(),
		Application:     cfg.Release.Application,
		PackageVariable: cfg.Release.PackageVariable,
		Version:         bc.Version(),
		ArchivePath:     artifact.Path,
		Endpoint:        cfg.Upload.Endpoint,
	}
	err = p.opts.Wrap(ctx, func(ctx context.Context) error {
		outcome, runErr := coordinator.Run(ctx, req)
		result.Outcome = outcome
		return runErr
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (p *pipeline) assembler(cfg *config.BuildConfig) *pack.Assembler {
	a := pack.NewAssembler(pack.PlatformSpec{
		Path:    cfg.Package.Platform.Path,
		Exclude: cfg.Package.Platform.Exclude,
		Docs:    cfg.Package.Platform.Docs,
	})
	if p.opts.Mirror != nil {
		a.Mirror = p.opts.Mirror
	}
	if p.opts.Compressor != nil {
		a.Compressor = p.opts.Compressor
	}
	a.TempDir = p.opts.TempDir
	return a
}

// packageSpec maps the package section of the configuration onto an assembly.
func packageSpec(bc *buildctx.BuildContext) pack.PackageSpec {
	cfg := bc.Config()
	sources := make([]pack.Source, len(cfg.Package.Paths))
	for i, pc := range cfg.Package.Paths {
		sources[i] = pack.Source{Path: pc.Path, Include: pc.Include}
	}
	return pack.PackageSpec{
		Name:        cfg.Package.Name,
		Title:       cfg.Package.Title,
		Description: cfg.Package.Description,
		Version:     bc.Version(),
		Root:        bc.BuildRoot(),
		Sources:     sources,
		Exclude:     cfg.Package.Exclude,
		Extension:   cfg.Package.Extension,
	}
}

func closeAdapters(c *release.Coordinator) {
	for _, a := range []any{c.Uploader, c.Releases} {
		if closer, ok := a.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				output.Debug("closing release adapter", "error", err)
			}
		}
	}
}
