// Package pipeline runs one ship invocation: build context, declared tasks,
// package assembly and release coordination, strictly in that order.
package pipeline

import (
	"context"

	"github.com/opmodel/ship/internal/archive"
	"github.com/opmodel/ship/internal/buildctx"
	"github.com/opmodel/ship/internal/mirror"
	"github.com/opmodel/ship/internal/pack"
	"github.com/opmodel/ship/internal/release"
)

// Pipeline defines the contract for build pipelines.
type Pipeline interface {
	// Run executes every stage in order. The first failing stage aborts
	// the run; nothing after it is attempted.
	//
	// The context is used for cancellation. The staging area is removed on
	// every exit path, including cancellation.
	Run(ctx context.Context, in buildctx.Inputs) (*Result, error)
}

// Task is one declared build step. Tasks run after the build context exists
// and before the package is assembled.
type Task interface {
	Name() string
	Run(ctx context.Context, bc *buildctx.BuildContext) error
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context, bc *buildctx.BuildContext) error
}

func (t TaskFunc) Name() string { return t.TaskName }

func (t TaskFunc) Run(ctx context.Context, bc *buildctx.BuildContext) error {
	return t.Fn(ctx, bc)
}

// CoordinatorFactory creates the release coordinator for an eligible build.
// It is only called when a release will actually be coordinated, so
// developer builds never need upload or release credentials.
type CoordinatorFactory func(bc *buildctx.BuildContext) (*release.Coordinator, error)

// Options configures a pipeline.
type Options struct {
	// Builder resolves the build context. The zero value reads attribution
	// from the environment.
	Builder buildctx.Builder

	// Tasks run in declaration order.
	Tasks []Task

	// Mirror and Compressor override the assembler defaults.
	Mirror     mirror.Mirrorer
	Compressor archive.Compressor

	// TempDir is the parent of the staging area. Empty uses the system default.
	TempDir string

	// Credentials fills the context's credential store before tasks run.
	// Nil loads the configured credential ids from the environment.
	Credentials func(bc *buildctx.BuildContext) error

	// Coordinator creates the release coordinator. Nil uses DefaultCoordinator.
	Coordinator CoordinatorFactory

	// Wrap surrounds the release stage, e.g. with a spinner. Nil runs it inline.
	Wrap func(ctx context.Context, stage func(ctx context.Context) error) error
}

// Result is the output of a pipeline run.
type Result struct {
	// Context is the resolved build context.
	Context *buildctx.BuildContext

	// Artifact is the assembled archive.
	Artifact *pack.Artifact

	// Outcome reports the release stage. Nil for package-only runs.
	Outcome *release.Outcome
}
