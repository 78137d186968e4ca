package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opmodel/ship/internal/archive"
	"github.com/opmodel/ship/internal/buildctx"
	"github.com/opmodel/ship/internal/config"
	"github.com/opmodel/ship/internal/gitinfo"
	"github.com/opmodel/ship/internal/output"
	"github.com/opmodel/ship/internal/pipeline"
)

// runOptions configures one pipeline invocation from the CLI.
type runOptions struct {
	// PackageOnly assembles the package and never uploads.
	PackageOnly bool

	// Output selects the report format. Empty means table.
	Output string

	// List prints the archive contents as a tree.
	List bool

	// Pipeline overrides the pipeline options, used by tests.
	Pipeline pipeline.Options
}

// loadBuildConfig resolves the config path and loads ship.yaml.
func loadBuildConfig(g *GlobalConfig) (*config.BuildConfig, string, config.ResolvedValue, error) {
	root, err := filepath.Abs(g.Root)
	if err != nil {
		return nil, "", config.ResolvedValue{}, fmt.Errorf("resolving build root: %w", err)
	}

	path := config.ResolveConfigPath(g.ConfigFlag, root)
	loader, err := config.NewLoader()
	if err != nil {
		return nil, "", path, err
	}
	cfg, err := loader.Load(path.Value)
	if err != nil {
		return nil, "", path, err
	}
	return cfg, root, path, nil
}

// runPipeline loads the configuration, resolves the run values and executes
// the pipeline, printing stage lines and a summary on success.
func runPipeline(ctx context.Context, g *GlobalConfig, opts runOptions) (*pipeline.Result, error) {
	format, ok := output.ParseFormat(opts.Output)
	if !ok {
		return nil, &ExitError{
			Code: ExitGeneralError,
			Err:  fmt.Errorf("invalid output format %q (valid: %s)", opts.Output, strings.Join(output.ValidFormats(), ", ")),
		}
	}

	cfg, root, configPath, err := loadBuildConfig(g)
	if err != nil {
		return nil, NewExitError(err)
	}
	setupLogging(g, cfg.Log.Timestamps)

	detected, err := gitinfo.CurrentBranch(ctx, root)
	if err != nil {
		output.Debug("branch detection unavailable", "error", err)
	}

	values := config.ResolveRun(cfg, config.RunOptions{
		Branch:         g.Branch,
		BuildID:        g.BuildID,
		Environment:    g.Environment,
		Version:        g.Version,
		DetectedBranch: detected,
	})
	config.LogResolvedValues(append([]config.ResolvedValue{configPath}, values.All()...))

	popts := opts.Pipeline
	if popts.Wrap == nil {
		popts.Wrap = func(ctx context.Context, stage func(ctx context.Context) error) error {
			return output.RunWithSpinner(ctx, stage, output.WithTitle("Uploading and registering package..."))
		}
	}

	res, err := pipeline.NewPipeline(popts).Run(ctx, buildctx.Inputs{
		Config:          cfg,
		BuildRoot:       root,
		Branch:          values.Branch.Value,
		BuildID:         values.BuildID.Value,
		ServerURL:       cfg.Server.URL,
		Environment:     values.Environment.Value,
		VersionFallback: values.VersionFallback.Value,
		PackageOnly:     opts.PackageOnly,
	})
	if err != nil {
		return nil, NewExitError(err)
	}

	if opts.List {
		if err := printArchiveTree(res.Artifact.Path); err != nil {
			return nil, err
		}
	}

	if format != output.FormatTable {
		if err := output.WriteReport(os.Stdout, newReport(res), format); err != nil {
			return nil, err
		}
		return res, nil
	}

	printStages(res)
	output.Println(output.RenderSummaryTable(summaryRows(res)))
	output.Println(output.FormatCheckmark(fmt.Sprintf("Package %s ready", output.StyleNoun.Render(res.Context.Version().Full()))))
	return res, nil
}

// printArchiveTree prints the archive entries with their sizes.
func printArchiveTree(path string) error {
	entries, err := archive.List(path)
	if err != nil {
		return err
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		files[e.Name] = fmt.Sprintf("%d B", e.Size)
	}
	output.Println(output.RenderFileTree(filepath.Base(path), files))
	return nil
}

func printStages(res *pipeline.Result) {
	output.Println(output.FormatStageLine("assemble", output.StatusDone))
	switch {
	case res.Outcome == nil:
		output.Println(output.FormatStageLine("release", output.StatusSkipped))
	case res.Outcome.Skipped:
		output.Println(output.FormatStageLine("release", output.StatusSkipped))
		output.Info("release skipped", "reason", res.Outcome.Reason)
	default:
		output.Println(output.FormatStageLine("upload", output.StatusDone))
		output.Println(output.FormatStageLine("register", output.StatusDone))
		if res.Outcome.Deployment != nil {
			output.Println(output.FormatStageLine("deploy", output.StatusDone))
		} else {
			output.Println(output.FormatStageLine("deploy", output.StatusSkipped))
		}
	}
}

// summaryRows lists the version representations, publish decision, artifact
// and release outcome of a run.
func summaryRows(res *pipeline.Result) []output.SummaryRow {
	bc := res.Context
	v := bc.Version()
	rows := []output.SummaryRow{
		{Key: "Version", Value: v.Full()},
		{Key: "Numeric", Value: v.Numeric()},
		{Key: "Release", Value: v.Release()},
		{Key: "Legacy", Value: v.Legacy()},
		{Key: "Environment", Value: bc.Environment()},
		{Key: "Attribution", Value: bc.Attribution().String()},
		{Key: "Build ID", Value: bc.BuildID()},
		{Key: "Branch", Value: bc.Branch()},
		{Key: "Publish", Value: fmt.Sprintf("%t", bc.Publish())},
	}
	if bc.ReleaseName() != "" {
		rows = append(rows, output.SummaryRow{Key: "Release name", Value: bc.ReleaseName()})
	}
	if res.Artifact != nil {
		rows = append(rows,
			output.SummaryRow{Key: "Artifact", Value: res.Artifact.Path},
			output.SummaryRow{Key: "Size", Value: fmt.Sprintf("%d bytes", res.Artifact.Size)},
			output.SummaryRow{Key: "Digest", Value: res.Artifact.Digest.String()},
		)
	}
	if o := res.Outcome; o != nil {
		if o.Skipped {
			rows = append(rows, output.SummaryRow{Key: "Upload", Value: "skipped (" + o.Reason + ")"})
		} else {
			rows = append(rows, output.SummaryRow{Key: "Package", Value: o.Package.Number})
			if o.Deployment != nil {
				rows = append(rows, output.SummaryRow{Key: "Deployment", Value: o.Deployment.ID + " " + o.Deployment.Status})
			}
		}
	}
	return rows
}
