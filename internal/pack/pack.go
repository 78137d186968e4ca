// Package pack assembles the deployment package: a platform subtree and
// filtered mirrors of the requested sources, a manifest, and one archive.
package pack

import (
	"context"
	_ "crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/opmodel/ship/internal/archive"
	oerrors "github.com/opmodel/ship/internal/errors"
	"github.com/opmodel/ship/internal/mirror"
	"github.com/opmodel/ship/internal/output"
	"github.com/opmodel/ship/internal/staging"
	"github.com/opmodel/ship/internal/versioning"
)

// DefaultExtension is used when PackageSpec.Extension is empty.
const DefaultExtension = "upack"

// Source is one tree to mirror into the package.
type Source struct {
	// Path is absolute or relative to PackageSpec.Root.
	Path string
	// Include lists file patterns. Empty includes every file.
	Include []string
}

// PackageSpec is the input of one assembly.
type PackageSpec struct {
	Name        string
	Title       string
	Description string
	Version     versioning.Info

	// Root is the build root sources are resolved against.
	Root    string
	Sources []Source
	Exclude []string

	// Extension of the archive, without the dot.
	Extension string
}

// PlatformSpec locates the platform subtree bundled with every package.
type PlatformSpec struct {
	// Path is absolute or relative to PackageSpec.Root.
	Path string
	// Exclude names component directories that are left out.
	Exclude []string
	// Docs is referenced when the platform directory is missing.
	Docs string
}

// Artifact is the archive produced by an assembly.
type Artifact struct {
	Path   string
	Digest digest.Digest
	Size   int64
}

// Assembler builds package archives.
type Assembler struct {
	Mirror     mirror.Mirrorer
	Compressor archive.Compressor
	Platform   PlatformSpec
	// TempDir is the parent of staging areas. Empty uses the system default.
	TempDir string
}

// NewAssembler returns an Assembler using the filesystem mirror and the
// reproducible zip compressor.
func NewAssembler(platform PlatformSpec) *Assembler {
	return &Assembler{
		Mirror:     mirror.Syncer{},
		Compressor: archive.Zip{},
		Platform:   platform,
	}
}

// plannedMirror is one mirror step resolved before any copying starts.
type plannedMirror struct {
	src    string
	dst    string
	filter mirror.Filter
}

// Assemble stages and compresses the package described by spec into
// outputDir. Every source and the platform directory are checked before
// anything is created. The staging area is removed on every exit path.
func (a *Assembler) Assemble(ctx context.Context, spec PackageSpec, outputDir string) (*Artifact, error) {
	plan, err := a.plan(spec)
	if err != nil {
		return nil, err
	}

	area, err := staging.Acquire(ctx, a.TempDir)
	if err != nil {
		return nil, err
	}
	defer area.Release()

	log := output.StageLogger("pack")
	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dst := filepath.Join(area.PackageRoot(), step.dst)
		stats, err := a.Mirror.Mirror(ctx, step.src, dst, step.filter)
		if err != nil {
			return nil, fmt.Errorf("mirroring %s: %w", step.src, err)
		}
		log.Debug("mirrored", "src", step.src, "dst", step.dst, "files", stats.Copied+stats.Unchanged)
	}

	title := spec.Title
	if title == "" {
		title = spec.Name
	}
	if err := writeManifest(area.Root(), Manifest{
		Name:        spec.Name,
		Version:     spec.Version.Full(),
		Title:       title,
		Description: spec.Description,
	}); err != nil {
		return nil, err
	}

	ext := spec.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	path := filepath.Join(outputDir, ArchiveName(spec.Name, spec.Version.Full(), ext))
	if err := a.Compressor.Compress(ctx, area.Root(), path); err != nil {
		return nil, fmt.Errorf("compressing package: %w", err)
	}

	artifact, err := describe(path)
	if err != nil {
		return nil, err
	}
	log.Info("package assembled", "path", artifact.Path, "digest", artifact.Digest)
	return artifact, nil
}

// plan resolves every mirror step and fails fast on missing inputs.
func (a *Assembler) plan(spec PackageSpec) ([]plannedMirror, error) {
	if spec.Version.IsZero() {
		return nil, oerrors.NewMissingConfigurationError("version", "")
	}
	if len(spec.Sources) == 0 {
		return nil, oerrors.NewMissingConfigurationError("package.paths", "Declare at least one path to package")
	}

	var plan []plannedMirror

	platformDir := resolve(spec.Root, a.Platform.Path)
	switch exists, dir := stat(platformDir); {
	case !exists:
		return nil, oerrors.NewMissingPlatformError(platformDir, a.Platform.Docs)
	case !dir:
		return nil, oerrors.NewInvalidConfigurationError("package.platform.path",
			fmt.Sprintf("platform path %q is not a directory", platformDir))
	}
	plan = append(plan, plannedMirror{
		src: platformDir,
		dst: filepath.Base(platformDir),
		filter: mirror.Filter{
			ExcludeRootDirs:  a.Platform.Exclude,
			ExcludeRootFiles: true,
		},
	})

	for i, s := range spec.Sources {
		field := fmt.Sprintf("package.paths[%d].path", i)
		if strings.TrimSpace(s.Path) == "" {
			return nil, oerrors.NewMissingConfigurationError(field, "Every package path needs a Path")
		}
		src := resolve(spec.Root, s.Path)
		switch exists, dir := stat(src); {
		case !exists:
			return nil, oerrors.NewMissingPathError(src, field)
		case !dir:
			return nil, oerrors.NewInvalidConfigurationError(field,
				fmt.Sprintf("path %q is not a directory", src))
		}
		plan = append(plan, plannedMirror{
			src:    src,
			dst:    destination(spec.Root, src),
			filter: mirror.Filter{Include: s.Include, Exclude: spec.Exclude},
		})
	}

	if err := checkOverlap(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// destination is the path of src relative to root, or its base name when
// src lies outside root.
func destination(root, src string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, src); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return filepath.Base(src)
}

// checkOverlap rejects steps that would mirror into the same or nested
// destinations, since each mirror prunes what it did not copy.
func checkOverlap(plan []plannedMirror) error {
	for i := range plan {
		for j := i + 1; j < len(plan); j++ {
			a, b := plan[i].dst, plan[j].dst
			if a == b || strings.HasPrefix(a, b+string(filepath.Separator)) || strings.HasPrefix(b, a+string(filepath.Separator)) {
				// Index 0 is the platform step.
				return oerrors.NewInvalidConfigurationError(
					fmt.Sprintf("package.paths[%d].path", j-1),
					fmt.Sprintf("package destination %q overlaps %q", b, a))
			}
		}
	}
	return nil
}

func describe(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	d, err := digest.FromReader(f)
	if err != nil {
		return nil, fmt.Errorf("hashing archive: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading archive size: %w", err)
	}
	return &Artifact{Path: path, Digest: d, Size: info.Size()}, nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) || root == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// stat reports whether path exists and whether it is a directory.
func stat(path string) (exists, dir bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return true, info.IsDir()
}
