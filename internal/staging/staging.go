// Package staging manages the per-run temporary package area.
package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/opmodel/ship/internal/output"
)

// PackageDir is the subdirectory that receives the package contents.
const PackageDir = "package"

// rootPrefix starts every staging root name.
const rootPrefix = "ship-"

// Area is a staging root owned by exactly one assembly run.
type Area struct {
	root string
	once sync.Once
	err  error
	stop func() bool
}

// Acquire creates <parent>/ship-<uuid>/package. An empty parent uses the
// system temp directory. The area is removed by Release or when ctx is
// cancelled, whichever happens first. Callers defer Release immediately.
func Acquire(ctx context.Context, parent string) (*Area, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if parent == "" {
		parent = os.TempDir()
	}

	root := filepath.Join(parent, rootPrefix+uuid.NewString())
	if err := os.MkdirAll(filepath.Join(root, PackageDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating staging area: %w", err)
	}

	a := &Area{root: root}
	a.stop = context.AfterFunc(ctx, func() {
		_ = a.remove()
	})

	output.Debug("staging area acquired", "root", root)
	return a, nil
}

// Root is the staging root that is compressed into the archive.
func (a *Area) Root() string { return a.root }

// PackageRoot is the directory the package trees are mirrored into.
func (a *Area) PackageRoot() string { return filepath.Join(a.root, PackageDir) }

// Release removes the staging root. It is safe to call more than once.
func (a *Area) Release() error {
	a.stop()
	return a.remove()
}

func (a *Area) remove() error {
	a.once.Do(func() {
		a.err = os.RemoveAll(a.root)
		if a.err != nil {
			output.Warn("failed to remove staging area", "root", a.root, "err", a.err)
			return
		}
		output.Debug("staging area released", "root", a.root)
	})
	return a.err
}
