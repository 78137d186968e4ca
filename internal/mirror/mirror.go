// Package mirror keeps a destination directory an exact filtered copy of a
// source directory.
package mirror

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opmodel/ship/internal/output"
)

// Stats counts what one mirror run changed.
type Stats struct {
	Copied    int
	Unchanged int
	Removed   int
}

// Mirrorer mirrors src into dst so that dst holds exactly the files of src
// selected by the filter.
type Mirrorer interface {
	Mirror(ctx context.Context, src, dst string, filter Filter) (Stats, error)
}

// Syncer is the filesystem Mirrorer. Files already present with identical
// content are left alone; files that no longer pass the filter are removed.
type Syncer struct{}

var _ Mirrorer = Syncer{}

// Mirror implements Mirrorer.
func (Syncer) Mirror(ctx context.Context, src, dst string, filter Filter) (Stats, error) {
	var stats Stats

	m, err := filter.compile()
	if err != nil {
		return stats, err
	}

	info, err := os.Stat(src)
	if err != nil {
		return stats, fmt.Errorf("mirror source: %w", err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("mirror source %s is not a directory", src)
	}

	wanted, err := collect(ctx, src, m)
	if err != nil {
		return stats, err
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return stats, fmt.Errorf("creating mirror destination: %w", err)
	}

	// Unwanted entries go first so nothing stale blocks a copy.
	removed, err := prune(dst, wanted)
	if err != nil {
		return stats, err
	}
	stats.Removed = removed

	for _, rel := range sortedKeys(wanted) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		copied, err := syncFile(ctx, wanted[rel], filepath.Join(dst, filepath.FromSlash(rel)))
		if err != nil {
			return stats, fmt.Errorf("mirroring %s: %w", rel, err)
		}
		if copied {
			stats.Copied++
		} else {
			stats.Unchanged++
		}
	}

	output.Debug("mirror complete",
		"src", src,
		"dst", dst,
		"copied", stats.Copied,
		"unchanged", stats.Unchanged,
		"removed", stats.Removed,
	)
	return stats, nil
}

// collect maps the relative path of every selected file to its source path.
func collect(ctx context.Context, src string, m *matcher) (map[string]string, error) {
	wanted := make(map[string]string)
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == src {
			return nil
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if m.skipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if m.includeFile(rel) {
			wanted[rel] = p
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", src, err)
	}
	return wanted, nil
}

// syncFile copies src to dst unless dst already has the same content.
func syncFile(ctx context.Context, src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}

	if same, err := sameContent(src, dst, srcInfo.Size()); err != nil {
		return false, err
	} else if same {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}
	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, &ctxReader{ctx: ctx, r: in}); err != nil {
		out.Close()
		return false, err
	}
	if err := out.Close(); err != nil {
		return false, err
	}
	return true, os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
}

func sameContent(src, dst string, size int64) (bool, error) {
	info, err := os.Stat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !info.Mode().IsRegular() || info.Size() != size {
		return false, nil
	}

	a, err := os.ReadFile(src)
	if err != nil {
		return false, err
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		return false, err
	}
	return bytes.Equal(a, b), nil
}

// prune removes every file under dst that is not wanted, then every
// directory left empty.
func prune(dst string, wanted map[string]string) (int, error) {
	removed := 0
	var dirs []string

	err := filepath.WalkDir(dst, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == dst {
			return nil
		}
		rel, err := filepath.Rel(dst, p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, p)
			return nil
		}
		if _, ok := wanted[filepath.ToSlash(rel)]; ok {
			return nil
		}
		if err := os.Remove(p); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("pruning %s: %w", dst, err)
	}

	// Deepest first so parents empty out before they are checked.
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, err
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil {
				return removed, err
			}
		}
	}
	return removed, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ctxReader stops a copy once the context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
