// Package archive writes reproducible zip archives of a directory tree.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/opmodel/ship/internal/output"
)

// epoch is stamped on every entry; it is the earliest time zip can store.
var epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Compressor packs the contents of a directory into one archive file.
type Compressor interface {
	Compress(ctx context.Context, srcDir, dstFile string) error
}

// Zip is a Compressor producing byte-identical archives for identical
// trees: entries are sorted, timestamps fixed and modes normalised.
type Zip struct{}

var _ Compressor = Zip{}

// Compress implements Compressor. The archive is written to a temporary
// file next to dstFile and renamed into place, so a failed run never
// leaves a partial archive behind.
func (Zip) Compress(ctx context.Context, srcDir, dstFile string) (err error) {
	files, err := listFiles(srcDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstFile), 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dstFile), "."+filepath.Base(dstFile)+".*")
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addFile(zw, filepath.Join(srcDir, filepath.FromSlash(rel)), rel); err != nil {
			return fmt.Errorf("adding %s: %w", rel, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), dstFile); err != nil {
		return fmt.Errorf("moving archive into place: %w", err)
	}

	output.Debug("archive written", "path", dstFile, "entries", len(files))
	return nil
}

// listFiles returns the slash-separated relative paths of all regular
// files under root in byte order.
func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if info.Mode().Perm()&0o111 != 0 {
		mode = 0o755
	}

	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: epoch,
	}
	header.SetMode(mode)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// Entry is one file stored in an archive.
type Entry struct {
	Name string
	Size uint64
}

// List returns the entries of the zip archive at path in stored order.
func List(path string) ([]Entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, Entry{Name: f.Name, Size: f.UncompressedSize64})
	}
	return entries, nil
}
