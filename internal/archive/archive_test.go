package archive

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/ship/internal/testutil"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	out := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = string(data)
	}
	return out
}

func TestZip_Compress(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"upack.json":          `{"name":"App"}`,
		"package/bin/app.dll": "app",
		"package/db/x.sql":    "select 1",
	})
	dst := filepath.Join(t.TempDir(), "out", "App.1.0.0.upack")

	require.NoError(t, Zip{}.Compress(context.Background(), src, dst))

	assert.Equal(t, map[string]string{
		"upack.json":          `{"name":"App"}`,
		"package/bin/app.dll": "app",
		"package/db/x.sql":    "select 1",
	}, readArchive(t, dst))
}

func TestZip_Compress_Reproducible(t *testing.T) {
	files := map[string]string{
		"b.txt":     "b",
		"a/z.txt":   "z",
		"a/b/c.txt": "c",
	}

	src1 := t.TempDir()
	testutil.WriteTree(t, src1, files)
	src2 := t.TempDir()
	testutil.WriteTree(t, src2, files)
	// Different timestamps must not leak into the archive.
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(src2, "b.txt"), later, later))

	out := t.TempDir()
	a := filepath.Join(out, "a.zip")
	b := filepath.Join(out, "b.zip")
	require.NoError(t, Zip{}.Compress(context.Background(), src1, a))
	require.NoError(t, Zip{}.Compress(context.Background(), src2, b))

	dataA, err := os.ReadFile(a)
	require.NoError(t, err)
	dataB, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(dataA, dataB), "archives differ")

	r, err := zip.OpenReader(a)
	require.NoError(t, err)
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
		assert.Equal(t, os.FileMode(0o644), f.Mode().Perm())
	}
	assert.Equal(t, []string{"a/b/c.txt", "a/z.txt", "b.txt"}, names)
}

func TestZip_Compress_CancelledLeavesNothing(t *testing.T) {
	src := t.TempDir()
	testutil.WriteFile(t, src, "a.txt", "a")
	out := t.TempDir()
	dst := filepath.Join(out, "a.zip")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Zip{}.Compress(ctx, src, dst)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestList(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"upack.json":          `{"name":"App"}`,
		"package/bin/app.dll": "app",
	})
	dst := filepath.Join(t.TempDir(), "App.1.0.0.upack")
	require.NoError(t, Zip{}.Compress(context.Background(), src, dst))

	entries, err := List(dst)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "package/bin/app.dll", Size: 3},
		{Name: "upack.json", Size: 14},
	}, entries)
}

func TestList_MissingArchive(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "missing.upack"))
	assert.Error(t, err)
}
