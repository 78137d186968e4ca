package kube

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opmodel/ship/internal/testutil"
	"github.com/opmodel/ship/internal/versioning"
)

type noopUploader struct{}

func (noopUploader) Upload(context.Context, []byte) error { return nil }

func mustVersion(t *testing.T, s string) versioning.Info {
	t.Helper()
	v, err := versioning.Parse(s)
	require.NoError(t, err)
	return v
}

func writeArchive(t *testing.T) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), "App.upack", "zip")
}
