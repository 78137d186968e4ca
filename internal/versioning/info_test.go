package versioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Representations(t *testing.T) {
	tests := []struct {
		token   string
		numeric string
		release string
		full    string
		legacy  string
	}{
		{"1.2.3", "1.2.3", "1.2.3", "1.2.3", "1.2.3"},
		{"1.2.3-rc.42", "1.2.3", "1.2.3-rc.42", "1.2.3-rc.42", "1.2.3-rc42"},
		{"1.2.3+sha.abc", "1.2.3", "1.2.3", "1.2.3+sha.abc", "1.2.3"},
		{"10.0.7-beta-2.x+build.9", "10.0.7", "10.0.7-beta-2.x", "10.0.7-beta-2.x+build.9", "10.0.7-beta2x"},
		{"0.0.0-a.b.c", "0.0.0", "0.0.0-a.b.c", "0.0.0-a.b.c", "0.0.0-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			info, err := Parse(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.numeric, info.Numeric())
			assert.Equal(t, tt.release, info.Release())
			assert.Equal(t, tt.full, info.Full())
			assert.Equal(t, tt.legacy, info.Legacy())
			assert.Equal(t, tt.full, info.String())
		})
	}
}

func TestParse_Components(t *testing.T) {
	info, err := Parse("4.5.6-alpha.1+meta")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), info.Major())
	assert.Equal(t, uint64(5), info.Minor())
	assert.Equal(t, uint64(6), info.Patch())
	assert.Equal(t, "alpha.1", info.Prerelease())
	assert.Equal(t, "meta", info.Metadata())
	assert.False(t, info.IsZero())
}

func TestParse_Invalid(t *testing.T) {
	for _, token := range []string{"fubar", "1.2", "v1.2.3", "1.2.3.4", ""} {
		t.Run(token, func(t *testing.T) {
			_, err := Parse(token)
			assert.Error(t, err)
		})
	}
}

func TestWithPrerelease_KeepsMetadata(t *testing.T) {
	info, err := Parse("1.2.3-old+build.5")
	require.NoError(t, err)

	next, err := info.WithPrerelease("rc.17")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3-rc.17+build.5", next.Full())
	assert.Equal(t, "1.2.3-rc.17", next.Release())
	assert.Equal(t, "1.2.3-rc17", next.Legacy())
	assert.Equal(t, "1.2.3-old+build.5", info.Full(), "original is unchanged")
}

func TestWithPrerelease_RejectsInvalidLabel(t *testing.T) {
	info := New(1, 0, 0, "", "")
	_, err := info.WithPrerelease("bad_label")
	assert.Error(t, err)
}

func TestZeroInfo(t *testing.T) {
	assert.True(t, Info{}.IsZero())
}
