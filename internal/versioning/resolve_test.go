package versioning

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/ship/internal/errors"
)

func TestResolve_NoRules(t *testing.T) {
	info, err := Resolve(Request{Raw: "1.2.3", Branch: "develop", BuildID: "7"})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", info.Full())
}

func TestResolve_LastMatchWins(t *testing.T) {
	info, err := Resolve(Request{
		Raw:    "2.0.0",
		Branch: "release/2.0",
		Rules: []PrereleaseRule{
			{Pattern: "^release", Label: "alpha"},
			{Pattern: "2\\.0$", Label: "rc"},
		},
		BuildID: "42",
	})
	require.NoError(t, err)
	assert.Equal(t, "rc.42", info.Prerelease())
	assert.Equal(t, "2.0.0-rc.42", info.Release())
	assert.Equal(t, "2.0.0-rc42", info.Legacy())
}

func TestResolve_OnlyMatchingRulesApply(t *testing.T) {
	info, err := Resolve(Request{
		Raw:    "2.0.0",
		Branch: "feature/login",
		Rules: []PrereleaseRule{
			{Pattern: "^feature/", Label: "alpha"},
			{Pattern: "^release", Label: "rc"},
		},
		BuildID: "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "2.0.0-alpha.3", info.Full())
}

func TestResolve_RuleOverridesConfiguredPrerelease(t *testing.T) {
	info, err := Resolve(Request{
		Raw:     "1.0.0-dev+sha.1",
		Branch:  "develop",
		Rules:   []PrereleaseRule{{Pattern: "develop", Label: "beta"}},
		BuildID: "9",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0-beta.9+sha.1", info.Full())
}

func TestResolve_NoMatchKeepsToken(t *testing.T) {
	info, err := Resolve(Request{
		Raw:    "1.0.0-dev",
		Branch: "master",
		Rules:  []PrereleaseRule{{Pattern: "^develop$", Label: "beta"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0-dev", info.Full())
}

func TestResolve_InvalidToken(t *testing.T) {
	_, err := Resolve(Request{Raw: "fubar"})
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrInvalidVersion)
	assert.Contains(t, err.Error(), "valid version")

	var detail *oerrors.DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "version", detail.Field)
}

func TestResolve_NonStringToken(t *testing.T) {
	// A YAML scalar such as 1.2 arrives as a float and must still be parsed
	// as a string, which then fails strict validation.
	_, err := Resolve(Request{Raw: 1.2})
	assert.ErrorIs(t, err, oerrors.ErrInvalidVersion)
	assert.Contains(t, err.Error(), "1.2")

	_, err = Resolve(Request{Raw: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)})
	assert.ErrorIs(t, err, oerrors.ErrInvalidVersion)
}

func TestResolve_Fallback(t *testing.T) {
	info, err := Resolve(Request{Raw: nil, Fallback: "3.1.4"})
	require.NoError(t, err)
	assert.Equal(t, "3.1.4", info.Full())

	info, err = Resolve(Request{Raw: "1.0.0", Fallback: "3.1.4"})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", info.Full(), "configured token wins over fallback")
}

func TestResolve_MissingVersion(t *testing.T) {
	_, err := Resolve(Request{Raw: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrMissingVersion)
	assert.ErrorIs(t, err, oerrors.ErrMissingConfiguration)
	assert.Contains(t, err.Error(), "mandatory")
}

func TestResolve_InvalidRulePattern(t *testing.T) {
	_, err := Resolve(Request{
		Raw:    "1.0.0",
		Branch: "develop",
		Rules:  []PrereleaseRule{{Pattern: "(", Label: "x"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "prerelease[0].branch")
}

func TestResolve_InvalidLabel(t *testing.T) {
	_, err := Resolve(Request{
		Raw:     "1.0.0",
		Branch:  "develop",
		Rules:   []PrereleaseRule{{Pattern: "develop", Label: "not_valid"}},
		BuildID: "1",
	})
	assert.ErrorIs(t, err, oerrors.ErrInvalidVersion)
}

func TestResolve_BuildIDNormalised(t *testing.T) {
	tests := []struct {
		buildID string
		want    string
	}{
		{buildID: "42", want: "1.2.3-beta.42"},
		{buildID: "007", want: "1.2.3-beta.7"},
		{buildID: "000", want: "1.2.3-beta.0"},
		{buildID: "1234_5", want: "1.2.3-beta.1234-5"},
		{buildID: "build 12/3", want: "1.2.3-beta.build-12-3"},
		{buildID: "4711.02", want: "1.2.3-beta.4711.2"},
		{buildID: "..", want: "1.2.3-beta"},
	}

	for _, tt := range tests {
		t.Run(tt.buildID, func(t *testing.T) {
			info, err := Resolve(Request{
				Raw:     "1.2.3",
				Branch:  "develop",
				Rules:   []PrereleaseRule{{Pattern: "develop", Label: "beta"}},
				BuildID: tt.buildID,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Full())
		})
	}
}
