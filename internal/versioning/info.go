// Package versioning resolves the single authoritative version of a build.
//
// A resolved Info carries four string representations computed once from the
// same (major, minor, patch, prerelease) tuple:
//
//	Numeric  1.2.3
//	Full     1.2.3-rc.42+sha.abc
//	Release  1.2.3-rc.42
//	Legacy   1.2.3-rc42
package versioning

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// Info is an immutable resolved version.
type Info struct {
	major, minor, patch uint64
	prerelease          string
	metadata            string

	numeric string
	full    string
	release string
	legacy  string
}

// New builds an Info and derives all representations.
func New(major, minor, patch uint64, prerelease, metadata string) Info {
	i := Info{
		major:      major,
		minor:      minor,
		patch:      patch,
		prerelease: prerelease,
		metadata:   metadata,
	}

	i.numeric = fmt.Sprintf("%d.%d.%d", major, minor, patch)
	i.release = i.numeric
	i.legacy = i.numeric
	if prerelease != "" {
		i.release += "-" + prerelease
		if stripped := alphanumeric(prerelease); stripped != "" {
			i.legacy += "-" + stripped
		}
	}
	i.full = i.release
	if metadata != "" {
		i.full += "+" + metadata
	}

	return i
}

// Parse parses a strict major.minor.patch[-prerelease][+build] token.
func Parse(token string) (Info, error) {
	v, err := semver.StrictNewVersion(strings.TrimSpace(token))
	if err != nil {
		return Info{}, err
	}
	return fromSemver(v), nil
}

func fromSemver(v *semver.Version) Info {
	return New(v.Major(), v.Minor(), v.Patch(), v.Prerelease(), v.Metadata())
}

// WithPrerelease returns a copy carrying a different prerelease label.
// The label must be a valid semver prerelease; empty clears it.
func (i Info) WithPrerelease(label string) (Info, error) {
	v := semver.New(i.major, i.minor, i.patch, "", i.metadata)
	next, err := v.SetPrerelease(label)
	if err != nil {
		return Info{}, err
	}
	return fromSemver(&next), nil
}

// Major returns the major component.
func (i Info) Major() uint64 { return i.major }

// Minor returns the minor component.
func (i Info) Minor() uint64 { return i.minor }

// Patch returns the patch component.
func (i Info) Patch() uint64 { return i.patch }

// Prerelease returns the prerelease label, possibly empty.
func (i Info) Prerelease() string { return i.prerelease }

// Metadata returns the build metadata, possibly empty.
func (i Info) Metadata() string { return i.metadata }

// Numeric returns major.minor.patch.
func (i Info) Numeric() string { return i.numeric }

// Full returns the complete version including prerelease and build metadata.
func (i Info) Full() string { return i.full }

// Release returns the version without build metadata.
func (i Info) Release() string { return i.release }

// Legacy returns Release with non-alphanumeric prerelease characters removed,
// for systems that reject dots and hyphens in version labels.
func (i Info) Legacy() string { return i.legacy }

// IsZero reports whether the Info was never resolved.
func (i Info) IsZero() bool { return i.full == "" }

// String returns the full version.
func (i Info) String() string { return i.full }

func alphanumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
