// Package branch classifies source branches.
//
// Two transforms are deliberately kept apart:
//
//   - Classify works on the full branch name (remote prefix removed) and
//     decides publish eligibility and the release name.
//   - Canonical reduces a branch to one of the canonical names used for
//     upload, so release/2.0 becomes release.
//
// Publish eligibility and upload eligibility therefore never share state.
package branch

import (
	"fmt"
	"regexp"
	"strings"
)

// Canonical branch names.
const (
	Develop = "develop"
	Release = "release"
	Master  = "master"
)

// DefaultPublishPatterns are used when the configuration declares none.
var DefaultPublishPatterns = []string{Develop, Release, "release/.*", Master}

// remotePrefixes are removed, in order, from the front of a branch name.
var remotePrefixes = []string{"refs/heads/", "refs/remotes/", "remotes/"}

// StripRemote removes ref and remote prefixes such as refs/heads/ or origin/.
func StripRemote(name string) string {
	name = strings.TrimSpace(name)
	for _, p := range remotePrefixes {
		if strings.HasPrefix(name, p) {
			name = strings.TrimPrefix(name, p)
			if p != "refs/heads/" {
				// refs/remotes/<remote>/<branch>
				if i := strings.Index(name, "/"); i >= 0 {
					name = name[i+1:]
				}
			}
			return name
		}
	}
	return strings.TrimPrefix(name, "origin/")
}

// Classification is the publish decision for one branch.
type Classification struct {
	// Publish is true when the branch matched a publish pattern.
	Publish bool

	// ReleaseName is the explicit override, or the branch when publishing.
	ReleaseName string
}

// Classify decides publish eligibility. The branch is matched against the
// disjunction of patterns anchored to the whole name. An empty pattern list
// falls back to DefaultPublishPatterns.
func Classify(name string, patterns []string, releaseOverride string) (Classification, error) {
	name = StripRemote(name)
	if len(patterns) == 0 {
		patterns = DefaultPublishPatterns
	}

	re, err := anchored(patterns)
	if err != nil {
		return Classification{}, err
	}

	c := Classification{Publish: re.MatchString(name)}
	switch {
	case releaseOverride != "":
		c.ReleaseName = releaseOverride
	case c.Publish:
		c.ReleaseName = name
	}
	return c, nil
}

func anchored(patterns []string) (*regexp.Regexp, error) {
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return nil, &PatternError{Index: i, Pattern: p, Err: err}
		}
		parts[i] = "(?:" + p + ")"
	}
	return regexp.Compile("^(?:" + strings.Join(parts, "|") + ")$")
}

// PatternError reports an invalid publish pattern.
type PatternError struct {
	Index   int
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("publish pattern %d %q: %v", e.Index, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Canonical strips the remote prefix and, for the canonical branches, any
// sub-path after the first slash. Other branches are returned stripped only.
func Canonical(name string) string {
	name = StripRemote(name)
	head, _, _ := strings.Cut(name, "/")
	switch head {
	case Develop, Release, Master:
		return head
	}
	return name
}

// UploadEligible reports whether a canonical branch may upload packages.
func UploadEligible(canonical string) bool {
	switch canonical {
	case Develop, Release, Master:
		return true
	}
	return false
}

// Deploys reports whether packages registered from the canonical branch are
// deployed automatically. Master registers but never deploys.
func Deploys(canonical string) bool {
	return canonical != Master
}
