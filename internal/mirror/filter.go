package mirror

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"
)

// ForcedExcludes are directory names never mirrored, at any depth.
var ForcedExcludes = []string{"obj", ".git", ".hg"}

// Filter selects the files a mirror copies.
//
// Patterns without a slash match a single path component by name: include
// patterns match file names, exclude patterns match file or directory names
// at any depth. Patterns with a slash match the slash-separated path
// relative to the source root and may use **.
type Filter struct {
	// Include lists file patterns. Empty includes every file.
	Include []string

	// Exclude lists file and directory patterns.
	Exclude []string

	// ExcludeRootDirs lists directory name patterns pruned only when they
	// sit directly inside the source root.
	ExcludeRootDirs []string

	// ExcludeRootFiles drops files directly inside the source root.
	ExcludeRootFiles bool
}

// matcher is a compiled Filter.
type matcher struct {
	includeNames []string
	includePaths *patternmatcher.PatternMatcher
	excludeNames []string
	excludePaths *patternmatcher.PatternMatcher
	rootDirs     []string
	rootFiles    bool
}

func (f Filter) compile() (*matcher, error) {
	m := &matcher{
		excludeNames: append([]string(nil), ForcedExcludes...),
		rootFiles:    f.ExcludeRootFiles,
	}

	var includePaths, excludePaths []string
	for _, p := range f.Include {
		if err := checkPattern(p); err != nil {
			return nil, err
		}
		if strings.Contains(p, "/") {
			includePaths = append(includePaths, p)
		} else {
			m.includeNames = append(m.includeNames, p)
		}
	}
	for _, p := range f.Exclude {
		if err := checkPattern(p); err != nil {
			return nil, err
		}
		if strings.Contains(p, "/") {
			excludePaths = append(excludePaths, p)
		} else {
			m.excludeNames = append(m.excludeNames, p)
		}
	}

	for _, p := range f.ExcludeRootDirs {
		if err := checkPattern(p); err != nil {
			return nil, err
		}
		if strings.Contains(p, "/") {
			return nil, fmt.Errorf("root directory pattern %q must be a single name", p)
		}
		m.rootDirs = append(m.rootDirs, p)
	}

	var err error
	if len(includePaths) > 0 {
		if m.includePaths, err = patternmatcher.New(includePaths); err != nil {
			return nil, fmt.Errorf("include patterns: %w", err)
		}
	}
	if len(excludePaths) > 0 {
		if m.excludePaths, err = patternmatcher.New(excludePaths); err != nil {
			return nil, fmt.Errorf("exclude patterns: %w", err)
		}
	}
	return m, nil
}

func checkPattern(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("empty pattern")
	}
	if _, err := path.Match(strings.ReplaceAll(p, "**", "*"), ""); err != nil {
		return fmt.Errorf("pattern %q: %w", p, err)
	}
	return nil
}

// skipDir reports whether a directory (relative, slash-separated) is pruned.
func (m *matcher) skipDir(rel string) bool {
	name := path.Base(rel)
	if matchAny(m.excludeNames, name) {
		return true
	}
	if !strings.Contains(rel, "/") && matchAny(m.rootDirs, rel) {
		return true
	}
	return m.pathMatches(m.excludePaths, rel)
}

// includeFile reports whether a file (relative, slash-separated) is copied.
// Parent directories have already passed skipDir.
func (m *matcher) includeFile(rel string) bool {
	if m.rootFiles && !strings.Contains(rel, "/") {
		return false
	}

	name := path.Base(rel)
	if matchAny(m.excludeNames, name) || m.pathMatches(m.excludePaths, rel) {
		return false
	}

	if len(m.includeNames) == 0 && m.includePaths == nil {
		return true
	}
	return matchAny(m.includeNames, name) || m.pathMatches(m.includePaths, rel)
}

func (m *matcher) pathMatches(pm *patternmatcher.PatternMatcher, rel string) bool {
	if pm == nil {
		return false
	}
	ok, err := pm.MatchesOrParentMatches(filepath.FromSlash(rel))
	return err == nil && ok
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
