package versioning

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	oerrors "github.com/opmodel/ship/internal/errors"
	"github.com/opmodel/ship/internal/output"
)

// versionField is the configuration path reported in version errors.
const versionField = "version"

// PrereleaseRule maps branches matching Pattern to a prerelease Label.
type PrereleaseRule struct {
	Pattern string
	Label   string
}

// Request holds the inputs of a version resolution.
type Request struct {
	// Raw is the configured token. YAML decoding may hand over a number or
	// date, so it is converted to a string before parsing.
	Raw any

	// Fallback is used when Raw is empty.
	Fallback string

	// Branch is matched against the prerelease rules.
	Branch string

	// Rules are evaluated in declared order.
	Rules []PrereleaseRule

	// BuildID is appended to every applied label.
	BuildID string
}

// Resolve parses the version token and applies the prerelease rules.
//
// Every rule whose pattern matches the branch overwrites the working label
// with "<label>.<buildID>", so the last matching rule wins.
func Resolve(req Request) (Info, error) {
	token, err := rawToken(req.Raw)
	if err != nil {
		return Info{}, oerrors.NewInvalidVersionError(fmt.Sprint(req.Raw), versionField, err)
	}
	if token == "" {
		token = strings.TrimSpace(req.Fallback)
	}
	if token == "" {
		return Info{}, oerrors.NewMissingConfigurationError(versionField,
			"Set 'version' in the build configuration or pass --version")
	}

	info, err := Parse(token)
	if err != nil {
		return Info{}, oerrors.NewInvalidVersionError(token, versionField, err)
	}

	label, matched, err := prereleaseLabel(req)
	if err != nil {
		return Info{}, err
	}
	if !matched {
		return info, nil
	}

	resolved, err := info.WithPrerelease(label)
	if err != nil {
		return Info{}, oerrors.NewInvalidVersionError(
			fmt.Sprintf("%s-%s", info.Numeric(), label), "prerelease", err)
	}

	output.Debug("prerelease applied",
		"branch", req.Branch,
		"label", label,
		"version", resolved.Full(),
	)
	return resolved, nil
}

// prereleaseLabel walks every rule and keeps the label of the last match.
func prereleaseLabel(req Request) (string, bool, error) {
	var (
		label   string
		matched bool
	)
	for i, rule := range req.Rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return "", false, oerrors.NewInvalidConfigurationError(
				fmt.Sprintf("prerelease[%d].branch", i),
				fmt.Sprintf("invalid branch pattern %q: %v", rule.Pattern, err))
		}
		if !re.MatchString(req.Branch) {
			continue
		}
		label = rule.Label
		if id := prereleaseIdentifier(req.BuildID); id != "" {
			label += "." + id
		}
		matched = true
	}
	return label, matched, nil
}

// prereleaseIdentifier turns a build id into dot-separated semver
// identifiers: characters outside [0-9A-Za-z-] become '-', numeric parts lose
// their leading zeros and empty parts are dropped.
func prereleaseIdentifier(buildID string) string {
	var parts []string
	for _, part := range strings.Split(strings.TrimSpace(buildID), ".") {
		part = strings.Map(func(r rune) rune {
			switch {
			case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-':
				return r
			default:
				return '-'
			}
		}, part)
		if part == "" {
			continue
		}
		if strings.Trim(part, "0123456789") == "" {
			if part = strings.TrimLeft(part, "0"); part == "" {
				part = "0"
			}
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ".")
}

func rawToken(raw any) (string, error) {
	if raw == nil {
		return "", nil
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}
