package config

import (
	"os"
	"sort"
	"time"

	"github.com/opmodel/ship/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// Environment variables consulted during resolution.
const (
	EnvConfig      = "SHIP_CONFIG"
	EnvBranch      = "SHIP_BRANCH"
	EnvBuildID     = "SHIP_BUILD_ID"
	EnvEnvironment = "SHIP_ENVIRONMENT"
	EnvVersion     = "SHIP_VERSION"
)

// ResolvedValue is one configuration value and where it came from.
type ResolvedValue struct {
	Key    string
	Value  string
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveOptions carries the candidate values for one key.
type ResolveOptions struct {
	Key         string
	FlagValue   string
	EnvVar      string
	ConfigValue string
	Default     string
}

// Resolve picks a value using precedence flag > env > config > default.
// Empty candidates are treated as unset.
func Resolve(opts ResolveOptions) ResolvedValue {
	result := ResolvedValue{
		Key:      opts.Key,
		Shadowed: make(map[ConfigSource]string),
	}

	var envValue string
	if opts.EnvVar != "" {
		envValue = os.Getenv(opts.EnvVar)
	}

	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, opts.FlagValue},
		{SourceEnv, envValue},
		{SourceConfig, opts.ConfigValue},
		{SourceDefault, opts.Default},
	}

	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if result.Source == "" {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		result.Shadowed[c.source] = c.value
	}

	return result
}

// RunOptions are the command-line inputs that override ship.yaml.
type RunOptions struct {
	Branch         string
	BuildID        string
	Environment    string
	Version        string
	DetectedBranch string
}

// RunValues are the resolved per-run inputs.
type RunValues struct {
	Branch      ResolvedValue
	BuildID     ResolvedValue
	Environment ResolvedValue
	// VersionFallback is used only when ship.yaml has no version.
	VersionFallback ResolvedValue
}

// All returns the values in a stable order for logging.
func (r RunValues) All() []ResolvedValue {
	return []ResolvedValue{r.Branch, r.BuildID, r.Environment, r.VersionFallback}
}

// ResolveRun resolves branch, build id, environment and the version
// fallback. The branch default is the one detected from the repository.
func ResolveRun(cfg *BuildConfig, opts RunOptions) RunValues {
	return RunValues{
		Branch: Resolve(ResolveOptions{
			Key:       "branch",
			FlagValue: opts.Branch,
			EnvVar:    EnvBranch,
			Default:   opts.DetectedBranch,
		}),
		BuildID: Resolve(ResolveOptions{
			Key:         "server.buildId",
			FlagValue:   opts.BuildID,
			EnvVar:      EnvBuildID,
			ConfigValue: cfg.Server.BuildID,
		}),
		Environment: Resolve(ResolveOptions{
			Key:         "environment",
			FlagValue:   opts.Environment,
			EnvVar:      EnvEnvironment,
			ConfigValue: cfg.Environment,
			Default:     "Development",
		}),
		VersionFallback: Resolve(ResolveOptions{
			Key:       "version",
			FlagValue: opts.Version,
			EnvVar:    EnvVersion,
		}),
	}
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) SHIP_CONFIG env, (3) ship.yaml in the build root.
func ResolveConfigPath(flagValue, buildRoot string) ResolvedValue {
	return Resolve(ResolveOptions{
		Key:       "config",
		FlagValue: flagValue,
		EnvVar:    EnvConfig,
		Default:   DefaultConfigPath(buildRoot),
	})
}

// DeveloperBuildID returns the build id used outside a build server.
func DeveloperBuildID(now time.Time) string {
	return now.UTC().Format("20060102150405")
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)

		sources := make([]string, 0, len(v.Shadowed))
		for source := range v.Shadowed {
			sources = append(sources, string(source))
		}
		sort.Strings(sources)
		for _, source := range sources {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", v.Shadowed[ConfigSource(source)],
			)
		}
	}
}
