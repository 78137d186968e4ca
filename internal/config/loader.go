package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	oerrors "github.com/opmodel/ship/internal/errors"
	"github.com/opmodel/ship/internal/output"
)

// Environment variable prefix for ship configuration.
const envPrefix = "SHIP"

// DefaultConfigFile is looked up in the build root when no path is given.
const DefaultConfigFile = "ship.yaml"

// Loader reads ship.yaml, validates it against the schema and decodes it
// into a BuildConfig.
type Loader struct {
	v         *viper.Viper
	validator *Validator
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Connection settings are commonly injected by the build server.
	_ = v.BindEnv("upload.endpoint", "SHIP_UPLOAD_ENDPOINT")
	_ = v.BindEnv("release.url", "SHIP_RELEASE_URL")
	_ = v.BindEnv("server.url", "SHIP_SERVER_URL")

	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}

	return &Loader{v: v, validator: validator}, nil
}

// Load reads the configuration file at path. Unlike CLI settings, the build
// configuration is required: a missing file is an error.
func (l *Loader) Load(path string) (*BuildConfig, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &oerrors.DetailError{
				Type:     "missing configuration",
				Message:  "build configuration file not found",
				Location: expanded,
				Hint:     "Run 'ship config init' to create " + DefaultConfigFile,
				Cause:    oerrors.ErrMissingConfiguration,
			}
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return l.LoadBytes(data, expanded)
}

// LoadBytes decodes configuration content. location is only used in errors.
func (l *Loader) LoadBytes(data []byte, location string) (*BuildConfig, error) {
	if err := l.validator.ValidateBytes(data); err != nil {
		var verrs SchemaErrors
		if ok := asSchemaErrors(err, &verrs); ok {
			return nil, &oerrors.DetailError{
				Type:     "invalid configuration",
				Message:  verrs.Error(),
				Location: location,
				Cause:    oerrors.ErrInvalidConfiguration,
			}
		}
		return nil, err
	}

	l.v.SetConfigType("yaml")
	if err := l.v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg BuildConfig
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	output.Debug("build configuration loaded",
		"location", location,
		"package", cfg.Package.Name,
		"paths", len(cfg.Package.Paths),
	)

	return &cfg, nil
}
