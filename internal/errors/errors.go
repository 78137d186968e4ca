// Package errors provides the error taxonomy for the ship build pipeline.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for known conditions.
var (
	// ErrInvalidVersion indicates a version token that is not semantic version.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrMissingConfiguration indicates a required configuration property is absent.
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrInvalidConfiguration indicates a configuration property is present but malformed.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMissingPath indicates a requested source path does not exist.
	ErrMissingPath = errors.New("missing path")

	// ErrMissingPlatformDependency indicates the platform subtree is absent.
	ErrMissingPlatformDependency = errors.New("missing platform dependency")

	// ErrUploadFailed indicates the archive upload did not succeed.
	ErrUploadFailed = errors.New("upload failed")

	// ErrReleaseAPIFailed indicates a release lookup, registration or deployment failed.
	ErrReleaseAPIFailed = errors.New("release api failed")
)

// ErrMissingVersion is a missing-configuration error specific to the version token.
var ErrMissingVersion = fmt.Errorf("%w: version", ErrMissingConfiguration)

// DetailError captures structured error information.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is a file path (optional).
	Location string

	// Field is the configuration path of the offending element (optional).
	Field string

	// Context contains additional key-value context (optional).
	Context map[string]string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(e.Type)
	b.WriteString("\n")

	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}
	if e.Field != "" {
		b.WriteString("  Field: ")
		b.WriteString(e.Field)
		b.WriteString("\n")
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("  ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e.Context[k])
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewInvalidVersionError reports a version token that could not be parsed.
func NewInvalidVersionError(token, field string, cause error) error {
	ctx := map[string]string{}
	if cause != nil {
		ctx["Reason"] = cause.Error()
	}
	return &DetailError{
		Type:    "invalid version",
		Message: fmt.Sprintf("%q is not a valid version (config path: %s)", token, field),
		Field:   field,
		Context: ctx,
		Hint:    "Use major.minor.patch[-prerelease][+build], e.g. 1.2.3",
		Cause:   ErrInvalidVersion,
	}
}

// NewMissingConfigurationError reports a required property that is absent.
func NewMissingConfigurationError(field, hint string) error {
	cause := ErrMissingConfiguration
	if field == "version" {
		cause = ErrMissingVersion
	}
	return &DetailError{
		Type:    "missing configuration",
		Message: fmt.Sprintf("property %q is mandatory", field),
		Field:   field,
		Hint:    hint,
		Cause:   cause,
	}
}

// NewInvalidConfigurationError reports a property whose value is malformed.
func NewInvalidConfigurationError(field, message string) error {
	return &DetailError{
		Type:    "invalid configuration",
		Message: message,
		Field:   field,
		Cause:   ErrInvalidConfiguration,
	}
}

// NewMissingPathError reports a requested source path that does not exist.
func NewMissingPathError(path, field string) error {
	return &DetailError{
		Type:     "missing path",
		Message:  fmt.Sprintf("path %q does not exist", path),
		Location: path,
		Field:    field,
		Cause:    ErrMissingPath,
	}
}

// NewMissingPlatformError reports an absent platform subtree.
func NewMissingPlatformError(path, docs string) error {
	return &DetailError{
		Type:     "missing platform dependency",
		Message:  fmt.Sprintf("platform directory %q was not found", path),
		Location: path,
		Hint:     "Install the platform files before packaging, see " + docs,
		Cause:    ErrMissingPlatformDependency,
	}
}

// NewUploadError reports a failed upload. detail is the response diagnostic.
func NewUploadError(endpoint, detail string, cause error) error {
	ctx := map[string]string{"Endpoint": endpoint}
	if cause != nil {
		ctx["Reason"] = cause.Error()
	}
	msg := "archive upload failed"
	if detail != "" {
		msg += ": " + detail
	}
	return &DetailError{
		Type:    "upload failed",
		Message: msg,
		Field:   "upload.endpoint",
		Context: ctx,
		Cause:   ErrUploadFailed,
	}
}

// NewReleaseAPIError reports a failed release API call.
func NewReleaseAPIError(operation string, context map[string]string, cause error) error {
	msg := operation + " failed"
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return &DetailError{
		Type:    "release api failed",
		Message: msg,
		Context: context,
		Cause:   ErrReleaseAPIFailed,
	}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
