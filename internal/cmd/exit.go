package cmd

import (
	"errors"

	oerrors "github.com/opmodel/ship/internal/errors"
)

// Exit codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates invalid or missing configuration or an
	// invalid version.
	ExitValidationError = 2

	// ExitReleaseError indicates the upload or a release API call failed.
	ExitReleaseError = 3

	// ExitNotFound indicates a source path or the platform subtree is missing.
	ExitNotFound = 5
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitReleaseError:
		return "Release Error"
	case ExitNotFound:
		return "Not Found"
	default:
		return "Unknown"
	}
}

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError wraps err with the exit code its sentinel maps to.
func NewExitError(err error) *ExitError {
	return &ExitError{Err: err, Code: ExitCodeFromError(err)}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, oerrors.ErrInvalidVersion),
		errors.Is(err, oerrors.ErrInvalidConfiguration),
		errors.Is(err, oerrors.ErrMissingConfiguration):
		return ExitValidationError
	case errors.Is(err, oerrors.ErrUploadFailed),
		errors.Is(err, oerrors.ErrReleaseAPIFailed):
		return ExitReleaseError
	case errors.Is(err, oerrors.ErrMissingPath),
		errors.Is(err, oerrors.ErrMissingPlatformDependency):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}
