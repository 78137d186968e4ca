package kubernetes

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ErrReleaseNotFound matches every ReleaseNotFoundError.
var ErrReleaseNotFound = errors.New("release not found")

// ReleaseNotFoundError is returned when no release Secret exists for the
// given application and release name.
type ReleaseNotFoundError struct {
	Application string
	Name        string
	Namespace   string
}

// Error implements the error interface.
func (e *ReleaseNotFoundError) Error() string {
	return fmt.Sprintf("release %q of application %q not found in namespace %q", e.Name, e.Application, e.Namespace)
}

// Is implements errors.Is for ReleaseNotFoundError.
func (e *ReleaseNotFoundError) Is(target error) bool {
	return target == ErrReleaseNotFound
}

// IsReleaseNotFound reports whether err (or any error in its chain) is a
// ReleaseNotFoundError.
func IsReleaseNotFound(err error) bool {
	return errors.Is(err, ErrReleaseNotFound)
}

// APIErrorReason classifies a Kubernetes API error. Unknown errors return "".
func APIErrorReason(err error) string {
	switch {
	case apierrors.IsNotFound(err):
		return "not found"
	case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
		return "permission denied"
	case apierrors.IsServerTimeout(err), apierrors.IsServiceUnavailable(err), apierrors.IsTimeout(err):
		return "cluster unreachable"
	case apierrors.IsAlreadyExists(err):
		return "already exists"
	case apierrors.IsConflict(err):
		return "conflict"
	default:
		return ""
	}
}

// WrapAPIError prefixes err with op and, when known, its reason.
func WrapAPIError(op string, err error) error {
	if reason := APIErrorReason(err); reason != "" {
		return fmt.Errorf("%s (%s): %w", op, reason, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
