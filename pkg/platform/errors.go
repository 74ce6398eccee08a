package platform

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors forming the failure taxonomy for all adapters.
// Adapters classify transport failures into these kinds by status code
// and never discard an error silently.
var (
	// ErrAuthentication indicates rejected credentials. Fatal, never retried.
	ErrAuthentication = errors.New("authentication failed")

	// ErrAccessDenied indicates valid credentials without sufficient rights.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound indicates the referenced item or resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrServer indicates an upstream 5xx failure.
	ErrServer = errors.New("server error")

	// ErrHTTP indicates an HTTP failure not covered by a more specific kind.
	ErrHTTP = errors.New("http error")

	// ErrValidation indicates a payload the platform or pipeline rejects,
	// such as a blank title.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupported indicates the adapter lacks the requested capability.
	ErrUnsupported = errors.New("operation not supported")

	// ErrConfig indicates missing or inconsistent adapter configuration,
	// such as epic operations without a configured group.
	ErrConfig = errors.New("configuration error")
)

// ClassifyHTTPStatus wraps err with the sentinel matching an HTTP
// status code, keeping the operation name for diagnosis. A zero status
// (transport-level failure before any response) classifies as ErrHTTP.
func ClassifyHTTPStatus(op string, status int, err error) error {
	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w: %w", op, ErrAuthentication, err)
	case status == http.StatusForbidden:
		return fmt.Errorf("%s: %w: %w", op, ErrAccessDenied, err)
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w (status %d): %w", op, ErrServer, status, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrHTTP, err)
	}
}

// Unsupported builds an ErrUnsupported error naming the provider and
// the operation it cannot perform.
func Unsupported(provider, op string) error {
	return fmt.Errorf("%w: %s does not support %s", ErrUnsupported, provider, op)
}
