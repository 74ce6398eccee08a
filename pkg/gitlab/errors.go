package gitlab

import (
	"errors"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// ErrGroupRequired is returned when an epic operation is attempted on
// a client with no group configured. Epics are a group-level resource.
var ErrGroupRequired = errors.New("epic operations require a configured gitlab group")

// apiError carries the HTTP status of a failed API call so the adapter
// layer can classify it without importing the wire types.
type apiError struct {
	op     string
	status int
	err    error
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gitlab: %s failed: %v", e.op, e.err)
}

func (e *apiError) Unwrap() error { return e.err }

// wrapAPIError preserves the response status alongside the error.
func wrapAPIError(op string, resp *gitlab.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	return &apiError{op: op, status: status, err: err}
}

// StatusCode extracts the HTTP status from an error produced by this
// package; 0 when the error carries none.
func StatusCode(err error) int {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.status
	}
	return 0
}
