package azure

import (
	"errors"
	"fmt"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
)

// apiError carries the HTTP status of a failed API call so the adapter
// layer can classify it without importing the wire types.
type apiError struct {
	op     string
	status int
	err    error
}

func (e *apiError) Error() string {
	return fmt.Sprintf("azure: %s failed: %v", e.op, e.err)
}

func (e *apiError) Unwrap() error { return e.err }

// wrapAPIError preserves the SDK's status code alongside the error.
func wrapAPIError(op string, err error) error {
	status := 0
	var wrapped azuredevops.WrappedError
	if errors.As(err, &wrapped) && wrapped.StatusCode != nil {
		status = *wrapped.StatusCode
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
