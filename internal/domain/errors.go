package domain

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrMalformedResponse marks responses whose body could not be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is a non-2xx answer from the event-log API.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// ErrorDetail returns the server-provided message carried by err, if any.
func ErrorDetail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// ErrorStatus returns the HTTP status carried by err, or 0.
func ErrorStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
