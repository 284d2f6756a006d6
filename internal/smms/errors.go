package smms

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingData is returned when the service reports success but the
	// response carries no payload for an operation that needs one.
	ErrMissingData = errors.New("response reported success but carried no data")

	ErrEmptyHash = errors.New("image hash is empty")
)

const CodeImageRepeated = "image_repeated"

// APIError is a failure reported by the service itself (success=false).
// Error returns the service's message verbatim.
type APIError struct {
	Code      string
	Message   string
	RequestID string

	// ExistingURL is set when an upload was rejected as a duplicate.
	ExistingURL string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("request failed: %s", e.Code)
	}
	return "request failed"
}

func (e *APIError) IsDuplicate() bool {
	return e.Code == CodeImageRepeated
}
