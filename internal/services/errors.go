package services

import (
	"fmt"

	"github.com/tuniverse/tvx/internal/shared"
)

// HTTPError is a non-2xx backend response. The body is captured verbatim for
// diagnostic display.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

func (e *HTTPError) Unwrap() error {
	return shared.ErrAPIRequest
}

// NetworkError is a transport-level failure; the request never produced a
// response.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return shared.ErrServiceUnavailable
}

// DecodeError is a response body that is not the expected shape.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return shared.ErrDecodeFailed
}
