package gateway

import (
	"errors"
	"fmt"
)

// ErrTimeout reports that the transport did not complete before the
// configured deadline. Returned errors wrap it, so callers match with
// errors.Is.
var ErrTimeout = errors.New("gateway: request timed out")

// HTTPError reports a response with a non-success status. Message is taken
// from the response body's "detail" field, then its "message" field, then
// falls back to "HTTP Error <status>".
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

// DecodeError reports a body that declared a structured content type but
// failed to parse.
type DecodeError struct {
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gateway: decode %s response: %v", e.ContentType, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NetworkError wraps a transport-level failure (DNS, connection refusal)
// without altering its message.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }
