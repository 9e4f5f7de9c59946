package classifier

import (
	"fmt"
)

// Errors returned by the client, besides *sample.ValidationError which is
// raised before any request is made.

// TransportError means no response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx answer.
type ServerError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// ResponseShapeError means the answer could not be understood.
type ResponseShapeError struct {
	Op  string
	Err error
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *ResponseShapeError) Unwrap() error {
	return e.Err
}
