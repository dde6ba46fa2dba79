package recommender

import (
	"errors"
	"fmt"
)

// ErrTimeout reports that the service did not answer within the request
// deadline. Never retried automatically.
var ErrTimeout = errors.New("recommendation request timed out")

// StatusError is a non-200 reply. The raw status and body are preserved for
// diagnostics; the body is opaque text as far as the client is concerned.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("recommendation service error: status=%d", e.Status)
	}
	return fmt.Sprintf("recommendation service error: status=%d body=%s", e.Status, e.Body)
}

// DecodeError wraps a 200 body that did not parse into the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("recommendation response did not decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
