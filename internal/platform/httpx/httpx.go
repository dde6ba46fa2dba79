// Package httpx holds small HTTP error-classification helpers shared by
// clients and handlers.
package httpx

import (
	"context"
	"errors"
	"net"
)

// IsTimeoutError reports whether err represents an exceeded deadline,
// whether it came from the context or from the transport.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
