package rest

import (
	"errors"
	"fmt"

	"expensedash/internal/core"
)

var (
	// ErrUnexpectedShape means a 2xx body lacked the fields the call expects.
	ErrUnexpectedShape = errors.New("unexpected response shape")

	ErrMalformedReply = core.ErrMalformedReply
	ErrRejected       = core.ErrRejected
	ErrNotFound       = core.ErrNotFound
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

const maxErrorBody = 256

func truncate(b []byte) string {
	if len(b) <= maxErrorBody {
		return string(b)
	}
	return string(b[:maxErrorBody]) + "..."
}
