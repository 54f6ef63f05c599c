package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork wraps transport-level failures (no HTTP response).
var ErrNetwork = errors.New("network failure")

// ErrNotFound matches a ServerError with status 404.
var ErrNotFound = errors.New("not found")

// ErrInvalidQuery is returned before any request for a bad page or size.
var ErrInvalidQuery = errors.New("invalid query")

// ServerError is a non-2xx response.
type ServerError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("server error %d: %s", e.StatusCode, msg)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *ServerError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
