// Package api implements the authenticated HTTP client for the Todos
// backend and the error taxonomy shared by every layer above it.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error into the closed taxonomy consumed by the
// conversation and history layers.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetworkError
	KindInvalidInput
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindUnavailable
	KindServerError
)

// Error is the sole error shape crossing layer boundaries: an HTTP status
// (0 when no response was received), a human-readable message, and the raw
// response body for diagnostics.
type Error struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network error: %s", e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Kind derives the taxonomy kind from the status code.
func (e *Error) Kind() Kind {
	switch e.Status {
	case 0:
		return KindNetworkError
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindInvalidInput
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusServiceUnavailable:
		return KindUnavailable
	}
	if e.Status >= 500 {
		return KindServerError
	}
	return KindUnknown
}

// AsError extracts an *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthenticated reports whether err is a 401 or missing-credential error.
func IsUnauthenticated(err error) bool { return kindOf(err) == KindUnauthenticated }

// IsNotFound reports whether err is a 404 error.
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsNetworkError reports whether err means no response was received.
func IsNetworkError(err error) bool { return kindOf(err) == KindNetworkError }

func kindOf(err error) Kind {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Kind()
	}
	return KindUnknown
}
