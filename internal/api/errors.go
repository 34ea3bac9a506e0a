package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind buckets backend failures into the categories callers care about.
type ErrorKind int

const (
	// KindNetwork means no usable response arrived (DNS, refused, timeout).
	KindNetwork ErrorKind = iota
	// KindClient is any 4xx other than 401: validation, not-found, conflict.
	KindClient
	// KindAuthExpired is specifically 401; the session must be torn down.
	KindAuthExpired
	// KindServer is any 5xx.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindClient:
		return "client"
	case KindAuthExpired:
		return "auth_expired"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the single error type the gateway surfaces to stores and views.
// Status is zero for network failures.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("verso api: %s (%d %s)", e.Message, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("verso api: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsAuthExpired reports whether err is a 401 from the backend.
func IsAuthExpired(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuthExpired
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// kindForStatus maps an HTTP status to an ErrorKind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthExpired
	case status >= 400 && status < 500:
		return KindClient
	default:
		return KindServer
	}
}

func networkError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: err.Error(),
		cause:   err,
	}
}

func statusError(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{
		Kind:    kindForStatus(status),
		Status:  status,
		Message: message,
	}
}
