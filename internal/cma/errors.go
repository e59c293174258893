package cma

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches an APIError carrying HTTP 404.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized matches an APIError carrying HTTP 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAlreadyPublished is returned by PublishContentType when the content
	// type is already published at its current version.
	ErrAlreadyPublished = errors.New("content type already published")
)

// APIError is a non-2xx response from the management API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// ID is the error identifier from the response body, e.g. "NotFound" or
	// "AccessTokenInvalid".
	ID        string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s returned HTTP %d", e.Method, e.Path, e.StatusCode)
	if e.ID != "" {
		msg += " (" + e.ID + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is lets errors.Is match APIErrors against the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// IsNotFound reports whether err is a 404 from the management API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether err is a 401 or 403 from the management API.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
