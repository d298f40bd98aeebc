// Package errors provides typed API errors that map onto HTTP status codes.
package errors

import (
	"fmt"
	"net/http"
)

// APIError carries an HTTP status code alongside a public message and the
// underlying cause. Only the message is written to clients.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewBadRequestError creates an APIError for invalid input (400).
func NewBadRequestError(message string, err error) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Message: message, Err: err}
}

// NewUnauthorizedError creates an APIError for failed authorization (401).
func NewUnauthorizedError(message string, err error) *APIError {
	return &APIError{StatusCode: http.StatusUnauthorized, Message: message, Err: err}
}

// NewNotFoundError creates an APIError for a missing resource (404).
func NewNotFoundError(message string, err error) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Message: message, Err: err}
}

// NewConflictError creates an APIError for a resource that already exists (409).
func NewConflictError(message string, err error) *APIError {
	return &APIError{StatusCode: http.StatusConflict, Message: message, Err: err}
}

// NewInternalServerError creates an APIError for backend failures (500).
func NewInternalServerError(message string, err error) *APIError {
	return &APIError{StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}
