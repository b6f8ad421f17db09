package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrUnauthorized     = errors.New("Authentication failed. Please log in again.")
	ErrForbidden        = errors.New("Not authorized. Please check your permissions.")
	ErrNotFound         = errors.New("Resource not found. Please check the request.")
	ErrUnexpected       = errors.New("An unexpected error occurred")
	ErrMissingAuth      = errors.New("Missing authentication. Please log in again.")
	ErrMissingTokens    = errors.New("Invalid response from server: missing authentication tokens")
	ErrMissingStripeURL = errors.New("Invalid response from server: missing Stripe URL")
)

// APIError is a failure reported by the server with its own message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// translate maps a non-2xx response to the error shown to the user. A server
// supplied message always wins over the status-based defaults.
func translate(statusCode int, body []byte) error {
	var payload errorResponse
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return &APIError{StatusCode: statusCode, Message: payload.Message}
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}

	return &APIError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("Request failed with status code %d", statusCode),
	}
}

// TransportError reports a request that never produced a response, such as
// a refused connection or a timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func transportError(err error) error {
	if err == nil || err.Error() == "" {
		return ErrUnexpected
	}
	return &TransportError{Err: err}
}
