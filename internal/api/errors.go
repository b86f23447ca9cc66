package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidURL means the endpoint did not resolve to an absolute http(s) URL.
	ErrInvalidURL = errors.New("Invalid URL")
	// ErrNoResponseBody means the exchange completed with an empty payload.
	ErrNoResponseBody = errors.New("No data received from server")
	// ErrDecodeFailed means a 2xx payload did not match the expected envelope
	// and carried no recognizable error message.
	ErrDecodeFailed = errors.New("Failed to decode response")
	// ErrEncodeBody means the JSON request body could not be marshaled.
	ErrEncodeBody = errors.New("failed to encode request body")
	// ErrNotLoggedIn is returned by callers that require a stored session token.
	ErrNotLoggedIn = errors.New("not logged in")
)

// ServerError carries the message extracted from a server response. Error
// returns the message verbatim so it can be shown to users as-is.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// TransportError wraps a connection, DNS, TLS, or body read failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// EnvelopeError is a decoded 2xx envelope whose iserror flag is set.
type EnvelopeError struct {
	Status  int
	Message string
}

func (e *EnvelopeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request rejected (status %d)", e.Status)
	}
	return e.Message
}

// ErrorKind classifies errors returned by the client core.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidURL
	KindNoResponseBody
	KindDecodeFailed
	KindServer
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindNoResponseBody:
		return "no_response_body"
	case KindDecodeFailed:
		return "decode_failed"
	case KindServer:
		return "server"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Kind returns the classification of err.
func Kind(err error) ErrorKind {
	var serverErr *ServerError
	var transportErr *TransportError
	var envelopeErr *EnvelopeError
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidURL):
		return KindInvalidURL
	case errors.Is(err, ErrNoResponseBody):
		return KindNoResponseBody
	case errors.Is(err, ErrDecodeFailed):
		return KindDecodeFailed
	case errors.As(err, &serverErr), errors.As(err, &envelopeErr):
		return KindServer
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}

// IsTransportError checks if the error is a transport failure.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsUnauthorized checks if the server rejected the request as unauthenticated.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsNotFoundError checks if the server reported a missing resource.
func IsNotFoundError(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

func statusOf(err error) int {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.StatusCode
	}
	var envelopeErr *EnvelopeError
	if errors.As(err, &envelopeErr) {
		return envelopeErr.Status
	}
	return 0
}
