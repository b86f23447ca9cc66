package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents machine-readable error codes for scripted callers.
type ErrorCode string

const (
	// CodeInvalidURL indicates the request URL could not be built.
	CodeInvalidURL ErrorCode = "invalid_url"
	// CodeNoResponseBody indicates the server sent an empty payload.
	CodeNoResponseBody ErrorCode = "no_response_body"
	// CodeDecodeFailed indicates a success payload did not match the expected shape.
	CodeDecodeFailed ErrorCode = "decode_failed"
	// CodeBadRequest indicates a malformed request (HTTP 400).
	CodeBadRequest ErrorCode = "bad_request"
	// CodeUnauthorized indicates authentication is required or failed (HTTP 401).
	CodeUnauthorized ErrorCode = "unauthorized"
	// CodeForbidden indicates the admin lacks permission (HTTP 403).
	CodeForbidden ErrorCode = "forbidden"
	// CodeNotFound indicates the requested user does not exist (HTTP 404).
	CodeNotFound ErrorCode = "not_found"
	// CodeValidation indicates input validation failed (HTTP 422).
	CodeValidation ErrorCode = "validation_failed"
	// CodeServerError indicates an internal server error (HTTP 5xx).
	CodeServerError ErrorCode = "server_error"
	// CodeNetwork indicates a connection level failure.
	CodeNetwork ErrorCode = "network"
	// CodeNotLoggedIn indicates no session token is stored.
	CodeNotLoggedIn ErrorCode = "not_logged_in"
	// CodeUnknown indicates an unknown or unclassified error.
	CodeUnknown ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed on retry.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case CodeServerError, CodeNetwork, CodeNoResponseBody:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case CodeUnauthorized, CodeNotLoggedIn:
		return "Run 'bullion auth login' to authenticate"
	case CodeForbidden:
		return "Check your admin permissions"
	case CodeNotFound:
		return "Verify the user ID exists"
	case CodeValidation, CodeBadRequest:
		return "Check the input values"
	case CodeServerError:
		return "The server encountered an error; try again later"
	case CodeNetwork:
		return "Check network connectivity and the base URL"
	case CodeInvalidURL:
		return "Check BULLION_BASE_URL or --base-url"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return CodeBadRequest
	case 401:
		return CodeUnauthorized
	case 403:
		return CodeForbidden
	case 404:
		return CodeNotFound
	case 422:
		return CodeValidation
	default:
		if statusCode >= 500 && statusCode < 600 {
			return CodeServerError
		}
		return CodeUnknown
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// NewStructuredErrorWithContext creates a StructuredError with additional context.
func NewStructuredErrorWithContext(code ErrorCode, message string, ctx map[string]any) *StructuredError {
	err := NewStructuredError(code, message)
	err.Context = ctx
	return err
}

// StructuredErrorFromError converts any error to a StructuredError.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		code := ErrorCodeFromStatus(serverErr.StatusCode)
		if code == CodeUnknown {
			code = CodeBadRequest
		}
		return NewStructuredErrorWithContext(code, serverErr.Message, map[string]any{
			"status_code": serverErr.StatusCode,
		})
	}

	var envelopeErr *EnvelopeError
	if errors.As(err, &envelopeErr) {
		code := ErrorCodeFromStatus(envelopeErr.Status)
		if code == CodeUnknown {
			code = CodeBadRequest
		}
		return NewStructuredErrorWithContext(code, envelopeErr.Error(), map[string]any{
			"status": envelopeErr.Status,
		})
	}

	switch {
	case errors.Is(err, ErrNotLoggedIn):
		return NewStructuredError(CodeNotLoggedIn, err.Error())
	case errors.Is(err, ErrInvalidURL):
		return NewStructuredError(CodeInvalidURL, err.Error())
	case errors.Is(err, ErrNoResponseBody):
		return NewStructuredError(CodeNoResponseBody, ErrNoResponseBody.Error())
	case errors.Is(err, ErrDecodeFailed):
		return NewStructuredError(CodeDecodeFailed, ErrDecodeFailed.Error())
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return NewStructuredError(CodeNetwork, transportErr.Error())
	}

	return &StructuredError{
		Code:    CodeUnknown,
		Message: err.Error(),
	}
}
