package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bullion/bullion-cli/internal/api"
	"github.com/bullion/bullion-cli/internal/resolve"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantContains []string
	}{
		{
			name:         "nil error",
			err:          nil,
			wantContains: []string{},
		},
		{
			name: "not logged in",
			err:  api.ErrNotLoggedIn,
			wantContains: []string{
				"Not logged in",
				"bullion auth login",
			},
		},
		{
			name: "401 server error",
			err:  &api.ServerError{StatusCode: 401, Message: "Invalid email or password"},
			wantContains: []string{
				"Request failed: Invalid email or password",
				"session may have expired",
			},
		},
		{
			name: "404 server error",
			err:  &api.ServerError{StatusCode: 404, Message: "User not found"},
			wantContains: []string{
				"User not found",
				"bullion users list",
			},
		},
		{
			name: "401 envelope error",
			err:  fmt.Errorf("list users: %w", &api.EnvelopeError{Status: 401, Message: "Token expired"}),
			wantContains: []string{
				"Request failed: Token expired",
				"bullion auth login",
			},
		},
		{
			name: "wrapped 404 server error",
			err:  fmt.Errorf("get user: %w", &api.ServerError{StatusCode: 404, Message: "User not found"}),
			wantContains: []string{
				"Request failed: User not found",
				"The user doesn't exist",
			},
		},
		{
			name: "422 server error",
			err:  &api.ServerError{StatusCode: 422, Message: "Email and password are required"},
			wantContains: []string{
				"Validation failed",
			},
		},
		{
			name: "500 server error",
			err:  &api.ServerError{StatusCode: 500, Message: "Server returned 500"},
			wantContains: []string{
				"Server returned 500",
				"not your fault",
			},
		},
		{
			name: "envelope error",
			err:  &api.EnvelopeError{Status: 403, Message: "Admins only"},
			wantContains: []string{
				"Request failed: Admins only",
				"permission",
			},
		},
		{
			name: "decode failure hides schema detail",
			err:  fmt.Errorf("%w: missing key data", api.ErrDecodeFailed),
			wantContains: []string{
				"Request failed:",
				"--debug",
			},
		},
		{
			name: "no response body",
			err:  api.ErrNoResponseBody,
			wantContains: []string{
				"Request failed:",
				"--base-url",
			},
		},
		{
			name: "invalid url",
			err:  fmt.Errorf("%w: missing host", api.ErrInvalidURL),
			wantContains: []string{
				"Invalid URL",
				"BULLION_BASE_URL",
			},
		},
		{
			name: "ambiguous name",
			err: &resolve.AmbiguousError{Query: "sam", Matches: []resolve.Match{
				{ID: "a1", Name: "Sam One"},
				{ID: "b2", Name: "Sam Two"},
			}},
			wantContains: []string{
				"ambiguous match for \"sam\"",
				"a1: Sam One",
				"Pass the user ID",
			},
		},
		{
			name: "connection refused",
			err:  &api.TransportError{Err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused")},
			wantContains: []string{
				"Connection refused",
				"bullion auth status",
			},
		},
		{
			name: "dns failure",
			err:  &api.TransportError{Err: errors.New("dial tcp: lookup api.invalid: no such host")},
			wantContains: []string{
				"DNS resolution failed",
			},
		},
		{
			name: "other transport failure",
			err:  &api.TransportError{Err: errors.New("unexpected EOF")},
			wantContains: []string{
				"unexpected EOF",
				"--timeout",
			},
		},
		{
			name: "generic error",
			err:  errors.New("something went wrong"),
			wantContains: []string{
				"Error: something went wrong",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HandleError(tt.err)

			if tt.err == nil {
				if result != "" {
					t.Errorf("HandleError(nil) = %q, want empty string", result)
				}
				return
			}

			for _, want := range tt.wantContains {
				if !strings.Contains(result, want) {
					t.Errorf("HandleError() result missing %q\nGot: %s", want, result)
				}
			}
		})
	}
}

func TestHandleError_DecodeFailureOmitsCause(t *testing.T) {
	result := HandleError(fmt.Errorf("%w: missing key data", api.ErrDecodeFailed))
	if strings.Contains(result, "missing key data") {
		t.Errorf("decode detail should stay in debug output, got %q", result)
	}
}
