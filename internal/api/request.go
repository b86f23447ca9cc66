package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bullion/bullion-cli/internal/debug"
	"github.com/bullion/bullion-cli/internal/secrets"
	"github.com/bullion/bullion-cli/internal/validation"
)

// OutgoingRequest is a fully built request, ready to be sent once.
type OutgoingRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// HTTPRequest converts the request into an *http.Request bound to ctx.
func (r *OutgoingRequest) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = r.Header.Clone()
	return req, nil
}

// Build resolves the endpoint against the client base URL and produces the
// request. When mp is non-nil the body is multipart and body is ignored;
// otherwise a non-nil body is sent as JSON to endpoints that take one. The
// session token is read from the secret store on every call.
func (c *Client) Build(ctx context.Context, ep Endpoint, body map[string]any, mp *MultipartBody) (*OutgoingRequest, error) {
	method, rawURL := ep.Resolve(c.BaseURL)
	if _, err := validation.ParseRequestURL(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidURL, rawURL, err)
	}

	req := &OutgoingRequest{
		Method: method,
		URL:    rawURL,
		Header: make(http.Header),
	}

	if token := c.readToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	if mp != nil {
		boundary := c.boundary()
		encoded, err := EncodeMultipart(mp.Fields, mp.File, boundary)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
		req.Body = encoded
		return req, nil
	}

	req.Header.Set("Content-Type", "application/json")
	if body != nil && ep.ExpectsBody() {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncodeBody, err)
		}
		req.Body = encoded
	}
	return req, nil
}

func (c *Client) boundary() string {
	if c.NewBoundary != nil {
		return c.NewBoundary()
	}
	return NewBoundary()
}

// readToken returns the trimmed session token, or "" when none is stored or
// the store cannot be read.
func (c *Client) readToken(ctx context.Context) string {
	if c.Secrets == nil {
		return ""
	}
	token, err := c.Secrets.Read(secrets.Service, secrets.AccountToken)
	if err != nil {
		if !errors.Is(err, secrets.ErrNotFound) {
			slog.Warn("could not read session token; sending request without it", "error", err)
		} else if debug.IsEnabled(ctx) {
			slog.Debug("no session token stored")
		}
		return ""
	}
	return strings.TrimSpace(token)
}
