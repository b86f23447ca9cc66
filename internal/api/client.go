// Package api is the Bullion admin REST API client: endpoint catalog, request
// building, multipart encoding, and typed response interpretation.
package api

import (
	"context"

	"github.com/bullion/bullion-cli/internal/secrets"
)

// Client is the Bullion API client. It holds no per-request state; the only
// shared resource between concurrent calls is the secret store.
type Client struct {
	BaseURL   string
	HTTP      Transport
	Secrets   secrets.Store
	UserAgent string
	// NewBoundary overrides the multipart boundary generator.
	NewBoundary func() string
}

// New creates a Bullion API client using the hardened default HTTP client.
func New(baseURL string, store secrets.Store) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    NewHTTPClient(DefaultTimeout),
		Secrets: store,
	}
}

// Do performs one JSON exchange with ep and decodes the envelope into T.
func Do[T any](ctx context.Context, c *Client, ep Endpoint, body map[string]any) (*Envelope[T], error) {
	req, err := c.Build(ctx, ep, body, nil)
	if err != nil {
		return nil, err
	}
	return roundTrip[T](ctx, c, ep, req)
}

// DoMultipart performs one multipart/form-data exchange with ep.
func DoMultipart[T any](ctx context.Context, c *Client, ep Endpoint, fields map[string]string, file *FilePart) (*Envelope[T], error) {
	req, err := c.Build(ctx, ep, nil, &MultipartBody{Fields: fields, File: file})
	if err != nil {
		return nil, err
	}
	return roundTrip[T](ctx, c, ep, req)
}

func roundTrip[T any](ctx context.Context, c *Client, ep Endpoint, req *OutgoingRequest) (*Envelope[T], error) {
	status, body, err := c.send(ctx, req)
	if err == nil {
		logPayload(ctx, ep, status, body)
	}
	return Interpret[T](status, body, err)
}
