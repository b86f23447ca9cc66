package api

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bullion/bullion-cli/internal/debug"
)

// DefaultTimeout bounds a single exchange.
const DefaultTimeout = 30 * time.Second

// Transport executes one HTTP exchange. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns an http.Client with a cloned default transport
// pinned to TLS 1.2 or newer.
func NewHTTPClient(timeout time.Duration) *http.Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	transport.TLSClientConfig.InsecureSkipVerify = false

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// send performs the exchange exactly once. Connection and body read failures
// are returned as *TransportError.
func (c *Client) send(ctx context.Context, out *OutgoingRequest) (int, []byte, error) {
	req, err := out.HTTPRequest(ctx)
	if err != nil {
		return 0, nil, err
	}

	start := time.Now()
	if debug.IsEnabled(ctx) {
		slog.Debug("request", "method", out.Method, "url", out.URL, "bytes", len(out.Body))
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", out.Method, "url", out.URL, "error", err)
		}
		return 0, nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Err: err}
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", out.Method, "url", out.URL, "status", resp.StatusCode, "duration", time.Since(start))
	}
	return resp.StatusCode, body, nil
}
