// Package validation checks user-supplied URLs before they reach the API client.
//
// Base URLs come from flags, the environment, or a .env file, so they are
// validated once at resolution time. Cloud metadata hosts are always rejected;
// everything else with an http or https scheme and a hostname is accepted,
// since the Bullion API is commonly run on localhost during development.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// metadataHosts are cloud instance metadata endpoints that must never be
// used as an API base URL.
var metadataHosts = []string{
	"169.254.169.254",
	"metadata.google.internal",
	"metadata.goog",
	"100.100.100.200",
	"fd00:ec2::254",
}

// ValidateBaseURL validates an API base URL.
// It checks that the URL:
//   - Is not empty
//   - Uses http or https scheme
//   - Contains a hostname
//   - Does not target a cloud metadata endpoint
//   - Carries no query string or fragment, since paths are appended to it
func ValidateBaseURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsedURL.Scheme)
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must contain a hostname")
	}

	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}

	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return fmt.Errorf("base URL must not contain a query string or fragment")
	}

	return nil
}

// ParseRequestURL parses a fully resolved request URL and requires an
// absolute http(s) URL with a host.
func ParseRequestURL(rawURL string) (*url.URL, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	return parsedURL, nil
}

func isCloudMetadata(hostname string) bool {
	lowercase := strings.ToLower(strings.Trim(hostname, "[]"))
	for _, host := range metadataHosts {
		if lowercase == host {
			return true
		}
	}
	return false
}
