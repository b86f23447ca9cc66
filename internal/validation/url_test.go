package validation

import (
	"strings"
	"testing"
)

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "https host", url: "https://api-test.bullionecosystem.com"},
		{name: "http localhost with port", url: "http://localhost:8080"},
		{name: "with path prefix", url: "https://example.com/bullion"},
		{name: "empty", url: "", wantErr: "cannot be empty"},
		{name: "whitespace", url: "   ", wantErr: "cannot be empty"},
		{name: "ftp scheme", url: "ftp://example.com", wantErr: "invalid URL scheme"},
		{name: "no scheme", url: "example.com", wantErr: "invalid URL scheme"},
		{name: "no host", url: "https://", wantErr: "hostname"},
		{name: "metadata ip", url: "http://169.254.169.254", wantErr: "metadata"},
		{name: "metadata host", url: "http://Metadata.Google.Internal", wantErr: "metadata"},
		{name: "query string", url: "https://example.com?x=1", wantErr: "query string"},
		{name: "bad escape", url: "https://example.com/%zz", wantErr: "invalid URL format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateBaseURL(%q) unexpected error: %v", tt.url, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateBaseURL(%q) expected error containing %q", tt.url, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("ValidateBaseURL(%q) error = %q, want substring %q", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestParseRequestURL(t *testing.T) {
	u, err := ParseRequestURL("https://example.com/api/v1/admin?offset=5&limit=5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Query().Get("offset") != "5" || u.Query().Get("limit") != "5" {
		t.Fatalf("unexpected query: %q", u.RawQuery)
	}

	for _, raw := range []string{"/api/v1/auth/login", "://bad", "mailto:a@b.c", "http:///path"} {
		if _, err := ParseRequestURL(raw); err == nil {
			t.Errorf("ParseRequestURL(%q) expected error", raw)
		}
	}
}
