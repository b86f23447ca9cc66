// Package dryrun previews write requests without sending them.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// Form fields whose values are never printed.
var sensitiveFields = map[string]bool{
	"password": true,
}

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview describes a request that would have been sent.
type Preview struct {
	Operation  string            `json:"operation"`
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Fields     map[string]string `json:"fields,omitempty"`
	PhotoBytes int               `json:"photo_bytes,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// Masked returns a copy of p with sensitive field values replaced.
func (p Preview) Masked() Preview {
	if len(p.Fields) == 0 {
		return p
	}
	fields := make(map[string]string, len(p.Fields))
	for k, v := range p.Fields {
		if sensitiveFields[k] {
			v = strings.Repeat("*", 8)
		}
		fields[k] = v
	}
	p.Fields = fields
	return p
}

// Write outputs the masked preview to w.
func (p Preview) Write(w io.Writer) {
	p = p.Masked()
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would %s\n", p.Operation)
	_, _ = fmt.Fprintf(w, "  %s %s\n", p.Method, p.URL)

	if len(p.Fields) > 0 {
		keys := make([]string, 0, len(p.Fields))
		for k := range p.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", k, p.Fields[k])
		}
	}
	if p.PhotoBytes > 0 {
		_, _ = fmt.Fprintf(w, "  photo: %d bytes (image/jpeg)\n", p.PhotoBytes)
	}

	for _, warning := range p.Warnings {
		_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
	}

	_, _ = fmt.Fprintln(w, "No changes made (dry-run mode)")
}
