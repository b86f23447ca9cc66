package outfmt

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// Formatter handles output formatting for commands.
type Formatter struct {
	ctx       context.Context
	out       io.Writer
	errOut    io.Writer
	tabWriter *tabwriter.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{
		ctx:       ctx,
		out:       out,
		errOut:    errOut,
		tabWriter: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0),
	}
}

// Output writes data in the context's JSON mode. In text mode it does
// nothing; callers render tables themselves.
func (f *Formatter) Output(data any) error {
	switch ModeFromContext(f.ctx) {
	case JSON:
		return WriteJSONFiltered(f.out, data, GetQuery(f.ctx), IsCompact(f.ctx))
	case JSONL:
		result, err := ApplyQuery(data, GetQuery(f.ctx))
		if err != nil {
			return err
		}
		plain, err := toJSONValue(result)
		if err != nil {
			return err
		}
		return writeLines(f.out, plain)
	default:
		return nil
	}
}

// writeLines writes one compact JSON document per item. Results wrapped as
// {"items": [...]} and plain arrays are expanded.
func writeLines(w io.Writer, v any) error {
	items, ok := v.([]any)
	if !ok {
		if m, isMap := v.(map[string]any); isMap && len(m) == 1 {
			items, ok = m["items"].([]any)
		}
	}
	if !ok {
		return WriteJSONMaybeCompact(w, v, true)
	}
	for _, item := range items {
		if err := WriteJSONMaybeCompact(w, item, true); err != nil {
			return err
		}
	}
	return nil
}

// StartTable writes table headers. Returns true if in text mode.
func (f *Formatter) StartTable(headers ...string) bool {
	if IsJSON(f.ctx) {
		return false
	}
	f.Row(headers...)
	return true
}

// Row writes a single row to the table.
func (f *Formatter) Row(columns ...string) {
	for i, col := range columns {
		if i > 0 {
			_, _ = fmt.Fprint(f.tabWriter, "\t")
		}
		_, _ = fmt.Fprint(f.tabWriter, col)
	}
	_, _ = fmt.Fprintln(f.tabWriter)
}

// EndTable flushes the table output.
func (f *Formatter) EndTable() error {
	return f.tabWriter.Flush()
}

// Empty writes a message to stderr indicating no results.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}
