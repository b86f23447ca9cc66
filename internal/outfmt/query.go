package outfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/itchyny/gojq"
)

// WriteJSONFiltered writes v as JSON after applying query, if any. Slices are
// wrapped as {"items": [...]} so the top level is always an object.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	result, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	return WriteJSONMaybeCompact(w, result, compact)
}

// ApplyQuery converts v to plain JSON values and runs query over it. A query
// yielding a single value returns it directly; several values come back as a
// slice.
func ApplyQuery(v any, query string) (any, error) {
	v = wrapItems(v)
	query = strings.TrimSpace(query)
	if query == "" {
		return v, nil
	}

	data, err := toJSONValue(v)
	if err != nil {
		return nil, err
	}

	// Zsh escapes ! to \! even in single quotes, breaking !=.
	query = strings.ReplaceAll(query, `\!`, `!`)
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("invalid query expression: %w", err)
	}

	results, err := runQuery(parsed, data)
	if err != nil && strings.HasPrefix(query, ".[]") {
		// ".[] | ..." written against the bare list rather than the wrapper.
		if m, ok := data.(map[string]any); ok {
			if items, ok := m["items"].([]any); ok {
				if retry, retryErr := runQuery(parsed, items); retryErr == nil {
					results, err = retry, nil
				}
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

func runQuery(query *gojq.Query, data any) ([]any, error) {
	iter := query.Run(data)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			return results, nil
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("query error: %w", err)
		}
		results = append(results, v)
	}
}

// toJSONValue round-trips v through encoding/json so gojq only sees maps,
// slices, strings, float64, bool and nil.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func wrapItems(v any) any {
	if v == nil {
		return v
	}
	switch v.(type) {
	case []byte, json.RawMessage:
		return v
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return v
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return v
	}
	items := rv.Interface()
	// Nil slices would encode as null.
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		items = []any{}
	}
	return map[string]any{"items": items}
}
