package debug

import (
	"strings"
	"testing"
)

func TestTruncateStrings(t *testing.T) {
	long := strings.Repeat("a", 150)
	input := map[string]any{
		"short":  "ok",
		"long":   long,
		"number": 5.0,
		"nested": map[string]any{"photo": long},
		"users": []any{
			map[string]any{"photo": long, "name": "Ana"},
		},
		"tags": []any{long, "x"},
	}

	got := TruncateStrings(input, MaxLoggedString)

	want := strings.Repeat("a", 100) + "..."
	if got["short"] != "ok" {
		t.Errorf("short = %v", got["short"])
	}
	if got["long"] != want {
		t.Errorf("long was not truncated: %v", got["long"])
	}
	if got["number"] != 5.0 {
		t.Errorf("number = %v", got["number"])
	}
	if nested := got["nested"].(map[string]any); nested["photo"] != want {
		t.Errorf("nested photo was not truncated")
	}
	users := got["users"].([]any)
	if u := users[0].(map[string]any); u["photo"] != want || u["name"] != "Ana" {
		t.Errorf("users[0] = %v", u)
	}
	if tags := got["tags"].([]any); tags[0] != long {
		t.Error("arrays of plain strings are left alone")
	}
	if input["long"] != long {
		t.Error("input must not be modified")
	}
}

func TestTruncateStrings_CountsRunes(t *testing.T) {
	s := strings.Repeat("é", 101)
	got := TruncateStrings(map[string]any{"k": s}, 100)
	if got["k"] != strings.Repeat("é", 100)+"..." {
		t.Errorf("got %q", got["k"])
	}
	exact := strings.Repeat("é", 100)
	got = TruncateStrings(map[string]any{"k": exact}, 100)
	if got["k"] != exact {
		t.Errorf("strings at the limit are kept, got %q", got["k"])
	}
}
