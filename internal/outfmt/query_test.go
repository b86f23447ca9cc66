package outfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type row struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

var rows = []row{{ID: "1", Email: "ana@example.com"}, {ID: "2", Email: "bo@example.com"}}

func TestWriteJSONFiltered_WrapsSlice(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONFiltered(&buf, rows, "", true); err != nil {
		t.Fatal(err)
	}
	want := `{"items":[{"_id":"1","email":"ana@example.com"},{"_id":"2","email":"bo@example.com"}]}` + "\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteJSONFiltered_NilSlice(t *testing.T) {
	var buf bytes.Buffer
	var empty []row
	if err := WriteJSONFiltered(&buf, empty, "", true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"items\":[]}\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteJSONFiltered_WithQuery(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONFiltered(&buf, rows, "[.items[].email]", true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[\"ana@example.com\",\"bo@example.com\"]\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestApplyQuery_RootArrayFallsBackToItems(t *testing.T) {
	got, err := ApplyQuery(rows, ".[] | ._id")
	if err != nil {
		t.Fatal(err)
	}
	if ids, ok := got.([]any); !ok || len(ids) != 2 || ids[0] != "1" {
		t.Errorf("got %#v", got)
	}
}

func TestApplyQuery_ShellEscapedNotEqual(t *testing.T) {
	got, err := ApplyQuery(rows, `[.items[] | select(._id \!= "1") | .email]`)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(got)
	if string(data) != `["bo@example.com"]` {
		t.Errorf("got %s", data)
	}
}

func TestApplyQuery_SingleObject(t *testing.T) {
	got, err := ApplyQuery(&rows[0], ".email")
	if err != nil {
		t.Fatal(err)
	}
	if got != "ana@example.com" {
		t.Errorf("got %#v", got)
	}
}

func TestApplyQuery_InvalidQuery(t *testing.T) {
	_, err := ApplyQuery(rows, ".items[")
	if err == nil || !strings.Contains(err.Error(), "invalid query expression") {
		t.Fatalf("err = %v", err)
	}
	_, err = ApplyQuery(map[string]any{"a": 1}, ".a.b")
	if err == nil || !strings.Contains(err.Error(), "query error") {
		t.Fatalf("err = %v", err)
	}
}

func TestWrapItems_Passthrough(t *testing.T) {
	raw := json.RawMessage(`[1]`)
	if got := wrapItems(raw); string(got.(json.RawMessage)) != "[1]" {
		t.Error("raw JSON must not be wrapped")
	}
	if got := wrapItems([]byte("x")); string(got.([]byte)) != "x" {
		t.Error("byte slices must not be wrapped")
	}
	m := map[string]int{"a": 1}
	if got := wrapItems(m); got.(map[string]int)["a"] != 1 {
		t.Error("maps must not be wrapped")
	}
	if wrapItems(nil) != nil {
		t.Error("nil stays nil")
	}
}
