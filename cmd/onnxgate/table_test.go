package main

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Backend", "Available", "Detail"},
		[][]string{
			{"pytorch", "yes", ""},
			{"tensorflow", "no", "converter not found"},
		},
	)
	for _, want := range []string{"pytorch", "tensorflow", "converter not found"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTable_ShortRowsPad(t *testing.T) {
	out := renderTable(
		[]string{"ID", "When", "Format"},
		[][]string{{"1"}},
		1,
	)
	if strings.Contains(out, "<nil>") {
		t.Fatalf("missing cells rendered as nil:\n%s", out)
	}
	if !strings.Contains(out, "1") {
		t.Fatalf("row cell missing:\n%s", out)
	}
}

func TestRenderTable_NoHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Fatalf("expected empty render, got %q", out)
	}
}
