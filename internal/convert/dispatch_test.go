package convert

import (
	"errors"
	"sort"
	"strings"
	"testing"
)

func TestResolveFormat_Synonyms(t *testing.T) {
	cases := map[string]string{
		"pytorch":    BackendPyTorch,
		"pt":         BackendPyTorch,
		"pth":        BackendPyTorch,
		"tensorflow": BackendTensorFlow,
		"tf":         BackendTensorFlow,
		"pb":         BackendTensorFlow,
		"sklearn":    BackendSKLearn,
		"pkl":        BackendSKLearn,
	}
	for token, want := range cases {
		got, err := ResolveFormat(token)
		if err != nil {
			t.Fatalf("ResolveFormat(%q): %v", token, err)
		}
		if got != want {
			t.Fatalf("ResolveFormat(%q) = %q, want %q", token, got, want)
		}
	}
}

func TestResolveFormat_CaseAndWhitespace(t *testing.T) {
	for _, token := range []string{"PyTorch", "  PT  ", "TF\t", "SKLEARN", " Pkl "} {
		if _, err := ResolveFormat(token); err != nil {
			t.Fatalf("ResolveFormat(%q): %v", token, err)
		}
	}
}

func TestResolveFormat_Unknown(t *testing.T) {
	_, err := ResolveFormat("onnx")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected bad-request classification, got %v", err)
	}
	msg, _ := Details(err)
	if !strings.Contains(msg, `"onnx"`) {
		t.Fatalf("message should quote the rejected token: %s", msg)
	}
	// Every supported token must appear, in sorted order.
	joined := strings.Join(SupportedFormats(), ", ")
	if !strings.Contains(msg, joined) {
		t.Fatalf("message should list the supported set %q: %s", joined, msg)
	}
}

func TestSupportedFormats_Sorted(t *testing.T) {
	formats := SupportedFormats()
	if len(formats) != 8 {
		t.Fatalf("expected 8 tokens, got %d: %v", len(formats), formats)
	}
	if !sort.StringsAreSorted(formats) {
		t.Fatalf("formats not sorted: %v", formats)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup(BackendPyTorch); ok {
		t.Fatal("empty registry should have no strategies")
	}
	s := strategyFunc(func() ([]byte, error) { return []byte("x"), nil })
	r.Register(BackendPyTorch, s)
	if _, ok := r.Lookup(BackendPyTorch); !ok {
		t.Fatal("registered strategy not found")
	}
}
