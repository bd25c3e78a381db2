package tensorflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"onnxgate/internal/convert"
)

// writeStub creates an executable shell script standing in for the
// external converter.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-converter.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestConverter(t *testing.T, stub string, timeout time.Duration) *Converter {
	t.Helper()
	return New(Config{
		Command:    []string{stub},
		Timeout:    timeout,
		ScratchDir: t.TempDir(),
	}, nil)
}

// findOutput extracts the --output argument in stub scripts.
const findOutput = `
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--output" ]; then out="$2"; shift; fi
  shift
done
`

func TestConvert_Success(t *testing.T) {
	stub := writeStub(t, findOutput+`printf 'converted-bytes' > "$out"`)
	c := newTestConverter(t, stub, 10*time.Second)

	data, err := c.Convert(context.Background(), []byte("graph-def"), 13)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "converted-bytes" {
		t.Fatalf("data = %q", data)
	}
}

func TestConvert_StagesSavedModel(t *testing.T) {
	// The stub proves the upload landed at saved_model/saved_model.pb by
	// copying it to the output path.
	stub := writeStub(t, `
model=""
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--saved-model" ]; then model="$2"; shift; fi
  if [ "$1" = "--output" ]; then out="$2"; shift; fi
  shift
done
cp "$model/saved_model.pb" "$out"
`)
	c := newTestConverter(t, stub, 10*time.Second)

	data, err := c.Convert(context.Background(), []byte("the-graph"), 13)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "the-graph" {
		t.Fatalf("staged payload = %q", data)
	}
}

func TestConvert_FailureSurfacesDiagnostic(t *testing.T) {
	stub := writeStub(t, `echo "ValueError: unable to freeze graph" >&2; exit 1`)
	c := newTestConverter(t, stub, 10*time.Second)

	_, err := c.Convert(context.Background(), []byte("bad"), 13)
	if !errors.Is(err, convert.ErrUnprocessable) {
		t.Fatalf("expected unprocessable, got %v", err)
	}
	msg, _ := convert.Details(err)
	if !strings.Contains(msg, "tensorflow conversion failed") {
		t.Fatalf("message = %q", msg)
	}
	if !strings.Contains(msg, "unable to freeze graph") {
		t.Fatalf("diagnostic missing: %q", msg)
	}
}

func TestConvert_DiagnosticTruncated(t *testing.T) {
	// Emit well over the diagnostic cap.
	stub := writeStub(t, `i=0
while [ $i -lt 200 ]; do
  echo "line $i: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" >&2
  i=$((i+1))
done
exit 1`)
	c := newTestConverter(t, stub, 10*time.Second)

	_, err := c.Convert(context.Background(), []byte("bad"), 13)
	if !errors.Is(err, convert.ErrUnprocessable) {
		t.Fatalf("expected unprocessable, got %v", err)
	}
	msg, _ := convert.Details(err)
	if !strings.HasSuffix(msg, "... (truncated)") {
		t.Fatalf("expected truncation marker, got tail %q", msg[len(msg)-40:])
	}
	prefix := "tensorflow conversion failed: "
	if len(msg) > len(prefix)+maxDiagnostic+len("... (truncated)") {
		t.Fatalf("diagnostic not capped: %d chars", len(msg))
	}
}

func TestConvert_SilentSuccessIsInternal(t *testing.T) {
	stub := writeStub(t, `exit 0`)
	c := newTestConverter(t, stub, 10*time.Second)

	_, err := c.Convert(context.Background(), []byte("graph"), 13)
	if !errors.Is(err, convert.ErrInternal) {
		t.Fatalf("expected internal, got %v", err)
	}
	msg, _ := convert.Details(err)
	if !strings.Contains(msg, "produced no output") {
		t.Fatalf("message = %q", msg)
	}
}

func TestConvert_Timeout(t *testing.T) {
	stub := writeStub(t, `sleep 5`)
	c := newTestConverter(t, stub, 100*time.Millisecond)

	start := time.Now()
	_, err := c.Convert(context.Background(), []byte("graph"), 13)
	if !errors.Is(err, convert.ErrUnprocessable) {
		t.Fatalf("expected unprocessable, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatal("timeout did not bound the subprocess")
	}
	msg, _ := convert.Details(err)
	if !strings.Contains(msg, "timed out") {
		t.Fatalf("message = %q", msg)
	}
}

func TestConvert_ScratchAlwaysRemoved(t *testing.T) {
	scratch := t.TempDir()
	stub := writeStub(t, `exit 1`)
	c := New(Config{
		Command:    []string{stub},
		Timeout:    10 * time.Second,
		ScratchDir: scratch,
	}, nil)

	_, _ = c.Convert(context.Background(), []byte("graph"), 13)

	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch not cleaned: %v", entries)
	}
}

func TestConvert_OpsetForwarded(t *testing.T) {
	stub := writeStub(t, `
out=""
opset=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--output" ]; then out="$2"; shift; fi
  if [ "$1" = "--opset" ]; then opset="$2"; shift; fi
  shift
done
printf '%s' "$opset" > "$out"
`)
	c := newTestConverter(t, stub, 10*time.Second)

	data, err := c.Convert(context.Background(), []byte("graph"), 17)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "17" {
		t.Fatalf("opset forwarded as %q", data)
	}
}
