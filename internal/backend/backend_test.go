package backend

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"onnxgate/internal/config"
	"onnxgate/internal/convert"
)

func TestDetect_NeverFails(t *testing.T) {
	probes := []Probe{
		{Name: "good", Check: func() error { return nil }},
		{Name: "bad", Check: func() error { return errors.New("tool missing") }},
	}
	statuses := Detect(probes, nil)
	if len(statuses) != 2 {
		t.Fatalf("statuses = %+v", statuses)
	}
	if !statuses[0].Available || statuses[0].Detail != "" {
		t.Fatalf("good probe = %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatalf("bad probe = %+v", statuses[1])
	}
	if statuses[1].Detail != "tool missing" {
		t.Fatalf("detail = %q", statuses[1].Detail)
	}
}

func TestToAvailability(t *testing.T) {
	m := ToAvailability([]Status{
		{Name: "pytorch", Available: true},
		{Name: "tensorflow", Available: false},
	})
	if !m["pytorch"] || m["tensorflow"] {
		t.Fatalf("availability = %v", m)
	}
	if m["sklearn"] {
		t.Fatal("unknown backend should read as unavailable")
	}
}

func TestDefaultProbes_InProcessBackends(t *testing.T) {
	cfg := config.Default()
	// Point the converter at a binary guaranteed to be absent.
	cfg.Converter.TensorFlowCommand = "definitely-not-a-real-converter-binary"

	statuses := Detect(DefaultProbes(&cfg), nil)
	m := ToAvailability(statuses)
	if !m[convert.BackendPyTorch] {
		t.Fatal("pytorch self-check should pass")
	}
	if !m[convert.BackendSKLearn] {
		t.Fatal("sklearn self-check should pass")
	}
	if m[convert.BackendTensorFlow] {
		t.Fatal("tensorflow should be unavailable without its converter")
	}
}

func TestDefaultProbes_TensorFlowOnPath(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "stub-converter")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	cfg := config.Default()
	cfg.Converter.TensorFlowCommand = "stub-converter --flag"

	m := ToAvailability(Detect(DefaultProbes(&cfg), nil))
	if !m[convert.BackendTensorFlow] {
		t.Fatal("tensorflow should be available with the converter on PATH")
	}
}
