package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"

	"onnxgate/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckConverterCommand(cfg.TensorFlowConverterArgv()))

	if cfg.Journal.Enabled {
		results = append(results, CheckDirectoryAccess("Journal directory", filepath.Dir(cfg.Journal.Path)))
	}

	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckConverterCommand verifies the external SavedModel converter is on PATH.
func CheckConverterCommand(argv []string) Result {
	const name = "TensorFlow converter"
	if len(argv) == 0 {
		return Result{Name: name, Detail: "no command configured"}
	}
	resolved, err := exec.LookPath(argv[0])
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH", argv[0])}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}
