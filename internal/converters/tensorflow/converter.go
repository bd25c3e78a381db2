package tensorflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"onnxgate/internal/convert"
	"onnxgate/internal/logging"
)

// maxDiagnostic caps how much converter output is surfaced to callers.
const maxDiagnostic = 2000

// Config describes how the external converter is invoked.
type Config struct {
	// Command is the argv prefix of the converter, e.g.
	// ["python3", "-m", "tf2onnx.convert"].
	Command []string
	// Timeout is the wall-clock limit for one conversion.
	Timeout time.Duration
	// ScratchDir is where ephemeral staging directories are created.
	ScratchDir string
}

// Converter is the TensorFlow conversion strategy.
type Converter struct {
	cfg    Config
	logger *slog.Logger
}

// New constructs the strategy.
func New(cfg Config, logger *slog.Logger) *Converter {
	return &Converter{cfg: cfg, logger: logging.WithComponent(logger, "tensorflow-converter")}
}

// Convert stages the uploaded graph as a SavedModel directory, invokes
// the external converter against it, and returns the produced model
// bytes. The subprocess runs under its own deadline so an abandoned
// request cannot interrupt a conversion already in flight.
func (c *Converter) Convert(ctx context.Context, payload []byte, opset int) ([]byte, error) {
	if len(c.cfg.Command) == 0 {
		return nil, convert.Internal(convert.BackendTensorFlow,
			"no converter command is configured", nil)
	}

	scratch, err := os.MkdirTemp(c.cfg.ScratchDir, "tfconv-*")
	if err != nil {
		return nil, convert.Internal(convert.BackendTensorFlow,
			fmt.Sprintf("failed to create scratch directory: %v", err), err)
	}
	defer os.RemoveAll(scratch)

	modelDir := filepath.Join(scratch, "saved_model")
	if err := os.Mkdir(modelDir, 0o755); err != nil {
		return nil, convert.Internal(convert.BackendTensorFlow,
			fmt.Sprintf("failed to stage model: %v", err), err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "saved_model.pb"), payload, 0o644); err != nil {
		return nil, convert.Internal(convert.BackendTensorFlow,
			fmt.Sprintf("failed to stage model: %v", err), err)
	}
	outputPath := filepath.Join(scratch, "model.onnx")

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	// Deliberately not derived from the request context: once started,
	// a conversion runs to completion or to its own deadline.
	runCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := append([]string{}, c.cfg.Command[1:]...)
	args = append(args,
		"--saved-model", modelDir,
		"--output", outputPath,
		"--opset", strconv.Itoa(opset),
	)
	cmd := exec.CommandContext(runCtx, c.cfg.Command[0], args...)
	// Grandchildren can inherit the output pipes; don't let them hold
	// Wait open after the converter itself is gone.
	cmd.WaitDelay = time.Second

	start := time.Now()
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	log := logging.WithContext(ctx, c.logger)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			log.Warn("converter timed out", logging.Duration("elapsed", elapsed))
			return nil, convert.Unprocessable(convert.BackendTensorFlow,
				fmt.Sprintf("conversion timed out after %s", timeout), "", runCtx.Err())
		}
		diag := truncateDiagnostic(output)
		log.Warn("converter failed",
			logging.Duration("elapsed", elapsed),
			logging.String("diagnostic", diag),
		)
		return nil, convert.Unprocessable(convert.BackendTensorFlow,
			"tensorflow conversion failed: "+diag, "", err)
	}

	converted, err := os.ReadFile(outputPath)
	if err != nil {
		log.Error("converter produced no output", logging.Duration("elapsed", elapsed))
		return nil, convert.Internal(convert.BackendTensorFlow,
			"converter exited successfully but produced no output", err)
	}

	log.Debug("conversion completed",
		logging.Duration("elapsed", elapsed),
		logging.Int("output_bytes", len(converted)),
	)
	return converted, nil
}

// truncateDiagnostic trims subprocess output to a bounded, single-blob
// diagnostic suitable for an error message.
func truncateDiagnostic(output []byte) string {
	diag := strings.TrimSpace(string(output))
	if len(diag) > maxDiagnostic {
		diag = diag[:maxDiagnostic] + "... (truncated)"
	}
	if diag == "" {
		diag = "(no output)"
	}
	return diag
}
