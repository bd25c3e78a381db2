package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Service is the conversion entry point: it validates a request, selects
// exactly one strategy, gates on backend availability, and executes the
// strategy through the worker pool. It holds no mutable state beyond the
// availability mapping computed once at startup.
type Service struct {
	registry  *Registry
	pool      *Pool
	available map[string]bool
	logger    *slog.Logger
}

// NewService wires a conversion service. available is the read-only
// backend availability mapping from the startup probe.
func NewService(registry *Registry, pool *Pool, available map[string]bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		registry:  registry,
		pool:      pool,
		available: available,
		logger:    logger.With(slog.String("component", "convert")),
	}
}

// Available reports whether a backend passed its startup probe.
func (s *Service) Available(backend string) bool {
	return s.available[backend]
}

// Convert runs one conversion request to completion and returns the
// interchange bytes or a classified error. Validation order is fixed:
// format resolution, payload presence, opset, availability, and only then
// strategy execution — so cheap failures never reach the pool.
func (s *Service) Convert(ctx context.Context, req Request) ([]byte, error) {
	backend, err := ResolveFormat(req.SourceFormat)
	if err != nil {
		return nil, err
	}
	if len(req.Payload) == 0 {
		return nil, BadRequest("validate", "uploaded model artifact is empty")
	}
	opset := req.Opset
	if opset == 0 {
		opset = DefaultOpset
	}
	if opset < 1 {
		return nil, BadRequest("validate", fmt.Sprintf("opset must be a positive integer, got %d", opset))
	}
	if !s.available[backend] {
		return nil, NotImplemented(backend, fmt.Sprintf(
			"the %s backend is not available on this converter instance", backend))
	}
	strategy, ok := s.registry.Lookup(backend)
	if !ok {
		return nil, Internal(backend, "unexpected conversion failure",
			fmt.Errorf("no strategy registered for backend %q", backend))
	}

	ctx = WithBackend(ctx, backend)
	logger := s.logger
	if id, ok := RequestIDFromContext(ctx); ok {
		logger = logger.With(slog.String("request_id", id))
	}
	logger.Info("conversion started",
		slog.String("backend", backend),
		slog.String("source_format", NormalizeFormat(req.SourceFormat)),
		slog.Int("opset", opset),
		slog.Int("payload_bytes", len(req.Payload)),
		slog.String("filename", req.Filename),
	)

	started := time.Now()
	data, err := s.pool.Do(ctx, func(ctx context.Context) ([]byte, error) {
		return strategy.Convert(ctx, req.Payload, opset)
	})
	if err != nil {
		logger.Warn("conversion failed",
			slog.String("backend", backend),
			slog.Duration("elapsed", time.Since(started)),
			slog.Any("error", err),
		)
		return nil, err
	}

	logger.Info("conversion succeeded",
		slog.String("backend", backend),
		slog.Duration("elapsed", time.Since(started)),
		slog.Int("output_bytes", len(data)),
	)
	return data, nil
}
