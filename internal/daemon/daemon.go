package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"onnxgate/internal/backend"
	"onnxgate/internal/config"
	"onnxgate/internal/convert"
	"onnxgate/internal/converters/pytorch"
	"onnxgate/internal/converters/sklearn"
	"onnxgate/internal/converters/tensorflow"
	"onnxgate/internal/journal"
	"onnxgate/internal/logging"
	"onnxgate/internal/metrics"
	"onnxgate/internal/preflight"
	"onnxgate/internal/ratelimit"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Daemon coordinates the conversion gateway services and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	service  *convert.Service
	pool     *convert.Pool
	backends []backend.Status
	journal  *journal.Store
	metrics  *metrics.Collector
	limiter  *ratelimit.Limiter
	checks   []preflight.Result

	api *apiServer

	lockPath  string
	lock      *flock.Flock
	startedAt time.Time

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. Backend probes
// run here, once; their results are fixed for the daemon's lifetime.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	statuses := backend.Detect(backend.DefaultProbes(cfg), logger)
	available := backend.ToAvailability(statuses)

	registry := convert.NewRegistry()
	registry.Register(convert.BackendPyTorch, pytorch.New(logger))
	registry.Register(convert.BackendTensorFlow, tensorflow.New(tensorflow.Config{
		Command:    cfg.TensorFlowConverterArgv(),
		Timeout:    time.Duration(cfg.Converter.TensorFlowTimeout) * time.Second,
		ScratchDir: cfg.Paths.ScratchDir,
	}, logger))
	registry.Register(convert.BackendSKLearn, sklearn.New(logger))

	pool := convert.NewPool(cfg.Converter.Workers, logger)
	service := convert.NewService(registry, pool, available, logger)

	var store *journal.Store
	if cfg.Journal.Enabled {
		var err error
		store, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "onnxgated.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		pool:     pool,
		backends: statuses,
		journal:  store,
		metrics:  metrics.NewCollector(),
		limiter:  ratelimit.New(cfg.API.RateLimitRPS, cfg.API.RateLimitBurst, 0),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, runs preflight checks, and brings up
// the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another onnxgate daemon instance is already running")
	}

	d.checks = preflight.RunAll(ctx, d.cfg)
	for _, check := range d.checks {
		if !check.Passed {
			d.logger.Warn("preflight check failed",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail),
			)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock. In-flight
// conversions drain through the pool before Close returns.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	d.pool.Close()
	return d.journal.Close()
}

// Backends returns the startup probe results.
func (d *Daemon) Backends() []backend.Status {
	return d.backends
}

// Preflight returns the startup readiness check results.
func (d *Daemon) Preflight() []preflight.Result {
	return d.checks
}

// Uptime reports how long the daemon has been serving.
func (d *Daemon) Uptime() time.Duration {
	if d.startedAt.IsZero() {
		return 0
	}
	return time.Since(d.startedAt)
}
