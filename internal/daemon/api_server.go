package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"onnxgate/internal/api"
	"onnxgate/internal/config"
	"onnxgate/internal/convert"
	"onnxgate/internal/logging"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		bind = config.DefaultAPIBind
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/convert", srv.handleConvert)
	mux.HandleFunc("/api/history", srv.handleHistory)
	mux.Handle("/metrics", d.metrics.Handler())

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// withRequestID tags every request with an identifier that flows through
// logs, conversion errors, and journal entries. A client-supplied
// X-Request-ID is honored so callers can correlate retries.
func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(convert.WithRequestID(r.Context(), id)))
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	backends := make(map[string]bool, len(s.daemon.backends))
	for _, st := range s.daemon.Backends() {
		backends[st.Name] = st.Available
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:   "ok",
		Backends: backends,
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	backends := make([]api.BackendStatus, 0, len(s.daemon.backends))
	for _, st := range s.daemon.Backends() {
		backends = append(backends, api.BackendStatus{
			Name:      st.Name,
			Available: st.Available,
			Detail:    st.Detail,
		})
	}
	checks := make([]api.PreflightResult, 0, len(s.daemon.checks))
	for _, check := range s.daemon.Preflight() {
		checks = append(checks, api.PreflightResult{
			Name:   check.Name,
			Passed: check.Passed,
			Detail: check.Detail,
		})
	}

	s.writeJSON(w, http.StatusOK, api.StatusResponse{
		Version:          Version,
		PID:              os.Getpid(),
		Uptime:           s.daemon.Uptime().Round(time.Second).String(),
		Workers:          s.daemon.cfg.Converter.Workers,
		SupportedFormats: convert.SupportedFormats(),
		Backends:         backends,
		Preflight:        checks,
		JournalEnabled:   s.daemon.cfg.Journal.Enabled,
	})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil || limit <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit", "")
			return
		}
	}

	entries, err := s.daemon.journal.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	out := make([]api.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, api.HistoryEntry{
			ID:           entry.ID,
			RequestID:    entry.RequestID,
			SourceFormat: entry.SourceFormat,
			Backend:      entry.Backend,
			Filename:     entry.Filename,
			Opset:        entry.Opset,
			Outcome:      entry.Outcome,
			Detail:       entry.Detail,
			InputBytes:   entry.InputBytes,
			OutputBytes:  entry.OutputBytes,
			DurationMS:   entry.Duration.Milliseconds(),
			CreatedAt:    entry.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	s.writeJSON(w, http.StatusOK, api.HistoryResponse{Entries: out})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message, hint string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message, Hint: hint})
}

// writeFailure maps a classified conversion error onto the wire.
func (s *apiServer) writeFailure(w http.ResponseWriter, err error) {
	message, hint := convert.Details(err)
	s.writeError(w, convert.HTTPStatus(err), message, hint)
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.WithComponent(s.logger, "api-server")
	}
	return logging.NewNop()
}
