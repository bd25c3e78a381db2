package daemon

import (
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"onnxgate/internal/convert"
	"onnxgate/internal/journal"
	"onnxgate/internal/logging"
	"onnxgate/internal/metrics"
)

// handleConvert accepts a multipart upload (file, source_format, and an
// optional opset) and responds with the converted model as an
// octet-stream attachment.
func (s *apiServer) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	if !s.daemon.limiter.Allow(clientKey(r), time.Now()) {
		s.daemon.metrics.ObserveRateLimited()
		s.writeError(w, http.StatusTooManyRequests, "too many requests", "")
		return
	}

	maxBytes := s.daemon.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error(), "")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field", "")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read upload: "+err.Error(), "")
		return
	}

	sourceFormat := r.FormValue("source_format")

	opset := 0
	if raw := strings.TrimSpace(r.FormValue("opset")); raw != "" {
		opset, err = strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid opset: "+raw, "")
			return
		}
	}
	if opset == 0 {
		opset = s.daemon.cfg.Converter.DefaultOpset
	}

	requestID, _ := convert.RequestIDFromContext(r.Context())
	req := convert.Request{
		Payload:      payload,
		SourceFormat: sourceFormat,
		Opset:        opset,
		RequestID:    requestID,
		Filename:     header.Filename,
	}

	start := time.Now()
	converted, err := s.daemon.service.Convert(r.Context(), req)
	elapsed := time.Since(start)

	backendName, resolveErr := convert.ResolveFormat(sourceFormat)
	if resolveErr != nil {
		backendName = ""
	}
	format := convert.NormalizeFormat(sourceFormat)

	if err != nil {
		outcome := metrics.OutcomeRejected
		if convert.HTTPStatus(err) == http.StatusInternalServerError {
			outcome = metrics.OutcomeFailed
		}
		s.daemon.metrics.ObserveConversion(format, outcome, len(payload), elapsed)
		s.recordConversion(r, req, backendName, outcome, err, 0, elapsed)
		s.writeFailure(w, err)
		return
	}

	s.daemon.metrics.ObserveConversion(format, metrics.OutcomeSuccess, len(payload), elapsed)
	s.recordConversion(r, req, backendName, metrics.OutcomeSuccess, nil, len(converted), elapsed)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename=model.onnx`)
	w.Header().Set("Content-Length", strconv.Itoa(len(converted)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(converted); err != nil {
		s.log().Warn("failed to stream converted model", logging.Error(err))
	}
}

func (s *apiServer) recordConversion(r *http.Request, req convert.Request, backendName, outcome string, convErr error, outputBytes int, elapsed time.Duration) {
	detail := ""
	if convErr != nil {
		detail, _ = convert.Details(convErr)
	}
	entry := journal.Entry{
		RequestID:    req.RequestID,
		SourceFormat: convert.NormalizeFormat(req.SourceFormat),
		Backend:      backendName,
		Filename:     req.Filename,
		Opset:        req.Opset,
		Outcome:      outcome,
		Detail:       detail,
		InputBytes:   int64(len(req.Payload)),
		OutputBytes:  int64(outputBytes),
		Duration:     elapsed,
	}
	if err := s.daemon.journal.Record(r.Context(), entry); err != nil {
		s.log().Warn("failed to journal conversion", logging.Error(err))
	}
}

// clientKey buckets rate limiting by remote address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
