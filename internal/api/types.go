package api

// HealthResponse reports overall gateway health plus per-backend
// availability. Status is "ok" whenever the daemon is serving, even if
// some backends are unavailable.
type HealthResponse struct {
	Status   string          `json:"status"`
	Backends map[string]bool `json:"backends"`
}

// BackendStatus describes one backend probe outcome.
type BackendStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

// PreflightResult mirrors a single startup readiness check.
type PreflightResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// StatusResponse is the detailed daemon status view.
type StatusResponse struct {
	Version          string            `json:"version"`
	PID              int               `json:"pid"`
	Uptime           string            `json:"uptime"`
	Workers          int               `json:"workers"`
	SupportedFormats []string          `json:"supportedFormats"`
	Backends         []BackendStatus   `json:"backends"`
	Preflight        []PreflightResult `json:"preflight"`
	JournalEnabled   bool              `json:"journalEnabled"`
}

// HistoryEntry is one journaled conversion.
type HistoryEntry struct {
	ID           int64  `json:"id"`
	RequestID    string `json:"requestId"`
	SourceFormat string `json:"sourceFormat"`
	Backend      string `json:"backend"`
	Filename     string `json:"filename,omitempty"`
	Opset        int    `json:"opset"`
	Outcome      string `json:"outcome"`
	Detail       string `json:"detail,omitempty"`
	InputBytes   int64  `json:"inputBytes"`
	OutputBytes  int64  `json:"outputBytes"`
	DurationMS   int64  `json:"durationMs"`
	CreatedAt    string `json:"createdAt"`
}

// HistoryResponse wraps the journal listing.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}
