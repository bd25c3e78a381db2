package convert

import "context"

// DefaultOpset is the interchange operator-set version assumed when a
// request does not declare one.
const DefaultOpset = 13

// Request is a single conversion call. It is constructed per request,
// owned by the handling path, and discarded when the call completes.
type Request struct {
	// Payload is the raw artifact; must be non-empty.
	Payload []byte
	// SourceFormat is the caller-supplied format token, matched
	// case-insensitively against the synonym table.
	SourceFormat string
	// Opset is the target operator-set version; 0 means DefaultOpset.
	Opset int
	// RequestID correlates log lines and journal entries.
	RequestID string
	// Filename is the uploaded file's name, for logging only.
	Filename string
}

// Strategy is a framework-specific conversion procedure. Implementations
// take raw artifact bytes plus a target opset and either return
// interchange bytes or a classified error. A strategy runs to completion
// once started; ctx carries correlation values, not cancellation.
type Strategy interface {
	Convert(ctx context.Context, payload []byte, opset int) ([]byte, error)
}
