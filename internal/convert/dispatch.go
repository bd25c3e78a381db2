package convert

import (
	"fmt"
	"sort"
	"strings"
)

// Backend names. Each conversion strategy registers under exactly one.
const (
	BackendPyTorch    = "pytorch"
	BackendTensorFlow = "tensorflow"
	BackendSKLearn    = "sklearn"
)

// formatSynonyms maps every accepted source-format token to its backend.
// The table is static; lookups happen before any heavy work so unknown
// tokens fail fast and cheaply.
var formatSynonyms = map[string]string{
	"pytorch":    BackendPyTorch,
	"pt":         BackendPyTorch,
	"pth":        BackendPyTorch,
	"tensorflow": BackendTensorFlow,
	"tf":         BackendTensorFlow,
	"pb":         BackendTensorFlow,
	"sklearn":    BackendSKLearn,
	"pkl":        BackendSKLearn,
}

// NormalizeFormat applies the token normalization rules: trim whitespace,
// lowercase.
func NormalizeFormat(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// ResolveFormat maps a caller-supplied format token to a backend name.
// Unknown tokens yield a Bad-Request failure listing the supported set.
func ResolveFormat(token string) (string, error) {
	backend, ok := formatSynonyms[NormalizeFormat(token)]
	if !ok {
		return "", BadRequest("dispatch", fmt.Sprintf(
			"unsupported source_format %q; supported values: %s",
			token, strings.Join(SupportedFormats(), ", ")))
	}
	return backend, nil
}

// SupportedFormats returns every accepted token, sorted for determinism.
func SupportedFormats() []string {
	tokens := make([]string, 0, len(formatSynonyms))
	for token := range formatSynonyms {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Registry associates backends with their strategies.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry returns an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register binds a strategy to a backend name, replacing any previous binding.
func (r *Registry) Register(backend string, s Strategy) {
	r.strategies[backend] = s
}

// Lookup returns the strategy registered for a backend.
func (r *Registry) Lookup(backend string) (Strategy, bool) {
	s, ok := r.strategies[backend]
	return s, ok
}
