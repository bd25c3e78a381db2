package convert

import (
	"errors"
	"net/http"
	"strings"
)

// Classification markers. Every error leaving a strategy or the pool is
// tagged with exactly one of these; the response boundary maps them to
// status codes without ever reclassifying.
var (
	// ErrBadRequest marks malformed calls: unsupported format token,
	// empty artifact, invalid opset.
	ErrBadRequest = errors.New("bad request")
	// ErrNotImplemented marks requests for a backend that was unavailable
	// at probe time.
	ErrNotImplemented = errors.New("backend unavailable")
	// ErrUnprocessable marks artifacts that are well-formed requests but
	// semantically unusable: bad weights, missing shape info, converter
	// rejection.
	ErrUnprocessable = errors.New("unprocessable artifact")
	// ErrInternal marks contract violations and unexpected failures.
	ErrInternal = errors.New("internal error")
)

// Failure is a classified conversion error. Message is user-facing; Hint
// optionally names the fix for a known mistake; Cause retains the
// underlying error for server-side logs and errors.Is chains.
type Failure struct {
	Marker  error
	Op      string
	Message string
	Hint    string
	Cause   error
}

func (f *Failure) Error() string {
	parts := make([]string, 0, 3)
	if f.Marker != nil {
		parts = append(parts, f.Marker.Error())
	}
	if op := strings.TrimSpace(f.Op); op != "" {
		parts = append(parts, op)
	}
	if msg := strings.TrimSpace(f.Message); msg != "" {
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}

func (f *Failure) Unwrap() []error {
	errs := make([]error, 0, 2)
	if f.Marker != nil {
		errs = append(errs, f.Marker)
	}
	if f.Cause != nil {
		errs = append(errs, f.Cause)
	}
	return errs
}

// BadRequest builds a malformed-call failure.
func BadRequest(op, message string) error {
	return &Failure{Marker: ErrBadRequest, Op: op, Message: message}
}

// NotImplemented builds an unavailable-backend failure.
func NotImplemented(op, message string) error {
	return &Failure{Marker: ErrNotImplemented, Op: op, Message: message}
}

// Unprocessable builds a semantically-unusable-artifact failure. Hint may
// be empty; cause may be nil.
func Unprocessable(op, message, hint string, cause error) error {
	return &Failure{Marker: ErrUnprocessable, Op: op, Message: message, Hint: hint, Cause: cause}
}

// Internal builds a contract-violation or unexpected failure. The message
// is what the caller sees; cause carries the detail for server-side logs.
func Internal(op, message string, cause error) error {
	return &Failure{Marker: ErrInternal, Op: op, Message: message, Cause: cause}
}

// IsClassified reports whether err already carries one of the four
// classification markers.
func IsClassified(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrNotImplemented) ||
		errors.Is(err, ErrUnprocessable) ||
		errors.Is(err, ErrInternal)
}

// HTTPStatus maps a classified error to its response status code.
// Unclassified errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Details returns the stable user-facing (message, hint) pair for err.
func Details(err error) (message string, hint string) {
	var failure *Failure
	if errors.As(err, &failure) {
		message = strings.TrimSpace(failure.Message)
		hint = strings.TrimSpace(failure.Hint)
	}
	if message == "" && err != nil {
		message = err.Error()
	}
	return message, hint
}
