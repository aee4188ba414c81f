// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("duplicate entry")
	ErrNotFound         = errors.New("resource not found")
	ErrAmbiguous        = errors.New("ambiguous match")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrUpstream         = errors.New("upstream failure")
)

const internalErrorMessage = "Internal server error"

// Match identifies one candidate record of an ambiguous lookup.
type Match struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Error is a failure that is safe to show to the caller. Kind selects the
// HTTP status, Err is the internal cause and is only logged.
type Error struct {
	Kind       error
	Message    string
	Suggestion string
	Matches    []Match
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Validation reports malformed or missing input.
func Validation(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Unauthorized reports a missing or wrong shared secret.
func Unauthorized() *Error {
	return &Error{Kind: ErrUnauthorized, Message: "Unauthorized"}
}

// Conflict reports a duplicate name on create.
func Conflict(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

// NotFound reports an unknown route or an unresolvable target.
func NotFound(message, suggestion string) *Error {
	return &Error{Kind: ErrNotFound, Message: message, Suggestion: suggestion}
}

// Ambiguous reports that a lookup resolved to more than one record.
func Ambiguous(message string, matches []Match, suggestion string) *Error {
	return &Error{Kind: ErrAmbiguous, Message: message, Matches: matches, Suggestion: suggestion}
}

// MethodNotAllowed reports a verb the path does not support.
func MethodNotAllowed(message string) *Error {
	return &Error{Kind: ErrMethodNotAllowed, Message: message}
}

// Upstream reports an ERP fault or a failed ERP session.
func Upstream(message string, cause error) *Error {
	return &Error{Kind: ErrUpstream, Message: message, Err: cause}
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAmbiguous):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes the error body for err. Errors that are not *Error
// are reported as a generic internal error.
func RespondError(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		JSON(w, http.StatusInternalServerError, ErrorBody{Error: internalErrorMessage})
		return
	}
	JSON(w, StatusOf(e), ErrorBody{
		Error:      e.Message,
		Suggestion: e.Suggestion,
		Matches:    e.Matches,
	})
}

// LogAndRespond logs server-side failures before responding.
func LogAndRespond(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if logger != nil && StatusOf(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	RespondError(w, err)
}
