package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/YouWantToPinch/pocketwise-api/internal/database"
)

type errorKind string

const (
	kindValidation      errorKind = "validation"
	kindUnauthenticated errorKind = "unauthenticated"
	kindForbidden       errorKind = "forbidden"
	kindNotFound        errorKind = "not_found"
	kindConflict        errorKind = "conflict"
	kindUnavailable     errorKind = "unavailable"
	kindUnexpected      errorKind = "unexpected"
)

func (k errorKind) status() int {
	switch k {
	case kindValidation, kindConflict:
		return http.StatusBadRequest
	case kindUnauthenticated:
		return http.StatusUnauthorized
	case kindForbidden:
		return http.StatusForbidden
	case kindNotFound:
		return http.StatusNotFound
	case kindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// apiError carries a client-facing failure out of code that cannot write the
// response itself, such as an ExecTx closure.
type apiError struct {
	kind errorKind
	msg  string
	err  error
}

func newAPIError(kind errorKind, msg string, err error) *apiError {
	return &apiError{kind: kind, msg: msg, err: err}
}

func (e *apiError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *apiError) Unwrap() error {
	return e.err
}

type errorBody struct {
	Kind    errorKind `json:"kind"`
	Message string    `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func respondWithError(w http.ResponseWriter, r *http.Request, kind errorKind, msg string, err error) {
	code := kind.status()
	// prefix the message with a status code message
	errorMessage := makeStatusCodeMsg(code)
	if msg != "" {
		errorMessage += fmt.Sprintf("; %s", msg)
	}
	if err != nil {
		errorMessage += fmt.Sprintf(": %s", err.Error())
	}

	attrs := []any{
		slog.Int("status", code),
		slog.String("kind", string(kind)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), errorMessage, attrs...)
	} else {
		slog.InfoContext(r.Context(), errorMessage, attrs...)
	}

	if msg == "" {
		msg = http.StatusText(code)
	}
	respondWithJSON(w, code, errorResponse{
		Error: errorBody{Kind: kind, Message: msg},
	})
}

// respondWithFailure classifies err and responds with the matching kind.
// msg is used when err carries no client-facing message of its own.
func respondWithFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
		respondWithError(w, r, apiErr.kind, apiErr.msg, apiErr.err)
	case errors.Is(err, database.ErrNotFound):
		respondWithError(w, r, kindNotFound, "resource not found", err)
	case database.IsUniqueViolation(err):
		respondWithError(w, r, kindConflict, "resource already exists", err)
	case database.IsForeignKeyViolation(err):
		respondWithError(w, r, kindConflict, "resource is referenced by other records", err)
	case database.IsNumericOutOfRange(err):
		respondWithError(w, r, kindValidation, "amount is too large", err)
	default:
		respondWithError(w, r, kindUnexpected, msg, err)
	}
}
