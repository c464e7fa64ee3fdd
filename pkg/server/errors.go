package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/cubic-dev/ui/internal/errors"
)

// ErrorHandler writes the response for a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// StatusFor maps a request error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.HasCode(err, "E111"):
		return http.StatusNotFound
	case errors.HasCode(err, "E113"), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DefaultErrorHandler writes the status text for StatusFor(err).
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	http.Error(w, http.StatusText(code), code)
}

// DebugErrorHandler writes the structured error as JSON. Do not use it in
// production; details may leak internals.
func DebugErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(errors.FromError(err, "").FormatJSON()))
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if stderrors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// Client went away; nobody reads the response.
		s.logger.Debug("request canceled", "path", r.URL.Path)
		return
	}

	level := slog.LevelWarn
	if StatusFor(err) == http.StatusNotFound {
		level = slog.LevelDebug
	}
	s.logger.Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"code", errors.CodeOf(err),
		"error", err)
	s.errorHandler(w, r, err)
}
