package webutil

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// AppHandler represents a handler function that returns an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// MakeHandler adapts an AppHandler to http.HandlerFunc. Returned errors are
// logged and rendered as ErrorBody; sql.ErrNoRows becomes a 404.
func MakeHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww, ok := w.(middleware.WrapResponseWriter)
		if !ok {
			ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		}
		err := handler(ww, r)
		if err == nil {
			return
		}
		WriteError(ww, r, err)
	}
}

// WriteError renders err the same way MakeHandler does. Middleware uses it directly.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		httpErr    *HTTPError
		body       ErrorBody
		statusCode int
	)

	switch {
	case errors.As(err, &httpErr):
		statusCode = httpErr.Code
		body = ErrorBody{Error: httpErr.Message, Fields: httpErr.Fields}
		logLevel := slog.LevelWarn
		if statusCode >= 500 {
			logLevel = slog.LevelError
		}
		attrs := []any{
			"code", httpErr.Code,
			"msg", httpErr.Message,
			"path", r.URL.Path,
			"method", r.Method,
			"request_id", middleware.GetReqID(r.Context()),
		}
		if cause := errors.Unwrap(httpErr); cause != nil && cause.Error() != httpErr.Message {
			attrs = append(attrs, "cause", cause)
		}
		slog.Log(r.Context(), logLevel, "Client error response", attrs...)

	case errors.Is(err, sql.ErrNoRows):
		statusCode = http.StatusNotFound
		body = ErrorBody{Error: msgNotFound}
		slog.Info("Resource not found (sql.ErrNoRows)", "path", r.URL.Path, "method", r.Method, "error", err)

	default:
		statusCode = http.StatusInternalServerError
		body = ErrorBody{Error: msgInternalServer}
		slog.Error("Unhandled internal error", "path", r.URL.Path, "method", r.Method, "error", err)
	}

	if HasResponseWriterSentHeader(w) {
		slog.Warn("Handler returned error after writing response header",
			"path", r.URL.Path,
			"method", r.Method,
			"error", err,
		)
		return
	}

	RespondWithJSON(w, statusCode, body)
}
