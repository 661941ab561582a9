package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged server-side with its technical detail and the
// request ID, and returned to the client as a core.UserMessage rendered as
// JSON. The status code comes from statusFor unless the handler already
// knows better (malformed input is always 400).

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/datasight/internal/core"
	"github.com/JonMunkholm/datasight/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code, Kind) and human-readable (Message,
// Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
}

// respondError logs err and writes its user-facing form with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userErr := core.NewUserError(err)

	logger := logging.FromContext(r.Context())
	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", userErr.Technical.Error(),
		"code", userErr.User.Code,
	)

	writeJSON(w, statusCode, ErrorResponse{
		Error:   userErr.Error(),
		Message: userErr.User.Message,
		Action:  userErr.User.Action,
		Code:    userErr.User.Code,
		Kind:    string(core.KindOf(userErr)),
	})
}

// statusFor picks the HTTP status for an error returned by core.Service.
func statusFor(err error) int {
	switch core.KindOf(err) {
	case core.KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case core.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case core.KindParseFailure, core.KindInvalidHeaders, core.KindEmptyFile, core.KindNoValidRows:
		return http.StatusUnprocessableEntity
	}

	switch {
	case errors.Is(err, core.ErrNoFile), errors.Is(err, core.ErrUnknownColumn):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrDatasetNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyIngestions):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v as JSON with the given status. The body is encoded
// before any header is sent so an encoding failure still reaches the
// client as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("json encode error", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"An unexpected error occurred","code":"ERR000"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
