package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"smartraise/internal/platform/apperr"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// FailError writes err as an envelope. Only the message of an *apperr.Error
// reaches the client; wrapped causes are logged.
func FailError(w http.ResponseWriter, err error, requestID string) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = &apperr.Error{Kind: apperr.KindUpstream, Message: "internal server error", Err: err}
	}
	status := StatusFor(appErr.Kind)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "request_id", requestID, "err", err)
	}
	message := appErr.Message
	if message == "" {
		message = http.StatusText(status)
	}
	if len(appErr.Issues) > 0 {
		FailWithDetails(w, status, string(appErr.Kind), message, map[string]any{"fields": appErr.Issues}, requestID)
		return
	}
	Fail(w, status, string(appErr.Kind), message, requestID)
}
