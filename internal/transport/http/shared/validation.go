package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"smartraise/internal/platform/apperr"
	"smartraise/internal/platform/requestctx"
	"smartraise/internal/transport/http/api"
)

// DecodeJSON reads a single JSON document into dst. Malformed, oversized or
// empty bodies come back as validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Validation("request body too large")
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is required")
		case errors.As(err, &typeErr):
			return apperr.Validation("invalid request payload",
				apperr.Issue{Field: typeErr.Field, Reason: "must be a " + typeErr.Type.String()})
		}
		return apperr.Validation("invalid request payload")
	}
	if dec.More() {
		return apperr.Validation("invalid request payload")
	}
	return nil
}

// ParseOptionalDate reads a request date field. Empty input yields nil.
func ParseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := ParseDate(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperr.Validation("invalid request payload",
			apperr.Issue{Field: field, Reason: "must be a valid date in YYYY-MM-DD or RFC3339 format"})
	}
	return &parsed, nil
}

// Respond writes err as an error envelope for r.
func Respond(w http.ResponseWriter, r *http.Request, err error) {
	api.FailError(w, err, requestctx.GetRequestID(r.Context()))
}

func OK(w http.ResponseWriter, r *http.Request, data any) {
	api.Success(w, data, requestctx.GetRequestID(r.Context()))
}

func Created(w http.ResponseWriter, r *http.Request, data any) {
	api.Created(w, data, requestctx.GetRequestID(r.Context()))
}
