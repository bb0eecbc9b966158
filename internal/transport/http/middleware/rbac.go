package middleware

import (
	"net/http"
	"slices"

	"smartraise/internal/platform/apperr"
	"smartraise/internal/transport/http/api"
)

// RequireRole admits authenticated users holding one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.FailError(w, apperr.Unauthorized("please authenticate"), GetRequestID(r.Context()))
				return
			}
			if !slices.Contains(roles, user.Role) {
				api.FailError(w, apperr.Forbidden("insufficient permissions"), GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
