package middleware

import (
	"context"
	"net/http"
	"strings"

	"smartraise/internal/domain/auth"
	"smartraise/internal/platform/apperr"
	"smartraise/internal/platform/requestctx"
	"smartraise/internal/transport/http/api"
)

type Authenticator interface {
	Authenticate(token string) (auth.UserContext, error)
}

// Auth resolves a bearer token into the request's user. Requests without a
// valid token pass through anonymous; RequireAuth rejects them.
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			user, err := authn.Authenticate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithUser(r.Context(), user)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.FailError(w, apperr.Unauthorized("please authenticate"), GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	return requestctx.GetUser(ctx)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
