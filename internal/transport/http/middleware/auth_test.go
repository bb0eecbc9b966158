package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartraise/internal/domain/auth"
)

type stubAuthenticator map[string]auth.UserContext

func (s stubAuthenticator) Authenticate(token string) (auth.UserContext, error) {
	user, ok := s[token]
	if !ok {
		return auth.UserContext{}, errors.New("bad token")
	}
	return user, nil
}

var authn = stubAuthenticator{
	"admin-token":  {UserID: "u1", Role: auth.RoleAdmin},
	"viewer-token": {UserID: "u2", Role: auth.RoleViewer},
}

func TestAuthMiddlewareSetsUser(t *testing.T) {
	called := false
	handler := Auth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user, ok := GetUser(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		if user.UserID != "u1" || user.Role != auth.RoleAdmin {
			t.Fatalf("unexpected user: %+v", user)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestAuthMiddlewareIgnoresBadTokens(t *testing.T) {
	for _, header := range []string{"", "Bearer", "Basic admin-token", "Bearer nope"} {
		handler := Auth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUser(r.Context()); ok {
				t.Fatalf("did not expect user for header %q", header)
			}
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}

func TestRequireAuthAndRole(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "viewer", token: "viewer-token", status: http.StatusForbidden},
		{name: "admin", token: "admin-token", status: http.StatusNoContent},
	}

	handler := Auth(authn)(RequireAuth(RequireRole(auth.RoleAdmin)(noContent())))
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/employees", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}
