package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartraise/internal/domain/auth"
	"smartraise/internal/platform/requestctx"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func loginRequest(email, remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email":"`+email+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	return req
}

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent())
	userCtx := requestctx.WithUser(t.Context(), auth.UserContext{UserID: "user-1", Role: auth.RoleAdmin})

	first := httptest.NewRequest(http.MethodPost, "/api/import", nil).WithContext(userCtx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/import", nil).WithContext(userCtx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by user key, got %d", secondRec.Code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent())

	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, loginRequest("a@example.com", "203.0.113.10:4444"))
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, loginRequest("b@example.com", "203.0.113.10:5555"))
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by ip key, got %d", secondRec.Code)
	}
}

func TestRateLimitByEmail(t *testing.T) {
	limited := RateLimit(1, time.Minute, WithKeyFunc(AuthEmailOrIPKey("email")))(noContent())

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, loginRequest("a@example.com", "203.0.113.20:1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, loginRequest("other@example.com", "203.0.113.20:2"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected a different email to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, loginRequest("A@example.com", "203.0.113.21:3"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected repeated email to be throttled, got %d", rec.Code)
	}
}

func TestRateLimitWindowReset(t *testing.T) {
	limited := RateLimit(1, 40*time.Millisecond)(noContent())

	rec1 := httptest.NewRecorder()
	limited.ServeHTTP(rec1, loginRequest("a@example.com", "192.0.2.20:1111"))
	if rec1.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", rec1.Code)
	}

	rec2 := httptest.NewRecorder()
	limited.ServeHTTP(rec2, loginRequest("a@example.com", "192.0.2.20:1111"))
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}

	time.Sleep(50 * time.Millisecond)

	rec3 := httptest.NewRecorder()
	limited.ServeHTTP(rec3, loginRequest("a@example.com", "192.0.2.20:1111"))
	if rec3.Code != http.StatusNoContent {
		t.Fatalf("expected third request after window reset to pass, got %d", rec3.Code)
	}
}

func TestRateLimitReturnsRetryMetadata(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent())

	limited.ServeHTTP(httptest.NewRecorder(), loginRequest("a@example.com", "192.0.2.30:1234"))
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, loginRequest("a@example.com", "192.0.2.30:1234"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected throttled response, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("expected X-RateLimit-Reset header")
	}
}
