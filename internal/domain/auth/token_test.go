package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "user-1", Email: "a@b.c", Role: RoleViewer}, time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != RoleViewer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseExpiredToken(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "user-1", Role: RoleAdmin}, -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("Stronger123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := CheckPassword(hash, "Stronger123"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch")
	}
}
