package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartraise/internal/platform/apperr"
	"smartraise/internal/platform/validate"
)

type Service struct {
	store  StoreAPI
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl, now: time.Now}
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in, "invalid credentials payload"); err != nil {
		return Session{}, err
	}

	user, err := s.store.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return Session{}, apperr.Upstream(err, "failed to look up user")
	}
	if err := CheckPassword(user.PasswordHash, in.Password); err != nil {
		return Session{}, apperr.Unauthorized("invalid email or password")
	}

	token, err := GenerateToken(s.secret, Claims{UserID: user.ID, Email: user.Email, Role: user.Role}, s.ttl)
	if err != nil {
		return Session{}, apperr.Upstream(err, "failed to issue token")
	}
	return Session{Token: token, ExpiresAt: s.now().Add(s.ttl).UTC(), User: user}, nil
}

// Authenticate turns a bearer token into the caller's identity.
func (s *Service) Authenticate(token string) (UserContext, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return UserContext{}, apperr.Unauthorized("please authenticate")
	}
	return UserContext{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return User{}, apperr.Unauthorized("please authenticate")
	}
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, apperr.Unauthorized("please authenticate")
	}
	if err != nil {
		return User{}, apperr.Upstream(err, "failed to fetch user")
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		slog.Info("admin seed skipped: no credentials configured")
		return nil
	}

	_, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.store.CreateUser(ctx, User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Admin User",
		Role:         RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}); err != nil {
		return err
	}
	slog.Info("admin user created", "email", email)
	return nil
}
