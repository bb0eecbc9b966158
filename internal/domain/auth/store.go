package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"smartraise/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.DB.QueryRow(ctx, `
    SELECT id::text, email, name, role, password_hash, created_at
    FROM users
    WHERE lower(email) = lower($1)
  `, email))
}

func (s *Store) GetUser(ctx context.Context, userID string) (User, error) {
	return s.scanUser(s.DB.QueryRow(ctx, `
    SELECT id::text, email, name, role, password_hash, created_at
    FROM users
    WHERE id = $1
  `, userID))
}

func (s *Store) CreateUser(ctx context.Context, user User) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO users (id, email, name, role, password_hash, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, user.ID, user.Email, user.Name, user.Role, user.PasswordHash, user.CreatedAt)
	return err
}

func (s *Store) scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return user, err
}
