package auth

import "context"

type StoreAPI interface {
	FindUserByEmail(ctx context.Context, email string) (User, error)
	GetUser(ctx context.Context, userID string) (User, error)
	CreateUser(ctx context.Context, user User) error
}
