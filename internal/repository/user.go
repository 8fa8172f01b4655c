package repository

import (
	"context"

	"filesmanager/internal/model"
)

// UserRepository persists registered users.
type UserRepository interface {
	// Create inserts a user. It returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *model.User) (*model.User, error)

	FindByEmail(ctx context.Context, email string) (*model.User, error)

	FindByID(ctx context.Context, id int64) (*model.User, error)
}
