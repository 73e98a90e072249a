package repository

import (
	"context"

	"focus-tracker/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, username string, update domain.UserUpdate) (*domain.User, error)
	// Delete removes the user together with every tracker and task it owns.
	Delete(ctx context.Context, username string) error
}
