package ports

import (
	"context"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// UserRepository defines the interface for account persistence.
//
// Create must enforce username and email uniqueness atomically and report
// violations as domain.ErrUsernameExists, domain.ErrEmailExists or
// domain.ErrUserExists. Save only persists the mutable profile fields.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
}
