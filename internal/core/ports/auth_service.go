package ports

import (
	"context"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// RegisterInput carries the already validated registration fields.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Address   string
}

// UpdateProfileInput carries the mutable profile fields for Username.
type UpdateProfileInput struct {
	Username  string
	FirstName string
	LastName  string
	Address   string
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Protected(claims domain.Claims) domain.Claims
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (string, *domain.User, error)
}
