package ports

import "github.com/99minutos/accounts-api/internal/core/domain"

// PasswordHasher produces and checks one-way password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify must take the same time regardless of where a mismatch occurs.
	Verify(digest, plaintext string) bool
}

// TokenIssuer signs and verifies self-contained bearer tokens.
type TokenIssuer interface {
	Issue(claims domain.Claims) (string, error)
	Verify(token string) (domain.Claims, error)
}
