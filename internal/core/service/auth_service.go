package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

// dummyPassword is hashed once and compared against on lookup misses so a
// login for an unknown username costs the same as a wrong password.
const dummyPassword = "account-does-not-exist"

// AuthService implements login, registration and profile management.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger

	// dummyHash is compared against on lookup misses.
	dummyHash string
}

// NewAuthService prepares the dummy digest up front so every lookup miss
// costs exactly one comparison.
func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy password hash: %w", err)
	}
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log, dummyHash: dummy}, nil
}

// Login verifies the credentials and issues a fresh token for the user.
//
// Unknown usernames yield domain.ErrUserNotFound and bad passwords or
// unknown stored roles yield domain.ErrInvalidCredentials; callers are
// expected to render both the same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(s.dummyHash, password)
			return "", nil, domain.ErrUserNotFound
		}
		s.log.Error().Err(err).Str("username", username).Msg("login: user lookup failed")
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", nil, domain.ErrInvalidCredentials
	}

	if !user.Role.Valid() {
		s.log.Warn().Str("username", username).Str("role", string(user.Role)).Msg("login: stored role is not recognised")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.ClaimsFor(user))
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("login: token issuance failed")
		return "", nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("username", username).Msg("user logged in")
	return token, user, nil
}

// Register creates a user with the default role. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.log.Error().Err(err).Str("username", in.Username).Msg("register: password hashing failed")
		return nil, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Address:      in.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if field, ok := domain.DuplicateField(err); ok {
			s.log.Info().Str("username", in.Username).Str("field", field).Msg("register: duplicate field")
			return nil, err
		}
		s.log.Error().Err(err).Str("username", in.Username).Msg("register: create user failed")
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("username", created.Username).Str("id", created.ID).Msg("user registered")
	return created, nil
}

// Protected returns the identity carried by an already verified token.
func (s *AuthService) Protected(claims domain.Claims) domain.Claims {
	return claims
}

// UpdateProfile changes the name and address of a user and reissues a token
// built from the updated record. Username, email, role and password hash are
// never touched.
func (s *AuthService) UpdateProfile(ctx context.Context, in ports.UpdateProfileInput) (string, *domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrUserNotFound
		}
		s.log.Error().Err(err).Str("username", in.Username).Msg("update profile: user lookup failed")
		return "", nil, fmt.Errorf("update profile: %w", err)
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Address = in.Address
	user.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrUserNotFound
		}
		s.log.Error().Err(err).Str("username", in.Username).Msg("update profile: save failed")
		return "", nil, fmt.Errorf("update profile: %w", err)
	}

	token, err := s.tokens.Issue(domain.ClaimsFor(saved))
	if err != nil {
		s.log.Error().Err(err).Str("username", in.Username).Msg("update profile: token issuance failed")
		return "", nil, fmt.Errorf("update profile: %w", err)
	}

	s.log.Info().Str("username", in.Username).Msg("profile updated")
	return token, saved, nil
}
