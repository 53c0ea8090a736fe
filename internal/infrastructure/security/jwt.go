package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/infrastructure/metrics"
)

type tokenClaims struct {
	domain.Claims
	jwt.RegisteredClaims
}

// JWTIssuer implements ports.TokenIssuer with HS256 tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer builds an issuer around secret. A ttl of zero issues tokens
// without an expiry.
func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, domain.ErrMissingSecret
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must not be negative, got %s", ttl)
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs claims into a bearer token.
func (i *JWTIssuer) Issue(claims domain.Claims) (string, error) {
	now := i.now()
	tc := tokenClaims{
		Claims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  claims.Username,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		tc.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	metrics.TokensIssuedTotal.Inc()
	return signed, nil
}

// Verify checks the signature and expiry of token and decodes its claims.
// Every failure is reported as domain.ErrInvalidToken.
func (i *JWTIssuer) Verify(token string) (domain.Claims, error) {
	var tc tokenClaims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if i.ttl > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	parsed, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || tc.Username == "" || !tc.Role.Valid() {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	return tc.Claims, nil
}
