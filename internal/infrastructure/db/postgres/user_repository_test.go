package postgres

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

func TestClassifyUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"username", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintUsername}, domain.ErrUsernameExists},
		{"email", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintEmail}, domain.ErrEmailExists},
		{"wrapped email", fmt.Errorf("scan: %w", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintEmail}), domain.ErrEmailExists},
		{"unknown constraint", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_pkey"}, domain.ErrUserExists},
		{"other pg error", &pgconn.PgError{Code: "23502"}, nil},
		{"no rows", pgx.ErrNoRows, nil},
		{"plain", errors.New("boom"), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyUniqueViolation(tc.err)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_users.up.sql")
	assert.Contains(t, names, "000001_create_users.down.sql")

	up, err := fs.ReadFile(migrations, "migrations/000001_create_users.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), constraintUsername)
	assert.Contains(t, string(up), constraintEmail)
}
