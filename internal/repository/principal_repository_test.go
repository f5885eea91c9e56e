package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-faculty/auth-service/internal/domain"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

// openTestDB connects to TEST_POSTGRES_DSN and applies the schema, or skips.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../persistence/migrations/001_auth_users.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	return pool
}

func TestPrincipalRepositoryLifecycle(t *testing.T) {
	pool := openTestDB(t)
	repo := NewPrincipalRepository(pool)
	ctx := context.Background()

	email := "Repo-" + uuid.NewString()[:8] + "@X.edu"
	principal := &domain.Principal{
		Email:        email,
		FullName:     "Repo Test",
		Role:         domain.RoleProfessor,
		PasswordHash: "hash",
		IsActive:     true,
	}
	require.NoError(t, repo.Create(ctx, principal))
	t.Cleanup(func() { _ = repo.Delete(context.Background(), principal.ID) })
	assert.NotEmpty(t, principal.ID)
	assert.False(t, principal.CreatedAt.IsZero())

	dup := &domain.Principal{Email: email, FullName: "Dup", Role: domain.RoleStudent, PasswordHash: "h", IsActive: true}
	assert.ErrorIs(t, repo.Create(ctx, dup), apperrors.ErrDuplicateEmail)

	loaded, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, principal.ID, loaded.ID)
	assert.Equal(t, domain.RoleProfessor, loaded.Role)

	require.NoError(t, repo.UpdatePassword(ctx, principal.ID, "new-hash"))
	loaded, err = repo.GetByID(ctx, principal.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", loaded.PasswordHash)

	role := domain.RoleProfessor
	list, err := repo.List(ctx, PrincipalFilter{Role: &role, Limit: 100})
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	require.NoError(t, repo.Delete(ctx, principal.ID))
	_, err = repo.GetByID(ctx, principal.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, principal.ID), ErrNotFound)
}

func TestGetByIDRejectsMalformedID(t *testing.T) {
	repo := NewPrincipalRepository(nil)
	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}
