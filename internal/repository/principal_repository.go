package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smart-faculty/auth-service/internal/domain"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

// ErrNotFound is returned when no principal matches.
var ErrNotFound = errors.New("principal not found")

const uniqueViolation = "23505"

// PrincipalFilter narrows List results.
type PrincipalFilter struct {
	Role   *domain.Role
	Offset int
	Limit  int
}

// PrincipalRepository is the credential store.
type PrincipalRepository interface {
	Create(ctx context.Context, principal *domain.Principal) error
	Delete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	GetByID(ctx context.Context, id string) (*domain.Principal, error)
	GetByEmail(ctx context.Context, email string) (*domain.Principal, error)
	List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, error)
}

type principalRepository struct {
	pool *pgxpool.Pool
}

// NewPrincipalRepository returns a Postgres-backed implementation.
func NewPrincipalRepository(pool *pgxpool.Pool) PrincipalRepository {
	return &principalRepository{pool: pool}
}

const principalColumns = `id, email, full_name, role, password_hash, is_active, created_at`

func (r *principalRepository) Create(ctx context.Context, principal *domain.Principal) error {
	const query = `
        INSERT INTO auth_users (id, email, full_name, role, password_hash, is_active)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`

	if principal.ID == "" {
		principal.ID = uuid.NewString()
	}
	principal.Email = domain.NormalizeEmail(principal.Email)

	err := r.pool.QueryRow(ctx, query,
		principal.ID,
		principal.Email,
		principal.FullName,
		principal.Role,
		principal.PasswordHash,
		principal.IsActive,
	).Scan(&principal.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.ErrDuplicateEmail
		}
		return fmt.Errorf("insert principal: %w", err)
	}
	return nil
}

func (r *principalRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM auth_users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete principal: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *principalRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE auth_users SET password_hash=$1 WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *principalRepository) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + principalColumns + ` FROM auth_users WHERE id=$1`
	return scanPrincipal(r.pool.QueryRow(ctx, query, id))
}

func (r *principalRepository) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM auth_users WHERE lower(email)=$1`
	return scanPrincipal(r.pool.QueryRow(ctx, query, domain.NormalizeEmail(email)))
}

func (r *principalRepository) List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM auth_users`
	args := []any{}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		query += fmt.Sprintf(" WHERE role=$%d", len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	defer rows.Close()

	principals := []domain.Principal{}
	for rows.Next() {
		principal, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		principals = append(principals, *principal)
	}
	return principals, rows.Err()
}

func scanPrincipal(row pgx.Row) (*domain.Principal, error) {
	var principal domain.Principal
	if err := row.Scan(
		&principal.ID,
		&principal.Email,
		&principal.FullName,
		&principal.Role,
		&principal.PasswordHash,
		&principal.IsActive,
		&principal.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &principal, nil
}
