// Package auth_repo provides PostgreSQL implementations for auth
// repositories.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/domain/auth"
	"dukapos/internal/infrastructure/storage/postgres"
)

const userColumns = `id, phone, name, password_hash, role, is_active,
	last_login_at, failed_login_attempts, locked_until, created_at, updated_at`

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txm *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO users (
			id, phone, name, password_hash, role, is_active,
			failed_login_attempts, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		user.ID, user.Phone, user.Name, user.PasswordHash,
		string(user.Role), user.IsActive, user.FailedLoginAttempts,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	q := r.txm.GetQuerier(ctx)

	var user auth.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := pgxscan.Get(ctx, q, &user, query, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("user", userID.String())
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// GetByPhone retrieves user by phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*auth.User, error) {
	q := r.txm.GetQuerier(ctx)

	var user auth.User
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	if err := pgxscan.Get(ctx, q, &user, query, phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("user", phone)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// Update updates user data.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE users SET
			name = $2,
			role = $3,
			is_active = $4,
			last_login_at = $5,
			failed_login_attempts = $6,
			locked_until = $7,
			updated_at = now()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		user.ID, user.Name, string(user.Role), user.IsActive,
		user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", user.ID.String())
	}
	return nil
}

// List retrieves users with filtering.
func (r *UserRepo) List(ctx context.Context, filter auth.UserFilter) ([]auth.User, int, error) {
	q := r.txm.GetQuerier(ctx)

	where := ` WHERE TRUE`
	var args []any
	argIdx := 1

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (phone ILIKE $%d OR name ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	if filter.IsActive != nil {
		where += fmt.Sprintf(" AND is_active = $%d", argIdx)
		args = append(args, *filter.IsActive)
		argIdx++
	}
	if filter.Role != "" {
		where += fmt.Sprintf(" AND role = $%d", argIdx)
		args = append(args, string(filter.Role))
		argIdx++
	}

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY created_at ASC, id ASC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var users []auth.User
	if err := pgxscan.Select(ctx, q, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	return users, total, nil
}

// Exists checks if phone is already registered.
func (r *UserRepo) Exists(ctx context.Context, phone string) (bool, error) {
	q := r.txm.GetQuerier(ctx)

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)`
	if err := q.QueryRow(ctx, query, phone).Scan(&exists); err != nil {
		return false, fmt.Errorf("check exists: %w", err)
	}
	return exists, nil
}

var _ auth.UserRepository = (*UserRepo)(nil)
