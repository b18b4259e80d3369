package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	authsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/auth"
)

const uniqueViolationCode = "23505"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, email, passwordHash string) (authsvc.User, error) {
	if r.pool == nil {
		return authsvc.User{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || passwordHash == "" {
		return authsvc.User{}, fmt.Errorf("invalid user payload")
	}

	var user authsvc.User
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash, role, created_at, updated_at)
VALUES ($1, $2, 'dancer', NOW(), NOW())
RETURNING id, email, password_hash, role
`, email, passwordHash).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return authsvc.User{}, authsvc.ErrEmailTaken
		}
		return authsvc.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (authsvc.User, error) {
	if r.pool == nil {
		return authsvc.User{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return authsvc.User{}, fmt.Errorf("email is required")
	}

	var user authsvc.User
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, role
FROM users
WHERE email = $1
`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsvc.User{}, authsvc.ErrUserNotFound
		}
		return authsvc.User{}, fmt.Errorf("find user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (authsvc.User, error) {
	if r.pool == nil {
		return authsvc.User{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return authsvc.User{}, fmt.Errorf("invalid user id")
	}

	var user authsvc.User
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, role
FROM users
WHERE id = $1
`, userID).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsvc.User{}, authsvc.ErrUserNotFound
		}
		return authsvc.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, userID int64, role string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(role) == "" {
		return fmt.Errorf("invalid role update payload")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET role = $2, updated_at = NOW()
WHERE id = $1
`, userID, role)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return authsvc.ErrUserNotFound
	}

	return nil
}
