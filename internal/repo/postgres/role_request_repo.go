package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	rolesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/roles"
)

type RoleRequestRepo struct {
	pool *pgxpool.Pool
}

func NewRoleRequestRepo(pool *pgxpool.Pool) *RoleRequestRepo {
	return &RoleRequestRepo{pool: pool}
}

// Create inserts a pending request. A partial unique index on
// (user_id, role) WHERE status = 'pending' keeps one open request per
// role per user.
func (r *RoleRequestRepo) Create(ctx context.Context, userID int64, role, note string) (rolesvc.Request, error) {
	if r.pool == nil {
		return rolesvc.Request{}, fmt.Errorf("postgres pool is nil")
	}

	var req rolesvc.Request
	err := r.pool.QueryRow(ctx, `
INSERT INTO role_requests (user_id, role, note, status, created_at)
VALUES ($1, $2, $3, 'pending', NOW())
RETURNING id, user_id, role, note, status, created_at
`, userID, role, note).Scan(&req.ID, &req.UserID, &req.Role, &req.Note, &req.Status, &req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return rolesvc.Request{}, rolesvc.ErrRequestPending
		}
		return rolesvc.Request{}, fmt.Errorf("insert role request: %w", err)
	}

	return req, nil
}

func (r *RoleRequestRepo) GetLatestByUser(ctx context.Context, userID int64) (rolesvc.Request, error) {
	if r.pool == nil {
		return rolesvc.Request{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return rolesvc.Request{}, rolesvc.ErrRequestNotFound
	}

	var req rolesvc.Request
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, role, note, status, created_at, decided_at
FROM role_requests
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`, userID).Scan(&req.ID, &req.UserID, &req.Role, &req.Note, &req.Status, &req.CreatedAt, &req.DecidedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rolesvc.Request{}, rolesvc.ErrRequestNotFound
		}
		return rolesvc.Request{}, fmt.Errorf("get latest role request: %w", err)
	}

	return req, nil
}

func (r *RoleRequestRepo) ListPending(ctx context.Context, limit int) ([]rolesvc.Request, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, role, note, status, created_at, decided_at
FROM role_requests
WHERE status = 'pending'
ORDER BY created_at ASC, id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending role requests: %w", err)
	}
	defer rows.Close()

	items := make([]rolesvc.Request, 0)
	for rows.Next() {
		var req rolesvc.Request
		if err := rows.Scan(&req.ID, &req.UserID, &req.Role, &req.Note, &req.Status, &req.CreatedAt, &req.DecidedAt); err != nil {
			return nil, fmt.Errorf("scan role request: %w", err)
		}
		items = append(items, req)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate role requests: %w", rows.Err())
	}

	return items, nil
}

// Decide flips a pending request to its final status and returns the
// decided row so callers can apply the role change.
func (r *RoleRequestRepo) Decide(ctx context.Context, requestID int64, status string, decidedAt time.Time) (rolesvc.Request, error) {
	if r.pool == nil {
		return rolesvc.Request{}, fmt.Errorf("postgres pool is nil")
	}
	if requestID <= 0 {
		return rolesvc.Request{}, rolesvc.ErrRequestNotFound
	}

	var req rolesvc.Request
	err := r.pool.QueryRow(ctx, `
UPDATE role_requests
SET status = $2, decided_at = $3
WHERE id = $1 AND status = 'pending'
RETURNING id, user_id, role, note, status, created_at, decided_at
`, requestID, status, decidedAt.UTC()).Scan(&req.ID, &req.UserID, &req.Role, &req.Note, &req.Status, &req.CreatedAt, &req.DecidedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rolesvc.Request{}, rolesvc.ErrRequestNotFound
		}
		return rolesvc.Request{}, fmt.Errorf("decide role request: %w", err)
	}

	return req, nil
}
