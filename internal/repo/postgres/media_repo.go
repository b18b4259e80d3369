package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mediasvc "github.com/AlonsoPV/baileApp-sub007/internal/services/media"
)

type MediaRepo struct {
	pool *pgxpool.Pool
}

func NewMediaRepo(pool *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{pool: pool}
}

// CreatePhoto claims the lowest free position under a row lock so two
// concurrent uploads cannot land on the same slot or exceed the limit.
func (r *MediaRepo) CreatePhoto(ctx context.Context, userID int64, objectKey string) (mediasvc.PhotoRecord, error) {
	if r.pool == nil {
		return mediasvc.PhotoRecord{}, fmt.Errorf("postgres pool is nil")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mediasvc.PhotoRecord{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `
SELECT position
FROM media
WHERE user_id = $1 AND kind = 'photo' AND status = 'active'
ORDER BY position
FOR UPDATE
`, userID)
	if err != nil {
		return mediasvc.PhotoRecord{}, fmt.Errorf("query photo positions: %w", err)
	}

	positions := map[int]struct{}{}
	for rows.Next() {
		var position int
		if err := rows.Scan(&position); err != nil {
			rows.Close()
			return mediasvc.PhotoRecord{}, fmt.Errorf("scan photo position: %w", err)
		}
		positions[position] = struct{}{}
	}
	rows.Close()

	if len(positions) >= mediasvc.MaxActivePhotos() {
		return mediasvc.PhotoRecord{}, mediasvc.ErrPhotoLimitReached
	}

	position := nextPosition(positions)
	if position == 0 {
		return mediasvc.PhotoRecord{}, mediasvc.ErrPhotoLimitReached
	}

	var record mediasvc.PhotoRecord
	err = tx.QueryRow(ctx, `
INSERT INTO media (user_id, kind, s3_key, position, status, created_at, updated_at)
VALUES ($1, 'photo', $2, $3, 'active', NOW(), NOW())
RETURNING id, position, s3_key, created_at
`, userID, objectKey, position).Scan(&record.ID, &record.Position, &record.ObjectKey, &record.CreatedAt)
	if err != nil {
		return mediasvc.PhotoRecord{}, fmt.Errorf("insert media photo: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mediasvc.PhotoRecord{}, fmt.Errorf("commit transaction: %w", err)
	}

	return record, nil
}

func (r *MediaRepo) ListActivePhotos(ctx context.Context, userID int64) ([]mediasvc.PhotoRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, position, s3_key, created_at
FROM media
WHERE user_id = $1 AND kind = 'photo' AND status = 'active'
ORDER BY position ASC, created_at ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active photos: %w", err)
	}
	defer rows.Close()

	photos := make([]mediasvc.PhotoRecord, 0)
	for rows.Next() {
		var record mediasvc.PhotoRecord
		if err := rows.Scan(&record.ID, &record.Position, &record.ObjectKey, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan active photo: %w", err)
		}
		photos = append(photos, record)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active photos: %w", rows.Err())
	}

	return photos, nil
}

func (r *MediaRepo) CountActivePhotos(ctx context.Context, userID int64) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM media
WHERE user_id = $1 AND kind = 'photo' AND status = 'active'
`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active photos: %w", err)
	}

	return count, nil
}

// DeletePhoto soft-deletes so the object key survives for storage cleanup.
func (r *MediaRepo) DeletePhoto(ctx context.Context, userID, mediaID int64) (string, error) {
	if r.pool == nil {
		return "", fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || mediaID <= 0 {
		return "", mediasvc.ErrPhotoNotFound
	}

	var objectKey string
	err := r.pool.QueryRow(ctx, `
UPDATE media
SET status = 'deleted', updated_at = NOW()
WHERE id = $1 AND user_id = $2 AND kind = 'photo' AND status = 'active'
RETURNING s3_key
`, mediaID, userID).Scan(&objectKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", mediasvc.ErrPhotoNotFound
		}
		return "", fmt.Errorf("delete media photo: %w", err)
	}

	return objectKey, nil
}

func nextPosition(occupied map[int]struct{}) int {
	for i := 1; i <= mediasvc.MaxActivePhotos(); i++ {
		if _, ok := occupied[i]; !ok {
			return i
		}
	}
	return 0
}
