package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	votesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/votes"
)

type VoteRepo struct {
	pool *pgxpool.Pool
}

func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

// Toggle inserts the vote or, when it already exists, removes it. Returns
// whether the vote exists after the call.
func (r *VoteRepo) Toggle(ctx context.Context, eventID, userID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if eventID <= 0 || userID <= 0 {
		return false, fmt.Errorf("invalid vote payload")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
INSERT INTO event_votes (event_id, user_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (event_id, user_id) DO NOTHING
`, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("insert vote: %w", err)
	}

	voted := tag.RowsAffected() > 0
	if !voted {
		if _, err := tx.Exec(ctx, `
DELETE FROM event_votes
WHERE event_id = $1 AND user_id = $2
`, eventID, userID); err != nil {
			return false, fmt.Errorf("delete vote: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return voted, nil
}

func (r *VoteRepo) Count(ctx context.Context, eventID int64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if eventID <= 0 {
		return 0, fmt.Errorf("invalid event id")
	}

	var count int64
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM event_votes
WHERE event_id = $1
`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count event votes: %w", err)
	}

	return count, nil
}

// Trending ranks non-archived events by votes received since the window
// start, most voted first.
func (r *VoteRepo) Trending(ctx context.Context, since time.Time, limit int) ([]votesvc.TrendingEvent, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("trending limit must be positive")
	}

	rows, err := r.pool.Query(ctx, `
SELECT v.event_id, COUNT(*) AS votes
FROM event_votes v
JOIN events e ON e.id = v.event_id
WHERE v.created_at >= $1
  AND e.archived = FALSE
GROUP BY v.event_id
ORDER BY votes DESC, v.event_id ASC
LIMIT $2
`, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query trending events: %w", err)
	}
	defer rows.Close()

	items := make([]votesvc.TrendingEvent, 0)
	for rows.Next() {
		var item votesvc.TrendingEvent
		if err := rows.Scan(&item.EventID, &item.Votes); err != nil {
			return nil, fmt.Errorf("scan trending row: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate trending rows: %w", rows.Err())
	}

	return items, nil
}

// DeleteForArchivedBefore removes vote rows whose events were archived
// before the cutoff, keeping the table bounded.
func (r *VoteRepo) DeleteForArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM event_votes v
USING events e
WHERE e.id = v.event_id
  AND e.archived = TRUE
  AND e.starts_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete stale votes: %w", err)
	}

	return tag.RowsAffected(), nil
}
