package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	eventsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/events"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Create(ctx context.Context, event eventsvc.Event) (eventsvc.Event, error) {
	if r.pool == nil {
		return eventsvc.Event{}, fmt.Errorf("postgres pool is nil")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO events (title, description, venue, zona_id, ritmo_id, starts_at, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
RETURNING id, created_at
`,
		event.Title,
		event.Description,
		event.Venue,
		event.ZonaID,
		event.RitmoID,
		event.StartsAt.UTC(),
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return eventsvc.Event{}, fmt.Errorf("insert event: %w", err)
	}

	return event, nil
}

func (r *EventRepo) GetByID(ctx context.Context, eventID int64) (eventsvc.Event, error) {
	if r.pool == nil {
		return eventsvc.Event{}, fmt.Errorf("postgres pool is nil")
	}
	if eventID <= 0 {
		return eventsvc.Event{}, eventsvc.ErrEventNotFound
	}

	var event eventsvc.Event
	err := r.pool.QueryRow(ctx, `
SELECT id, title, description, venue, zona_id, ritmo_id, starts_at, created_by, archived, created_at
FROM events
WHERE id = $1
`, eventID).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Venue,
		&event.ZonaID,
		&event.RitmoID,
		&event.StartsAt,
		&event.CreatedBy,
		&event.Archived,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return eventsvc.Event{}, eventsvc.ErrEventNotFound
		}
		return eventsvc.Event{}, fmt.Errorf("get event by id: %w", err)
	}

	return event, nil
}

// ListUpcoming returns non-archived events starting at or after From,
// soonest first. Zero filter ids mean "any".
func (r *EventRepo) ListUpcoming(ctx context.Context, filter eventsvc.Filter) ([]eventsvc.Event, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, title, description, venue, zona_id, ritmo_id, starts_at, created_by, archived, created_at
FROM events
WHERE archived = FALSE
  AND starts_at >= $1
  AND ($2::bigint = 0 OR zona_id = $2)
  AND ($3::bigint = 0 OR ritmo_id = $3)
ORDER BY starts_at ASC, id ASC
LIMIT $4 OFFSET $5
`, filter.From.UTC(), filter.ZonaID, filter.RitmoID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	defer rows.Close()

	events := make([]eventsvc.Event, 0)
	for rows.Next() {
		var event eventsvc.Event
		if err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.Venue,
			&event.ZonaID,
			&event.RitmoID,
			&event.StartsAt,
			&event.CreatedBy,
			&event.Archived,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, event)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate event rows: %w", rows.Err())
	}

	return events, nil
}

func (r *EventRepo) ArchiveEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE events
SET archived = TRUE, updated_at = NOW()
WHERE archived = FALSE
  AND starts_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("archive ended events: %w", err)
	}

	return tag.RowsAffected(), nil
}
