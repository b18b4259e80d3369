package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlonsoPV/baileApp-sub007/internal/pkg/validate"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrEventNotFound = errors.New("event not found")
)

type Event struct {
	ID          int64
	Title       string
	Description string
	Venue       string
	ZonaID      int64
	RitmoID     int64
	StartsAt    time.Time
	CreatedBy   int64
	Archived    bool
	CreatedAt   time.Time
}

// Filter narrows the upcoming listing. Zero ZonaID/RitmoID match any.
type Filter struct {
	ZonaID  int64
	RitmoID int64
	From    time.Time
	Limit   int
	Offset  int
}

type Store interface {
	Create(ctx context.Context, event Event) (Event, error)
	GetByID(ctx context.Context, eventID int64) (Event, error)
	ListUpcoming(ctx context.Context, filter Filter) ([]Event, error)
}

type Config struct {
	DefaultLimit int
	MaxLimit     int
}

type Service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

func NewService(store Store, cfg Config) *Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}

	return &Service{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *Service) Create(ctx context.Context, createdBy int64, event Event) (Event, error) {
	if !validate.PositiveID(createdBy) {
		return Event{}, ErrValidation
	}
	if !validate.Required(event.Title) || event.StartsAt.IsZero() {
		return Event{}, ErrValidation
	}
	if event.StartsAt.Before(s.now()) {
		return Event{}, ErrValidation
	}
	if s.store == nil {
		return Event{}, fmt.Errorf("event store is nil")
	}

	event.Title = strings.TrimSpace(event.Title)
	event.Description = strings.TrimSpace(event.Description)
	event.Venue = strings.TrimSpace(event.Venue)
	event.CreatedBy = createdBy

	created, err := s.store.Create(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}

	return created, nil
}

func (s *Service) Get(ctx context.Context, eventID int64) (Event, error) {
	if eventID <= 0 {
		return Event{}, ErrEventNotFound
	}
	if s.store == nil {
		return Event{}, fmt.Errorf("event store is nil")
	}

	return s.store.GetByID(ctx, eventID)
}

// ListUpcoming applies the configured paging defaults and caps before
// delegating to the store.
func (s *Service) ListUpcoming(ctx context.Context, filter Filter) ([]Event, error) {
	if s.store == nil {
		return nil, fmt.Errorf("event store is nil")
	}

	if filter.Limit <= 0 {
		filter.Limit = s.cfg.DefaultLimit
	}
	if filter.Limit > s.cfg.MaxLimit {
		filter.Limit = s.cfg.MaxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.From.IsZero() {
		filter.From = s.now()
	}
	if filter.ZonaID < 0 {
		filter.ZonaID = 0
	}
	if filter.RitmoID < 0 {
		filter.RitmoID = 0
	}

	events, err := s.store.ListUpcoming(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}

	return events, nil
}
