package votes

import (
	"context"
	"errors"
	"fmt"
	"time"

	eventsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/events"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrEventArchived = errors.New("event is archived")
)

// RateLimitError carries the wait so the HTTP layer can emit Retry-After.
type RateLimitError struct {
	RetryAfterSec int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("vote rate limit exceeded, retry after %ds", e.RetryAfterSec)
}

type TrendingEvent struct {
	EventID int64
	Votes   int64
}

type VoteState struct {
	EventID int64
	Voted   bool
	Count   int64
}

type Store interface {
	Toggle(ctx context.Context, eventID, userID int64) (bool, error)
	Count(ctx context.Context, eventID int64) (int64, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]TrendingEvent, error)
}

type EventGetter interface {
	Get(ctx context.Context, eventID int64) (eventsvc.Event, error)
}

type Limiter interface {
	AllowVote(ctx context.Context, userID int64) (int64, bool, error)
}

type Config struct {
	TrendingWindow time.Duration
	TrendingLimit  int
}

type Service struct {
	store   Store
	events  EventGetter
	limiter Limiter
	cfg     Config
	now     func() time.Time
}

func NewService(store Store, events EventGetter, limiter Limiter, cfg Config) *Service {
	if cfg.TrendingWindow <= 0 {
		cfg.TrendingWindow = 7 * 24 * time.Hour
	}
	if cfg.TrendingLimit <= 0 {
		cfg.TrendingLimit = 10
	}

	return &Service{
		store:   store,
		events:  events,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Toggle flips the caller's vote on an event. Voting twice undoes the
// first vote, so the operation is safe to retry from a flaky client.
func (s *Service) Toggle(ctx context.Context, userID, eventID int64) (VoteState, error) {
	if userID <= 0 || eventID <= 0 {
		return VoteState{}, ErrValidation
	}
	if s.store == nil || s.events == nil {
		return VoteState{}, fmt.Errorf("vote dependencies are not configured")
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowVote(ctx, userID)
		if err != nil {
			return VoteState{}, fmt.Errorf("check vote rate: %w", err)
		}
		if !allowed {
			return VoteState{}, &RateLimitError{RetryAfterSec: retryAfter}
		}
	}

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return VoteState{}, err
	}
	if event.Archived {
		return VoteState{}, ErrEventArchived
	}

	voted, err := s.store.Toggle(ctx, eventID, userID)
	if err != nil {
		return VoteState{}, fmt.Errorf("toggle vote: %w", err)
	}

	count, err := s.store.Count(ctx, eventID)
	if err != nil {
		return VoteState{}, fmt.Errorf("count votes: %w", err)
	}

	return VoteState{EventID: eventID, Voted: voted, Count: count}, nil
}

// Trending returns the most voted events inside the sliding window.
func (s *Service) Trending(ctx context.Context) ([]TrendingEvent, error) {
	if s.store == nil {
		return nil, fmt.Errorf("vote store is nil")
	}

	since := s.now().Add(-s.cfg.TrendingWindow)
	items, err := s.store.Trending(ctx, since, s.cfg.TrendingLimit)
	if err != nil {
		return nil, fmt.Errorf("list trending events: %w", err)
	}

	return items, nil
}
