package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	profilesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/profiles"
)

var ErrIncomplete = errors.New("onboarding steps missing")

const (
	StepDisplayName = "display_name"
	StepDanceRole   = "dance_role"
	StepRitmos      = "ritmos"
	StepZonas       = "zonas"
	StepPhoto       = "photo"
)

const statusCacheTTL = 10 * time.Minute

type ProfileReader interface {
	Get(ctx context.Context, userID int64) (map[string]any, error)
}

type PhotoCounter interface {
	CountActivePhotos(ctx context.Context, userID int64) (int, error)
}

// CompletionStore flips the flag the profile save pipeline refuses to
// touch. This service is its only writer.
type CompletionStore interface {
	SetOnboardingCompleted(ctx context.Context, userID int64, completed bool) error
}

type CacheStore interface {
	Get(ctx context.Context, key string) (map[string]any, bool, error)
	Set(ctx context.Context, key string, value map[string]any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type Status struct {
	Completed    bool
	MissingSteps []string
}

type Service struct {
	profiles   ProfileReader
	photos     PhotoCounter
	completion CompletionStore
	cache      CacheStore
}

func NewService(profiles ProfileReader, photos PhotoCounter, completion CompletionStore, cache CacheStore) *Service {
	return &Service{
		profiles:   profiles,
		photos:     photos,
		completion: completion,
		cache:      cache,
	}
}

// Status reports which wizard steps the user still has to do, cached
// under the onboarding status key the save pipeline invalidates.
func (s *Service) Status(ctx context.Context, userID int64) (Status, error) {
	if userID <= 0 {
		return Status{}, profilesvc.ErrUnauthorized
	}

	cacheKey := profilesvc.OnboardingStatusCacheKey(userID)
	if s.cache != nil {
		if entry, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			return statusFromCache(entry), nil
		}
	}

	status, err := s.computeStatus(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, statusToCache(status), statusCacheTTL)
	}

	return status, nil
}

// Complete marks onboarding done. All steps must be finished first.
func (s *Service) Complete(ctx context.Context, userID int64) (Status, error) {
	if userID <= 0 {
		return Status{}, profilesvc.ErrUnauthorized
	}
	if s.completion == nil {
		return Status{}, fmt.Errorf("completion store is nil")
	}

	status, err := s.computeStatus(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	if len(status.MissingSteps) > 0 {
		return status, ErrIncomplete
	}

	if err := s.completion.SetOnboardingCompleted(ctx, userID, true); err != nil {
		return Status{}, fmt.Errorf("mark onboarding completed: %w", err)
	}
	status.Completed = true

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx,
			profilesvc.OnboardingStatusCacheKey(userID),
			profilesvc.OwnProfileCacheKey(userID),
			profilesvc.PublicProfileCacheKey(userID),
		)
	}

	return status, nil
}

func (s *Service) computeStatus(ctx context.Context, userID int64) (Status, error) {
	if s.profiles == nil {
		return Status{}, fmt.Errorf("profile reader is nil")
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profilesvc.ErrProfileNotFound) {
			profile = map[string]any{}
		} else {
			return Status{}, fmt.Errorf("load profile for onboarding: %w", err)
		}
	}

	missing := make([]string, 0, 5)
	if !hasText(profile["display_name"]) {
		missing = append(missing, StepDisplayName)
	}
	if !hasText(profile["dance_role"]) {
		missing = append(missing, StepDanceRole)
	}
	if !hasElements(profile["ritmos"]) {
		missing = append(missing, StepRitmos)
	}
	if !hasElements(profile["zonas"]) {
		missing = append(missing, StepZonas)
	}

	if s.photos != nil {
		count, err := s.photos.CountActivePhotos(ctx, userID)
		if err != nil {
			return Status{}, fmt.Errorf("count photos for onboarding: %w", err)
		}
		if count == 0 {
			missing = append(missing, StepPhoto)
		}
	}

	completed, _ := profile["onboarding_completed"].(bool)

	return Status{Completed: completed, MissingSteps: missing}, nil
}

func hasText(value any) bool {
	text, ok := value.(string)
	return ok && strings.TrimSpace(text) != ""
}

func hasElements(value any) bool {
	switch v := value.(type) {
	case []any:
		return len(v) > 0
	case []int64:
		return len(v) > 0
	case []float64:
		return len(v) > 0
	}
	return false
}

func statusToCache(status Status) map[string]any {
	steps := make([]any, 0, len(status.MissingSteps))
	for _, step := range status.MissingSteps {
		steps = append(steps, step)
	}
	return map[string]any{
		"completed":     status.Completed,
		"missing_steps": steps,
	}
}

func statusFromCache(entry map[string]any) Status {
	status := Status{MissingSteps: []string{}}
	status.Completed, _ = entry["completed"].(bool)
	if raw, ok := entry["missing_steps"].([]any); ok {
		for _, item := range raw {
			if step, ok := item.(string); ok {
				status.MissingSteps = append(status.MissingSteps, step)
			}
		}
	}
	return status
}
