package onboarding

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	profilesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/profiles"
)

type fakeProfileReader struct {
	profile map[string]any
	err     error
}

func (f *fakeProfileReader) Get(_ context.Context, _ int64) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakePhotoCounter struct {
	count int
}

func (f *fakePhotoCounter) CountActivePhotos(_ context.Context, _ int64) (int, error) {
	return f.count, nil
}

type fakeCompletion struct {
	completedFor []int64
}

func (f *fakeCompletion) SetOnboardingCompleted(_ context.Context, userID int64, completed bool) error {
	if completed {
		f.completedFor = append(f.completedFor, userID)
	}
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]map[string]any
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]map[string]any{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (map[string]any, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[key]
	return entry, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value map[string]any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func completeProfile() map[string]any {
	return map[string]any{
		"display_name": "Ana",
		"dance_role":   "follow",
		"ritmos":       []any{float64(1)},
		"zonas":        []any{float64(2)},
	}
}

func TestStatusReportsMissingSteps(t *testing.T) {
	reader := &fakeProfileReader{profile: map[string]any{"display_name": "Ana"}}
	svc := NewService(reader, &fakePhotoCounter{count: 0}, &fakeCompletion{}, nil)

	status, err := svc.Status(context.Background(), 7)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Completed {
		t.Fatalf("must not be completed")
	}
	want := []string{StepDanceRole, StepRitmos, StepZonas, StepPhoto}
	if !reflect.DeepEqual(status.MissingSteps, want) {
		t.Fatalf("unexpected missing steps: %v", status.MissingSteps)
	}
}

func TestStatusMissingProfileMeansEverythingMissing(t *testing.T) {
	reader := &fakeProfileReader{err: profilesvc.ErrProfileNotFound}
	svc := NewService(reader, &fakePhotoCounter{count: 0}, &fakeCompletion{}, nil)

	status, err := svc.Status(context.Background(), 7)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status.MissingSteps) != 5 {
		t.Fatalf("expected all steps missing, got %v", status.MissingSteps)
	}
}

func TestStatusUsesCache(t *testing.T) {
	cache := newFakeCache()
	reader := &fakeProfileReader{profile: completeProfile()}
	svc := NewService(reader, &fakePhotoCounter{count: 1}, &fakeCompletion{}, cache)
	ctx := context.Background()

	if _, err := svc.Status(ctx, 7); err != nil {
		t.Fatalf("status: %v", err)
	}

	// A later read must come from cache even if the profile changed.
	reader.profile = map[string]any{}
	status, err := svc.Status(ctx, 7)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status.MissingSteps) != 0 {
		t.Fatalf("expected cached status, got %v", status.MissingSteps)
	}
}

func TestCompleteRefusesWithMissingSteps(t *testing.T) {
	reader := &fakeProfileReader{profile: map[string]any{"display_name": "Ana"}}
	completion := &fakeCompletion{}
	svc := NewService(reader, &fakePhotoCounter{count: 0}, completion, nil)

	status, err := svc.Complete(context.Background(), 7)
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if len(status.MissingSteps) == 0 {
		t.Fatalf("missing steps must accompany the error")
	}
	if len(completion.completedFor) != 0 {
		t.Fatalf("completion must not be written")
	}
}

func TestCompleteMarksDoneAndInvalidatesCaches(t *testing.T) {
	cache := newFakeCache()
	reader := &fakeProfileReader{profile: completeProfile()}
	completion := &fakeCompletion{}
	svc := NewService(reader, &fakePhotoCounter{count: 2}, completion, cache)

	status, err := svc.Complete(context.Background(), 7)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !status.Completed {
		t.Fatalf("expected completed status")
	}
	if len(completion.completedFor) != 1 || completion.completedFor[0] != 7 {
		t.Fatalf("completion not written: %v", completion.completedFor)
	}

	wantKeys := map[string]bool{
		profilesvc.OnboardingStatusCacheKey(7): false,
		profilesvc.OwnProfileCacheKey(7):       false,
		profilesvc.PublicProfileCacheKey(7):    false,
	}
	for _, key := range cache.deleted {
		if _, ok := wantKeys[key]; ok {
			wantKeys[key] = true
		}
	}
	for key, seen := range wantKeys {
		if !seen {
			t.Fatalf("expected invalidation of %s", key)
		}
	}
}
