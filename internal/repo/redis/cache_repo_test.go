package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestCacheRepo(t *testing.T) (*CacheRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewCacheRepo(client), mr
}

func TestCacheRepoRoundTrip(t *testing.T) {
	repo, _ := newTestCacheRepo(t)
	ctx := context.Background()

	entry := map[string]any{
		"display_name": "Ana",
		"ritmos":       []any{float64(1), float64(2)},
	}
	if err := repo.Set(ctx, "profiles:me:7", entry, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := repo.Get(ctx, "profiles:me:7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got["display_name"] != "Ana" {
		t.Fatalf("unexpected entry: %v", got)
	}
}

func TestCacheRepoMiss(t *testing.T) {
	repo, _ := newTestCacheRepo(t)

	_, ok, err := repo.Get(context.Background(), "profiles:me:404")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected cache miss")
	}
}

func TestCacheRepoCorruptEntryReadsAsMiss(t *testing.T) {
	repo, mr := newTestCacheRepo(t)
	mr.Set("profiles:me:7", "{not json")

	_, ok, err := repo.Get(context.Background(), "profiles:me:7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("corrupt entry must read as a miss")
	}
}

func TestCacheRepoInvalidate(t *testing.T) {
	repo, _ := newTestCacheRepo(t)
	ctx := context.Background()

	if err := repo.Set(ctx, "onboarding:status:7", map[string]any{"completed": false}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Invalidate(ctx, "onboarding:status:7", "media:list:7"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if _, ok, _ := repo.Get(ctx, "onboarding:status:7"); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestCacheRepoTTLApplied(t *testing.T) {
	repo, mr := newTestCacheRepo(t)
	ctx := context.Background()

	if err := repo.Set(ctx, "profiles:public:7", map[string]any{"bio": "hola"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, _ := repo.Get(ctx, "profiles:public:7"); ok {
		t.Fatalf("entry must expire with its ttl")
	}
}
