package profiles

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeProfileStore struct {
	mu sync.Mutex

	record map[string]any
	getErr error

	applyErr   error
	applyBlock bool
	upsertErr  error

	getCalls    int
	applyCalls  int
	upsertCalls int

	lastApply  map[string]any
	lastUpsert map[string]any
}

func (f *fakeProfileStore) GetByUserID(ctx context.Context, userID int64) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.record == nil {
		return nil, ErrProfileNotFound
	}
	return f.record, nil
}

func (f *fakeProfileStore) ApplyPatch(ctx context.Context, userID int64, patch map[string]any) error {
	f.mu.Lock()
	f.applyCalls++
	f.lastApply = patch
	block := f.applyBlock
	err := f.applyErr
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *fakeProfileStore) UpsertPatch(ctx context.Context, userID int64, patch map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	f.lastUpsert = patch
	return f.upsertErr
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]map[string]any
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]map[string]any{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (map[string]any, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[key]
	return entry, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value map[string]any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func newTestService(store *fakeProfileStore, cache CacheStore) *Service {
	svc := NewService(store, cache, Config{
		PrimaryTimeout:  50 * time.Millisecond,
		FallbackTimeout: 30 * time.Millisecond,
		CacheTTL:        time.Minute,
	}, nil)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	return svc
}

func TestSaveRejectsMissingUser(t *testing.T) {
	svc := newTestService(&fakeProfileStore{}, newFakeCache())

	if _, err := svc.Save(context.Background(), 0, map[string]any{"bio": "hola"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSaveNoChangeSkipsRemoteWrites(t *testing.T) {
	store := &fakeProfileStore{record: map[string]any{
		"display_name": "Ana",
		"ritmos":       []any{float64(1), float64(2)},
	}}
	svc := newTestService(store, newFakeCache())

	res, err := svc.Save(context.Background(), 7, map[string]any{
		"display_name": "Ana",
		"ritmos":       []int64{1, 2},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !res.NoChange {
		t.Fatalf("expected NoChange result")
	}
	if store.applyCalls != 0 || store.upsertCalls != 0 {
		t.Fatalf("no-op save must not write: apply=%d upsert=%d", store.applyCalls, store.upsertCalls)
	}
}

func TestSaveBuildsMinimalPatch(t *testing.T) {
	store := &fakeProfileStore{record: map[string]any{
		"display_name": "Ana",
		"bio":          "bailo salsa",
	}}
	svc := newTestService(store, newFakeCache())

	res, err := svc.Save(context.Background(), 7, map[string]any{
		"display_name": "Ana",
		"bio":          "bailo salsa y bachata",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.NoChange {
		t.Fatalf("changed field must produce a patch")
	}
	if len(store.lastApply) != 1 || store.lastApply["bio"] != "bailo salsa y bachata" {
		t.Fatalf("unexpected patch: %v", store.lastApply)
	}
}

func TestSaveStripsForbiddenAndImmutableFields(t *testing.T) {
	store := &fakeProfileStore{record: map[string]any{"display_name": "Ana"}}
	svc := newTestService(store, newFakeCache())

	res, err := svc.Save(context.Background(), 7, map[string]any{
		"bio":                  "hola",
		"fotos":                []any{"hack.jpg"},
		"onboarding_completed": true,
		"user_id":              int64(999),
		"updated_at":           "2001-01-01",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.NoChange {
		t.Fatalf("bio change must survive stripping")
	}
	for _, field := range []string{"fotos", "onboarding_completed", "user_id", "updated_at"} {
		if _, ok := store.lastApply[field]; ok {
			t.Fatalf("field %q must never reach the store", field)
		}
	}
}

func TestSaveNormalizesSocialLinksAndIDs(t *testing.T) {
	store := &fakeProfileStore{record: map[string]any{"display_name": "Ana"}}
	svc := newTestService(store, newFakeCache())

	_, err := svc.Save(context.Background(), 7, map[string]any{
		"redes":  map[string]any{"whatsapp": "+52 55 1234 5678", "instagram": "  @ana "},
		"ritmos": []any{float64(2), "bad", float64(0), float64(5)},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	redes, ok := store.lastApply["redes"].(map[string]any)
	if !ok {
		t.Fatalf("redes missing from patch: %v", store.lastApply)
	}
	if redes["whatsapp"] != "525512345678" {
		t.Fatalf("unexpected whatsapp: %v", redes["whatsapp"])
	}
	if redes["instagram"] != "@ana" {
		t.Fatalf("unexpected instagram: %v", redes["instagram"])
	}

	ids, ok := store.lastApply["ritmos"].([]int64)
	if !ok || len(ids) != 2 || ids[0] != 2 || ids[1] != 5 {
		t.Fatalf("unexpected ritmos: %v", store.lastApply["ritmos"])
	}
}

func TestSaveValidatesDanceRole(t *testing.T) {
	store := &fakeProfileStore{record: map[string]any{"display_name": "Ana"}}
	svc := newTestService(store, newFakeCache())

	if _, err := svc.Save(context.Background(), 7, map[string]any{"dance_role": " Follow "}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.lastApply["dance_role"] != "follow" {
		t.Fatalf("unexpected dance_role: %v", store.lastApply["dance_role"])
	}

	result, err := svc.Save(context.Background(), 8, map[string]any{"dance_role": "spin"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !result.NoChange {
		t.Fatalf("unknown dance_role must be dropped, got patch %v", result.Patch)
	}
}

// Two saves computed against the same previous snapshot resolve by last
// write wins: there is no version check, so the second patch silently
// overwrites the first in both the store and the cache.
func TestSaveRacingSavesLastWriteWins(t *testing.T) {
	store := &fakeProfileStore{record: map[string]any{
		"display_name": "Ana",
		"bio":          "vieja",
	}}
	cache := newFakeCache()
	svc := newTestService(store, cache)

	first, err := svc.Save(context.Background(), 7, map[string]any{"bio": "primera"})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if first.Patch["bio"] != "primera" {
		t.Fatalf("unexpected first patch: %v", first.Patch)
	}

	// Drop the cached read so the second save loads the store record,
	// which still holds the snapshot the first save started from.
	cache.mu.Lock()
	delete(cache.entries, "profiles:me:7")
	cache.mu.Unlock()

	second, err := svc.Save(context.Background(), 7, map[string]any{"bio": "segunda"})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.Patch["bio"] != "segunda" {
		t.Fatalf("unexpected second patch: %v", second.Patch)
	}

	if store.applyCalls != 2 {
		t.Fatalf("both saves must reach the store, got %d writes", store.applyCalls)
	}
	if store.lastApply["bio"] != "segunda" {
		t.Fatalf("second write must win at the store: %v", store.lastApply)
	}

	me, _, _ := cache.Get(context.Background(), "profiles:me:7")
	if me["bio"] != "segunda" {
		t.Fatalf("second write must win in the cache: %v", me)
	}
	if me["updated_at"] != second.UpdatedAt.Format(time.RFC3339) {
		t.Fatalf("cache must carry the second save's stamp: %v", me["updated_at"])
	}
}

func TestSaveMergesNestedObjectsAgainstPrevious(t *testing.T) {
	store := &fakeProfileStore{record: map[string]any{
		"respuestas": map[string]any{"estilo": "cubano", "historia": "2015"},
	}}
	svc := newTestService(store, newFakeCache())

	_, err := svc.Save(context.Background(), 7, map[string]any{
		"respuestas": map[string]any{"estilo": "lineal"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	respuestas, ok := store.lastApply["respuestas"].(map[string]any)
	if !ok {
		t.Fatalf("respuestas missing: %v", store.lastApply)
	}
	if respuestas["estilo"] != "lineal" || respuestas["historia"] != "2015" {
		t.Fatalf("patch must carry the full merged object: %v", respuestas)
	}
}

func TestSaveFirstSaveStartsFromEmpty(t *testing.T) {
	store := &fakeProfileStore{}
	svc := newTestService(store, newFakeCache())

	res, err := svc.Save(context.Background(), 7, map[string]any{"display_name": "Ana"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.NoChange {
		t.Fatalf("first save with data must not be a no-op")
	}
	if store.lastApply["display_name"] != "Ana" {
		t.Fatalf("unexpected patch: %v", store.lastApply)
	}
}

func TestSaveFallsBackWhenPrimaryFails(t *testing.T) {
	store := &fakeProfileStore{
		record:   map[string]any{"display_name": "Ana"},
		applyErr: errors.New("rpc unavailable"),
	}
	svc := newTestService(store, newFakeCache())

	res, err := svc.Save(context.Background(), 7, map[string]any{"bio": "hola"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !res.UsedFallback {
		t.Fatalf("expected fallback path")
	}
	if store.upsertCalls != 1 {
		t.Fatalf("expected one upsert, got %d", store.upsertCalls)
	}
	if store.lastUpsert["bio"] != "hola" {
		t.Fatalf("fallback must send the same patch: %v", store.lastUpsert)
	}
}

func TestSaveTimeoutYieldsFriendlyError(t *testing.T) {
	store := &fakeProfileStore{
		record:     map[string]any{"display_name": "Ana"},
		applyBlock: true,
		upsertErr:  context.DeadlineExceeded,
	}
	svc := newTestService(store, newFakeCache())
	svc.cfg.PrimaryTimeout = 20 * time.Millisecond
	svc.cfg.FallbackTimeout = 10 * time.Millisecond

	start := time.Now()
	_, err := svc.Save(context.Background(), 7, map[string]any{"bio": "hola"})
	elapsed := time.Since(start)

	var saveErr *SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected *SaveError, got %v", err)
	}
	if saveErr.Code != CodeNetworkTimeout {
		t.Fatalf("unexpected code: %s", saveErr.Code)
	}
	if saveErr.Message != friendlyTimeoutMessage {
		t.Fatalf("unexpected message: %s", saveErr.Message)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("save must respect deadlines, took %s", elapsed)
	}
}

func TestSaveRemoteRejectionKeepsCodeAndMessage(t *testing.T) {
	store := &fakeProfileStore{
		record:    map[string]any{"display_name": "Ana"},
		applyErr:  errors.New("rpc unavailable"),
		upsertErr: &RejectionError{Code: "23514", Message: "bio exceeds length limit"},
	}
	svc := newTestService(store, newFakeCache())

	_, err := svc.Save(context.Background(), 7, map[string]any{"bio": strings.Repeat("x", 5000)})

	var saveErr *SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected *SaveError, got %v", err)
	}
	if saveErr.Code != CodeRemoteRejected {
		t.Fatalf("unexpected code: %s", saveErr.Code)
	}
	if saveErr.Message != "bio exceeds length limit" {
		t.Fatalf("unexpected message: %s", saveErr.Message)
	}
}

func TestSavePatchesExistingCacheEntries(t *testing.T) {
	store := &fakeProfileStore{record: map[string]any{"display_name": "Ana", "bio": "vieja"}}
	cache := newFakeCache()
	cache.entries["profiles:me:7"] = map[string]any{"display_name": "Ana", "bio": "vieja"}
	cache.entries["profiles:public:7"] = map[string]any{"display_name": "Ana"}
	svc := newTestService(store, cache)

	res, err := svc.Save(context.Background(), 7, map[string]any{"bio": "nueva"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	me, _, _ := cache.Get(context.Background(), "profiles:me:7")
	if me["bio"] != "nueva" || me["display_name"] != "Ana" {
		t.Fatalf("own cache entry not patched: %v", me)
	}
	if me["updated_at"] != res.UpdatedAt.Format(time.RFC3339) {
		t.Fatalf("updated_at stamp missing: %v", me["updated_at"])
	}

	public, _, _ := cache.Get(context.Background(), "profiles:public:7")
	if public["bio"] != "nueva" {
		t.Fatalf("public cache entry not patched: %v", public)
	}
}

func TestSaveDoesNotSeedAbsentCacheEntries(t *testing.T) {
	store := &fakeProfileStore{record: map[string]any{"display_name": "Ana"}}
	cache := newFakeCache()
	svc := newTestService(store, cache)

	if _, err := svc.Save(context.Background(), 7, map[string]any{"bio": "hola"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// loadPrevious seeds profiles:me; the public entry was never cached and
	// must stay absent rather than holding a partial record.
	if _, ok, _ := cache.Get(context.Background(), "profiles:public:7"); ok {
		t.Fatalf("public entry must not be created from a patch")
	}
}

func TestSaveReadRetriesOnceOnTransientError(t *testing.T) {
	store := &fakeProfileStore{getErr: errors.New("connection reset")}
	svc := newTestService(store, newFakeCache())

	_, err := svc.Save(context.Background(), 7, map[string]any{"bio": "hola"})
	if err == nil {
		t.Fatalf("expected error when both reads fail")
	}
	if store.getCalls != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", store.getCalls)
	}
}

func TestGetCacheFirstThenStore(t *testing.T) {
	store := &fakeProfileStore{record: map[string]any{"display_name": "Ana"}}
	cache := newFakeCache()
	svc := newTestService(store, cache)

	first, err := svc.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first["display_name"] != "Ana" {
		t.Fatalf("unexpected profile: %v", first)
	}
	if store.getCalls != 1 {
		t.Fatalf("expected one store read, got %d", store.getCalls)
	}

	if _, err := svc.Get(context.Background(), 7); err != nil {
		t.Fatalf("get: %v", err)
	}
	if store.getCalls != 1 {
		t.Fatalf("second get must hit the cache, got %d store reads", store.getCalls)
	}
}

func TestGetUnknownProfile(t *testing.T) {
	svc := newTestService(&fakeProfileStore{}, newFakeCache())

	if _, err := svc.Get(context.Background(), 7); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
