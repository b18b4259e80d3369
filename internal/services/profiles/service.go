package profiles

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AlonsoPV/baileApp-sub007/internal/domain/enums"
	"github.com/AlonsoPV/baileApp-sub007/internal/patch"
)

const (
	defaultPrimaryTimeout  = 30 * time.Second
	defaultFallbackTimeout = 10 * time.Second
	defaultCacheTTL        = 10 * time.Minute
	derivedInvalidateLimit = 5 * time.Second
)

// ProfileStore is the remote collaborator: one read shape and two write
// shapes. ApplyPatch is the server-side merge procedure; UpsertPatch is the
// direct insert-or-update fallback. Both receive the same client-side
// merged patch so their results cannot diverge.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (map[string]any, error)
	ApplyPatch(ctx context.Context, userID int64, patch map[string]any) error
	UpsertPatch(ctx context.Context, userID int64, patch map[string]any) error
}

// CacheStore is the local cache port. Tests inject an in-memory map; the
// app wires the redis-backed repo.
type CacheStore interface {
	Get(ctx context.Context, key string) (map[string]any, bool, error)
	Set(ctx context.Context, key string, value map[string]any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type Config struct {
	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration
	CacheTTL        time.Duration
}

type SaveResult struct {
	// NoChange is set when the computed patch was empty; no remote call
	// was made and nothing else in the result is meaningful.
	NoChange     bool
	Patch        map[string]any
	UpdatedAt    time.Time
	UsedFallback bool
}

type Service struct {
	store  ProfileStore
	cache  CacheStore
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store ProfileStore, cache CacheStore, cfg Config, logger *zap.Logger) *Service {
	if cfg.PrimaryTimeout <= 0 {
		cfg.PrimaryTimeout = defaultPrimaryTimeout
	}
	if cfg.FallbackTimeout <= 0 {
		cfg.FallbackTimeout = defaultFallbackTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:  store,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Save runs the reconciliation pipeline for one candidate update:
// normalize, merge against the previous state, diff down to a minimal
// patch, then write remotely under a deadline with a single fallback
// attempt. Racing saves for the same profile are last-write-wins; there is
// no per-entity lock or version check.
func (s *Service) Save(ctx context.Context, userID int64, candidate map[string]any) (SaveResult, error) {
	if userID <= 0 {
		return SaveResult{}, ErrUnauthorized
	}
	if s.store == nil {
		return SaveResult{}, fmt.Errorf("profile store is nil")
	}

	prev, err := s.loadPrevious(ctx, userID)
	if err != nil {
		return SaveResult{}, fmt.Errorf("load previous profile state: %w", err)
	}

	cleaned := s.normalizeCandidate(prev, candidate)
	effective := MergeProfile(prev, cleaned)
	diff := patch.BuildSafePatch(prev, effective, patch.Options{
		AllowEmptyArrays: allowedEmptyArrayFields,
	})
	if len(diff) == 0 {
		return SaveResult{NoChange: true}, nil
	}

	start := s.now()
	primaryErr := s.writeWithDeadline(ctx, s.cfg.PrimaryTimeout, func(ctx context.Context) error {
		return s.store.ApplyPatch(ctx, userID, diff)
	})

	usedFallback := false
	if primaryErr != nil {
		s.logger.Warn("primary profile write failed, trying fallback upsert",
			zap.Int64("user_id", userID),
			zap.Bool("timeout", isTimeoutErr(primaryErr)),
			zap.Error(primaryErr),
		)
		usedFallback = true
		fallbackErr := s.writeWithDeadline(ctx, s.cfg.FallbackTimeout, func(ctx context.Context) error {
			return s.store.UpsertPatch(ctx, userID, diff)
		})
		if fallbackErr != nil {
			return SaveResult{}, s.terminalSaveError(fallbackErr, s.now().Sub(start))
		}
	}

	updatedAt := s.now().UTC()
	s.patchCaches(ctx, userID, diff, updatedAt)
	s.invalidateDerived(userID)

	return SaveResult{
		Patch:        diff,
		UpdatedAt:    updatedAt,
		UsedFallback: usedFallback,
	}, nil
}

// Get returns the profile in its generic map form, cache-first.
func (s *Service) Get(ctx context.Context, userID int64) (map[string]any, error) {
	return s.get(ctx, userID, OwnProfileCacheKey(userID))
}

// GetPublic is the same record under the public-view cache key, so an
// optimistic save update reaches both views.
func (s *Service) GetPublic(ctx context.Context, userID int64) (map[string]any, error) {
	return s.get(ctx, userID, PublicProfileCacheKey(userID))
}

func (s *Service) get(ctx context.Context, userID int64, cacheKey string) (map[string]any, error) {
	if userID <= 0 {
		return nil, ErrProfileNotFound
	}
	if s.store == nil {
		return nil, fmt.Errorf("profile store is nil")
	}

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			return cached, nil
		}
	}

	record, err := s.readWithRetry(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, record, s.cfg.CacheTTL); err != nil {
			s.logger.Debug("seed profile cache failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return record, nil
}

// loadPrevious resolves the Previous State for a save. A missing profile is
// not an error here: the first save starts from an empty record.
func (s *Service) loadPrevious(ctx context.Context, userID int64) (map[string]any, error) {
	key := OwnProfileCacheKey(userID)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Debug("profile cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	record, err := s.readWithRetry(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, record, s.cfg.CacheTTL); err != nil {
			s.logger.Debug("seed profile cache failed", zap.String("key", key), zap.Error(err))
		}
	}

	return record, nil
}

// readWithRetry retries the store read once. Not-found is final, never
// retried.
func (s *Service) readWithRetry(ctx context.Context, userID int64) (map[string]any, error) {
	record, err := s.store.GetByUserID(ctx, userID)
	if err == nil || errors.Is(err, ErrProfileNotFound) {
		return record, err
	}

	s.logger.Debug("profile read failed, retrying once", zap.Int64("user_id", userID), zap.Error(err))
	record, err = s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return record, nil
}

// normalizeCandidate strips owned fields and cleans the candidate's nested
// sub-objects, deep-merging them with the previous nested values first so
// the patch carries the full effective object on either write path.
func (s *Service) normalizeCandidate(prev, raw map[string]any) map[string]any {
	cand := make(map[string]any, len(raw))
	for k, v := range raw {
		cand[k] = v
	}
	for _, k := range forbiddenFields {
		delete(cand, k)
	}
	for _, k := range immutableFields {
		delete(cand, k)
	}

	if value, ok := cand[fieldRespuestas]; ok {
		merged := patch.DeepMerge(nestedRecord(prev[fieldRespuestas]), nestedRecord(value))
		cand[fieldRespuestas] = NormalizeAnswers(merged)
	}
	if value, ok := cand[fieldRedes]; ok {
		merged := patch.DeepMerge(nestedRecord(prev[fieldRedes]), nestedRecord(value))
		cand[fieldRedes] = NormalizeSocialLinks(merged)
	}
	if value, ok := cand[fieldDanceRole]; ok {
		if text, isText := value.(string); isText {
			role := strings.ToLower(strings.TrimSpace(text))
			if enums.ValidDanceRole(role) {
				cand[fieldDanceRole] = role
			} else {
				// An unknown role never reaches the remote side.
				delete(cand, fieldDanceRole)
			}
		}
	}
	if value, ok := cand[fieldRitmos]; ok {
		cand[fieldRitmos] = EnsureIDList(value)
	}
	if value, ok := cand[fieldZonas]; ok {
		cand[fieldZonas] = EnsureIDList(value)
	}
	if value, ok := cand[fieldPremios]; ok {
		cand[fieldPremios] = ensureStringList(value)
	}

	return cand
}

func (s *Service) writeWithDeadline(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(wctx)
}

// terminalSaveError shapes the fallback failure for the caller. Timeouts
// and aborts become the friendly NETWORK_TIMEOUT error; structured remote
// rejections keep their code and message; anything else propagates as-is.
func (s *Service) terminalSaveError(err error, elapsed time.Duration) error {
	if isTimeoutErr(err) {
		return &SaveError{
			Code:    CodeNetworkTimeout,
			Message: friendlyTimeoutMessage,
			Elapsed: elapsed,
			Err:     err,
		}
	}

	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return &SaveError{
			Code:    CodeRemoteRejected,
			Message: rejection.Message,
			Elapsed: elapsed,
			Err:     err,
		}
	}

	return err
}

// patchCaches deep-merges the patch into every cache entry for this
// profile and stamps the update time. Optimistic: the UI sees the change
// before any refetch completes.
func (s *Service) patchCaches(ctx context.Context, userID int64, diff map[string]any, updatedAt time.Time) {
	if s.cache == nil {
		return
	}

	stamped := make(map[string]any, len(diff)+1)
	for k, v := range diff {
		stamped[k] = v
	}
	stamped["updated_at"] = updatedAt.Format(time.RFC3339)

	for _, key := range []string{OwnProfileCacheKey(userID), PublicProfileCacheKey(userID)} {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		if err := s.cache.Set(ctx, key, patch.DeepMerge(cached, stamped), s.cfg.CacheTTL); err != nil {
			s.logger.Warn("optimistic cache update failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// invalidateDerived refreshes dependent cached views (onboarding status,
// media listing) in the background. Failures are logged, never surfaced.
func (s *Service) invalidateDerived(userID int64) {
	if s.cache == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), derivedInvalidateLimit)
		defer cancel()
		keys := []string{
			OnboardingStatusCacheKey(userID),
			MediaListCacheKey(userID),
		}
		if err := s.cache.Invalidate(ctx, keys...); err != nil {
			s.logger.Warn("invalidate derived caches failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}()
}

func OwnProfileCacheKey(userID int64) string {
	return "profiles:me:" + strconv.FormatInt(userID, 10)
}

func PublicProfileCacheKey(userID int64) string {
	return "profiles:public:" + strconv.FormatInt(userID, 10)
}

func OnboardingStatusCacheKey(userID int64) string {
	return "onboarding:status:" + strconv.FormatInt(userID, 10)
}

func MediaListCacheKey(userID int64) string {
	return "media:list:" + strconv.FormatInt(userID, 10)
}
