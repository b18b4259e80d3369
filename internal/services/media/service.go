package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrPhotoLimitReached = errors.New("photo limit reached")
	ErrPhotoNotFound     = errors.New("photo not found")
)

const (
	signedURLTTL    = 5 * time.Minute
	maxActivePhotos = 6
)

type Store interface {
	CreatePhoto(ctx context.Context, userID int64, objectKey string) (PhotoRecord, error)
	ListActivePhotos(ctx context.Context, userID int64) ([]PhotoRecord, error)
	DeletePhoto(ctx context.Context, userID, mediaID int64) (string, error)
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutPhoto(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// CacheInvalidator drops cached listings after a write. Nil is fine.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

type Service struct {
	store    Store
	storage  ObjectStorage
	cache    CacheInvalidator
	cacheKey func(userID int64) string
	now      func() time.Time
}

type PhotoRecord struct {
	ID        int64
	Position  int
	ObjectKey string
	CreatedAt time.Time
}

type Photo struct {
	ID        int64
	Position  int
	URL       string
	CreatedAt time.Time
}

func NewService(store Store, storage ObjectStorage, cache CacheInvalidator, cacheKey func(userID int64) string) *Service {
	return &Service{
		store:    store,
		storage:  storage,
		cache:    cache,
		cacheKey: cacheKey,
		now:      time.Now,
	}
}

func (s *Service) UploadPhoto(ctx context.Context, userID int64, fileName, contentType string, body io.Reader, size int64) (Photo, error) {
	if userID <= 0 || body == nil || size <= 0 {
		return Photo{}, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return Photo{}, fmt.Errorf("media dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Photo{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey := buildPhotoObjectKey(userID, fileName)
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutPhoto(ctx, objectKey, body, size, contentType); err != nil {
		return Photo{}, fmt.Errorf("put object: %w", err)
	}

	record, err := s.store.CreatePhoto(ctx, userID, objectKey)
	if err != nil {
		// The object is orphaned otherwise.
		_ = s.storage.Delete(ctx, objectKey)
		if errors.Is(err, ErrPhotoLimitReached) {
			return Photo{}, ErrPhotoLimitReached
		}
		return Photo{}, fmt.Errorf("create photo record: %w", err)
	}

	s.invalidateListing(ctx, userID)

	url, err := s.storage.PresignGet(ctx, record.ObjectKey, signedURLTTL)
	if err != nil {
		return Photo{}, fmt.Errorf("presign photo url: %w", err)
	}

	return Photo{
		ID:        record.ID,
		Position:  record.Position,
		URL:       url,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (s *Service) ListPhotos(ctx context.Context, userID int64) ([]Photo, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return nil, fmt.Errorf("media dependencies are not configured")
	}

	records, err := s.store.ListActivePhotos(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list media records: %w", err)
	}

	photos := make([]Photo, 0, len(records))
	for _, rec := range records {
		url, err := s.storage.PresignGet(ctx, rec.ObjectKey, signedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("presign photo url: %w", err)
		}
		photos = append(photos, Photo{
			ID:        rec.ID,
			Position:  rec.Position,
			URL:       url,
			CreatedAt: rec.CreatedAt,
		})
	}

	return photos, nil
}

func (s *Service) DeletePhoto(ctx context.Context, userID, mediaID int64) error {
	if userID <= 0 || mediaID <= 0 {
		return ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return fmt.Errorf("media dependencies are not configured")
	}

	objectKey, err := s.store.DeletePhoto(ctx, userID, mediaID)
	if err != nil {
		if errors.Is(err, ErrPhotoNotFound) {
			return ErrPhotoNotFound
		}
		return fmt.Errorf("delete photo record: %w", err)
	}

	if err := s.storage.Delete(ctx, objectKey); err != nil {
		return fmt.Errorf("delete photo object: %w", err)
	}

	s.invalidateListing(ctx, userID)

	return nil
}

func (s *Service) invalidateListing(ctx context.Context, userID int64) {
	if s.cache == nil || s.cacheKey == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, s.cacheKey(userID))
}

func buildPhotoObjectKey(userID int64, fileName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("users/%d/photos/%s%s", userID, uuid.NewString(), ext)
}

func MaxActivePhotos() int {
	return maxActivePhotos
}
