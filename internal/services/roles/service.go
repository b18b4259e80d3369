package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlonsoPV/baileApp-sub007/internal/domain/enums"
)

var (
	ErrInvalidRole     = errors.New("role cannot be requested")
	ErrRequestNotFound = errors.New("role request not found")
	ErrRequestPending  = errors.New("a pending request already exists")
)

type Request struct {
	ID        int64
	UserID    int64
	Role      string
	Note      string
	Status    string
	CreatedAt time.Time
	DecidedAt *time.Time
}

type RequestStore interface {
	Create(ctx context.Context, userID int64, role, note string) (Request, error)
	GetLatestByUser(ctx context.Context, userID int64) (Request, error)
	ListPending(ctx context.Context, limit int) ([]Request, error)
	Decide(ctx context.Context, requestID int64, status string, decidedAt time.Time) (Request, error)
}

type UserRoleStore interface {
	UpdateRole(ctx context.Context, userID int64, role string) error
}

type Service struct {
	requests RequestStore
	users    UserRoleStore
	now      func() time.Time
}

func NewService(requests RequestStore, users UserRoleStore) *Service {
	return &Service{
		requests: requests,
		users:    users,
		now:      time.Now,
	}
}

// Submit opens a request to become an organizer or instructor. Only one
// pending request per role is allowed; the store enforces that.
func (s *Service) Submit(ctx context.Context, userID int64, role, note string) (Request, error) {
	if userID <= 0 {
		return Request{}, fmt.Errorf("invalid user id")
	}
	role = strings.TrimSpace(strings.ToLower(role))
	if !enums.RequestableRole(role) {
		return Request{}, ErrInvalidRole
	}
	if s.requests == nil {
		return Request{}, fmt.Errorf("request store is nil")
	}

	request, err := s.requests.Create(ctx, userID, role, strings.TrimSpace(note))
	if err != nil {
		if errors.Is(err, ErrRequestPending) {
			return Request{}, ErrRequestPending
		}
		return Request{}, fmt.Errorf("submit role request: %w", err)
	}

	return request, nil
}

func (s *Service) Status(ctx context.Context, userID int64) (Request, error) {
	if userID <= 0 {
		return Request{}, ErrRequestNotFound
	}
	if s.requests == nil {
		return Request{}, fmt.Errorf("request store is nil")
	}

	return s.requests.GetLatestByUser(ctx, userID)
}

func (s *Service) Pending(ctx context.Context, limit int) ([]Request, error) {
	if s.requests == nil {
		return nil, fmt.Errorf("request store is nil")
	}

	requests, err := s.requests.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending role requests: %w", err)
	}

	return requests, nil
}

// Decide closes a pending request. Approval also promotes the user; a
// failed promotion leaves the request decided and surfaces the error.
func (s *Service) Decide(ctx context.Context, requestID int64, approve bool) (Request, error) {
	if requestID <= 0 {
		return Request{}, ErrRequestNotFound
	}
	if s.requests == nil || s.users == nil {
		return Request{}, fmt.Errorf("role dependencies are not configured")
	}

	status := string(enums.RequestStatusRejected)
	if approve {
		status = string(enums.RequestStatusApproved)
	}

	request, err := s.requests.Decide(ctx, requestID, status, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, fmt.Errorf("decide role request: %w", err)
	}

	if approve {
		if err := s.users.UpdateRole(ctx, request.UserID, request.Role); err != nil {
			return request, fmt.Errorf("promote user role: %w", err)
		}
	}

	return request, nil
}
