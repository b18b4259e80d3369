package roles

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRequestStore struct {
	requests []Request
	nextID   int64
}

func (f *fakeRequestStore) Create(_ context.Context, userID int64, role, note string) (Request, error) {
	for _, req := range f.requests {
		if req.UserID == userID && req.Role == role && req.Status == "pending" {
			return Request{}, ErrRequestPending
		}
	}
	f.nextID++
	req := Request{
		ID:        f.nextID,
		UserID:    userID,
		Role:      role,
		Note:      note,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}
	f.requests = append(f.requests, req)
	return req, nil
}

func (f *fakeRequestStore) GetLatestByUser(_ context.Context, userID int64) (Request, error) {
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].UserID == userID {
			return f.requests[i], nil
		}
	}
	return Request{}, ErrRequestNotFound
}

func (f *fakeRequestStore) ListPending(_ context.Context, limit int) ([]Request, error) {
	out := make([]Request, 0)
	for _, req := range f.requests {
		if req.Status == "pending" {
			out = append(out, req)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRequestStore) Decide(_ context.Context, requestID int64, status string, decidedAt time.Time) (Request, error) {
	for i := range f.requests {
		if f.requests[i].ID == requestID && f.requests[i].Status == "pending" {
			f.requests[i].Status = status
			f.requests[i].DecidedAt = &decidedAt
			return f.requests[i], nil
		}
	}
	return Request{}, ErrRequestNotFound
}

type fakeUserRoles struct {
	roles map[int64]string
}

func (f *fakeUserRoles) UpdateRole(_ context.Context, userID int64, role string) error {
	if f.roles == nil {
		f.roles = map[int64]string{}
	}
	f.roles[userID] = role
	return nil
}

func TestSubmitValidatesRole(t *testing.T) {
	svc := NewService(&fakeRequestStore{}, &fakeUserRoles{})
	ctx := context.Background()

	if _, err := svc.Submit(ctx, 7, "admin", ""); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("admin must not be requestable, got %v", err)
	}
	if _, err := svc.Submit(ctx, 7, "dancer", ""); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("dancer must not be requestable, got %v", err)
	}

	req, err := svc.Submit(ctx, 7, "  Organizer ", "run socials in CDMX")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.Role != "organizer" || req.Status != "pending" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestSubmitRejectsDuplicatePending(t *testing.T) {
	svc := NewService(&fakeRequestStore{}, &fakeUserRoles{})
	ctx := context.Background()

	if _, err := svc.Submit(ctx, 7, "organizer", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(ctx, 7, "organizer", ""); !errors.Is(err, ErrRequestPending) {
		t.Fatalf("expected ErrRequestPending, got %v", err)
	}
}

func TestDecideApprovePromotesUser(t *testing.T) {
	store := &fakeRequestStore{}
	users := &fakeUserRoles{}
	svc := NewService(store, users)
	ctx := context.Background()

	req, err := svc.Submit(ctx, 7, "instructor", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	decided, err := svc.Decide(ctx, req.ID, true)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != "approved" || decided.DecidedAt == nil {
		t.Fatalf("unexpected decided request: %+v", decided)
	}
	if users.roles[7] != "instructor" {
		t.Fatalf("user was not promoted: %v", users.roles)
	}

	// Already decided; a second decision must not find a pending row.
	if _, err := svc.Decide(ctx, req.ID, false); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestDecideRejectLeavesRoleAlone(t *testing.T) {
	store := &fakeRequestStore{}
	users := &fakeUserRoles{}
	svc := NewService(store, users)
	ctx := context.Background()

	req, err := svc.Submit(ctx, 7, "organizer", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	decided, err := svc.Decide(ctx, req.ID, false)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != "rejected" {
		t.Fatalf("unexpected status: %s", decided.Status)
	}
	if len(users.roles) != 0 {
		t.Fatalf("rejected request must not change roles: %v", users.roles)
	}
}
