package dto

import (
	"time"

	rolesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/roles"
)

type RoleRequestCreate struct {
	Role string `json:"role"`
	Note string `json:"note"`
}

type RoleRequestDecision struct {
	Approve bool `json:"approve"`
}

type RoleRequestResponse struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Role      string     `json:"role"`
	Note      string     `json:"note,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

type RoleRequestListResponse struct {
	Requests []RoleRequestResponse `json:"requests"`
}

func RoleRequestFromService(request rolesvc.Request) RoleRequestResponse {
	return RoleRequestResponse{
		ID:        request.ID,
		UserID:    request.UserID,
		Role:      request.Role,
		Note:      request.Note,
		Status:    request.Status,
		CreatedAt: request.CreatedAt,
		DecidedAt: request.DecidedAt,
	}
}

func RoleRequestListFromService(requests []rolesvc.Request) RoleRequestListResponse {
	out := RoleRequestListResponse{Requests: make([]RoleRequestResponse, 0, len(requests))}
	for _, request := range requests {
		out.Requests = append(out.Requests, RoleRequestFromService(request))
	}
	return out
}
