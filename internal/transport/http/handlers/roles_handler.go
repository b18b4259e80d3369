package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	rolesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/roles"
	"github.com/AlonsoPV/baileApp-sub007/internal/transport/http/dto"
	httperrors "github.com/AlonsoPV/baileApp-sub007/internal/transport/http/errors"
)

type RolesHandler struct {
	roles  *rolesvc.Service
	logger *zap.Logger
}

func NewRolesHandler(roles *rolesvc.Service, logger *zap.Logger) *RolesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolesHandler{roles: roles, logger: logger}
}

func (h *RolesHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.RoleRequestCreate
	if !decodeJSON(w, r, &req) {
		return
	}

	request, err := h.roles.Submit(r.Context(), identity.UserID, req.Role, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, rolesvc.ErrInvalidRole):
			writeBadRequest(w, "role cannot be requested")
		case errors.Is(err, rolesvc.ErrRequestPending):
			writeConflict(w, "REQUEST_PENDING", "a pending request already exists")
		default:
			h.logger.Error("submit role request failed", zap.Error(err))
			writeInternal(w)
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.RoleRequestFromService(request))
}

func (h *RolesHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	request, err := h.roles.Status(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, rolesvc.ErrRequestNotFound) {
			writeNotFound(w, "no role request")
			return
		}
		h.logger.Error("role request status failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RoleRequestFromService(request))
}

func (h *RolesHandler) Pending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.roles.Pending(r.Context(), queryInt(r, "limit"))
	if err != nil {
		h.logger.Error("list pending role requests failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RoleRequestListFromService(requests))
}

func (h *RolesHandler) Decide(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid request id")
		return
	}

	var req dto.RoleRequestDecision
	if !decodeJSON(w, r, &req) {
		return
	}

	request, err := h.roles.Decide(r.Context(), requestID, req.Approve)
	if err != nil {
		if errors.Is(err, rolesvc.ErrRequestNotFound) {
			writeNotFound(w, "pending request not found")
			return
		}
		h.logger.Error("decide role request failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RoleRequestFromService(request))
}
