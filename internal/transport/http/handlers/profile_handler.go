package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	profilesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/profiles"
	"github.com/AlonsoPV/baileApp-sub007/internal/transport/http/dto"
	httperrors "github.com/AlonsoPV/baileApp-sub007/internal/transport/http/errors"
)

type ProfileHandler struct {
	profiles *profilesvc.Service
	logger   *zap.Logger
}

func NewProfileHandler(profiles *profilesvc.Service, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{profiles: profiles, logger: logger}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.Get(r.Context(), identity.UserID)
	if err != nil {
		h.writeGetError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Public(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid profile id")
		return
	}

	profile, err := h.profiles.GetPublic(r.Context(), userID)
	if err != nil {
		h.writeGetError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profile)
}

// Save accepts a free-form candidate document. Unknown fields are not an
// error here; the pipeline drops what it does not accept.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	candidate := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.profiles.Save(r.Context(), identity.UserID, candidate)
	if err != nil {
		h.writeSaveError(w, err)
		return
	}

	response := dto.ProfileSaveResponse{
		NoChange:     result.NoChange,
		UsedFallback: result.UsedFallback,
	}
	if !result.NoChange {
		response.Patch = result.Patch
		response.UpdatedAt = result.UpdatedAt.UTC().Format(time.RFC3339)
	}

	httperrors.Write(w, http.StatusOK, response)
}

func (h *ProfileHandler) writeGetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrProfileNotFound):
		writeNotFound(w, "profile not found")
	case errors.Is(err, profilesvc.ErrUnauthorized):
		writeUnauthorized(w, "authentication required")
	default:
		h.logger.Error("profile read failed", zap.Error(err))
		writeInternal(w)
	}
}

func (h *ProfileHandler) writeSaveError(w http.ResponseWriter, err error) {
	if errors.Is(err, profilesvc.ErrUnauthorized) {
		writeUnauthorized(w, "authentication required")
		return
	}

	var saveErr *profilesvc.SaveError
	if errors.As(err, &saveErr) {
		status := http.StatusUnprocessableEntity
		if saveErr.Code == profilesvc.CodeNetworkTimeout {
			status = http.StatusGatewayTimeout
		}
		httperrors.Write(w, status, httperrors.APIError{
			Code:    saveErr.Code,
			Message: saveErr.Message,
		})
		return
	}

	h.logger.Error("profile save failed", zap.Error(err))
	writeInternal(w)
}
