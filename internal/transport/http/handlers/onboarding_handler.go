package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	onboardingsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/onboarding"
	"github.com/AlonsoPV/baileApp-sub007/internal/transport/http/dto"
	httperrors "github.com/AlonsoPV/baileApp-sub007/internal/transport/http/errors"
)

type OnboardingHandler struct {
	onboarding *onboardingsvc.Service
	logger     *zap.Logger
}

func NewOnboardingHandler(onboarding *onboardingsvc.Service, logger *zap.Logger) *OnboardingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnboardingHandler{onboarding: onboarding, logger: logger}
}

func (h *OnboardingHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	status, err := h.onboarding.Status(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("onboarding status failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OnboardingStatusFromService(status))
}

func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	status, err := h.onboarding.Complete(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, onboardingsvc.ErrIncomplete) {
			// The body carries the remaining steps so the client can
			// send the user back to the right screen.
			httperrors.Write(w, http.StatusConflict, dto.OnboardingStatusFromService(status))
			return
		}
		h.logger.Error("onboarding complete failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OnboardingStatusFromService(status))
}
