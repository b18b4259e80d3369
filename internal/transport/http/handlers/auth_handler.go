package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	authsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/auth"
	"github.com/AlonsoPV/baileApp-sub007/internal/transport/http/dto"
	httperrors "github.com/AlonsoPV/baileApp-sub007/internal/transport/http/errors"
)

type AuthHandler struct {
	auth   *authsvc.Service
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthHandler(auth *authsvc.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: auth, logger: logger, now: time.Now}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailTaken):
			writeConflict(w, "EMAIL_TAKEN", "email already registered")
		case errors.Is(err, authsvc.ErrInvalidInput):
			writeBadRequest(w, "invalid email or password")
		default:
			h.logger.Error("register failed", zap.Error(err))
			writeInternal(w)
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, h.tokensResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidCredentials), errors.Is(err, authsvc.ErrInvalidInput):
			writeUnauthorized(w, "invalid email or password")
		default:
			h.logger.Error("login failed", zap.Error(err))
			writeInternal(w)
		}
		return
	}

	httperrors.Write(w, http.StatusOK, h.tokensResponse(result))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	result, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrUnauthorized),
			errors.Is(err, authsvc.ErrRefreshNotFound),
			errors.Is(err, authsvc.ErrSessionNotFound):
			writeUnauthorized(w, "invalid refresh token")
		default:
			h.logger.Error("refresh failed", zap.Error(err))
			writeInternal(w)
		}
		return
	}

	httperrors.Write(w, http.StatusOK, h.tokensResponse(result))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	me, err := h.auth.Me(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, authsvc.ErrUnauthorized) {
			writeUnauthorized(w, "authentication required")
			return
		}
		h.logger.Error("load account failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MeResponse{
		ID:    me.ID,
		Email: me.Email,
		Role:  me.Role,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.auth.Logout(r.Context(), identity.SID); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.auth.LogoutAll(r.Context(), identity.UserID); err != nil {
		h.logger.Error("logout all failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AuthHandler) tokensResponse(result authsvc.AuthResult) dto.AuthTokensResponse {
	expiresIn := int64(result.AccessExpires.Sub(h.now()).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return dto.AuthTokensFromResult(result, expiresIn)
}
