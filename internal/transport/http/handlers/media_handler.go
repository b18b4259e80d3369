package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	mediasvc "github.com/AlonsoPV/baileApp-sub007/internal/services/media"
	"github.com/AlonsoPV/baileApp-sub007/internal/transport/http/dto"
	httperrors "github.com/AlonsoPV/baileApp-sub007/internal/transport/http/errors"
)

const maxPhotoBytes = 10 << 20

type MediaHandler struct {
	media  *mediasvc.Service
	logger *zap.Logger
}

func NewMediaHandler(media *mediasvc.Service, logger *zap.Logger) *MediaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaHandler{media: media, logger: logger}
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeBadRequest(w, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeBadRequest(w, "photo file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	photo, err := h.media.UploadPhoto(r.Context(), identity.UserID, header.Filename, contentType, file, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, mediasvc.ErrPhotoLimitReached):
			writeConflict(w, "PHOTO_LIMIT", "active photo limit reached")
		case errors.Is(err, mediasvc.ErrValidation):
			writeBadRequest(w, err.Error())
		default:
			h.logger.Error("photo upload failed", zap.Error(err))
			writeInternal(w)
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.PhotoFromService(photo))
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	photos, err := h.media.ListPhotos(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("list photos failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PhotoListFromService(photos))
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	mediaID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid photo id")
		return
	}

	if err := h.media.DeletePhoto(r.Context(), identity.UserID, mediaID); err != nil {
		if errors.Is(err, mediasvc.ErrPhotoNotFound) {
			writeNotFound(w, "photo not found")
			return
		}
		h.logger.Error("delete photo failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}
