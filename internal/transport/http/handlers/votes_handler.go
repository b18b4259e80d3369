package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	eventsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/events"
	votesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/votes"
	"github.com/AlonsoPV/baileApp-sub007/internal/transport/http/dto"
	httperrors "github.com/AlonsoPV/baileApp-sub007/internal/transport/http/errors"
)

type VotesHandler struct {
	votes  *votesvc.Service
	logger *zap.Logger
}

func NewVotesHandler(votes *votesvc.Service, logger *zap.Logger) *VotesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VotesHandler{votes: votes, logger: logger}
}

func (h *VotesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	eventID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid event id")
		return
	}

	state, err := h.votes.Toggle(r.Context(), identity.UserID, eventID)
	if err != nil {
		var rateErr *votesvc.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			w.Header().Set("Retry-After", strconv.FormatInt(rateErr.RetryAfterSec, 10))
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "RATE_LIMITED",
				Message:       "too many votes, slow down",
				RetryAfterSec: rateErr.RetryAfterSec,
			})
		case errors.Is(err, eventsvc.ErrEventNotFound):
			writeNotFound(w, "event not found")
		case errors.Is(err, votesvc.ErrEventArchived):
			writeConflict(w, "EVENT_ARCHIVED", "event is archived")
		case errors.Is(err, votesvc.ErrValidation):
			writeBadRequest(w, err.Error())
		default:
			h.logger.Error("toggle vote failed", zap.Error(err))
			writeInternal(w)
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.VoteStateFromService(state))
}

func (h *VotesHandler) Trending(w http.ResponseWriter, r *http.Request) {
	events, err := h.votes.Trending(r.Context())
	if err != nil {
		h.logger.Error("trending events failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.TrendingFromService(events))
}
