package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	eventsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/events"
	"github.com/AlonsoPV/baileApp-sub007/internal/transport/http/dto"
	httperrors "github.com/AlonsoPV/baileApp-sub007/internal/transport/http/errors"
)

type EventsHandler struct {
	events *eventsvc.Service
	logger *zap.Logger
}

func NewEventsHandler(events *eventsvc.Service, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{events: events, logger: logger}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := eventsvc.Filter{
		ZonaID:  queryInt64(r, "zona_id"),
		RitmoID: queryInt64(r, "ritmo_id"),
		Limit:   queryInt(r, "limit"),
		Offset:  queryInt(r, "offset"),
	}

	events, err := h.events.ListUpcoming(r.Context(), filter)
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EventListFromService(events))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid event id")
		return
	}

	event, err := h.events.Get(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, eventsvc.ErrEventNotFound) {
			writeNotFound(w, "event not found")
			return
		}
		h.logger.Error("get event failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EventFromService(event))
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.events.Create(r.Context(), identity.UserID, eventsvc.Event{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		ZonaID:      req.ZonaID,
		RitmoID:     req.RitmoID,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		if errors.Is(err, eventsvc.ErrValidation) {
			writeBadRequest(w, err.Error())
			return
		}
		h.logger.Error("create event failed", zap.Error(err))
		writeInternal(w)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.EventFromService(event))
}
