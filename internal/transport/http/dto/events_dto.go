package dto

import (
	"time"

	eventsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/events"
)

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	ZonaID      int64     `json:"zona_id"`
	RitmoID     int64     `json:"ritmo_id"`
	StartsAt    time.Time `json:"starts_at"`
}

type EventResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	ZonaID      int64     `json:"zona_id"`
	RitmoID     int64     `json:"ritmo_id"`
	StartsAt    time.Time `json:"starts_at"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
}

func EventFromService(event eventsvc.Event) EventResponse {
	return EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Venue:       event.Venue,
		ZonaID:      event.ZonaID,
		RitmoID:     event.RitmoID,
		StartsAt:    event.StartsAt,
		CreatedBy:   event.CreatedBy,
		CreatedAt:   event.CreatedAt,
	}
}

func EventListFromService(events []eventsvc.Event) EventListResponse {
	out := EventListResponse{Events: make([]EventResponse, 0, len(events))}
	for _, event := range events {
		out.Events = append(out.Events, EventFromService(event))
	}
	return out
}
