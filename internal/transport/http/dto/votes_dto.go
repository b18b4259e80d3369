package dto

import votesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/votes"

type VoteStateResponse struct {
	EventID int64 `json:"event_id"`
	Voted   bool  `json:"voted"`
	Votes   int64 `json:"votes"`
}

type TrendingEventResponse struct {
	EventID int64 `json:"event_id"`
	Votes   int64 `json:"votes"`
}

type TrendingResponse struct {
	Events []TrendingEventResponse `json:"events"`
}

func VoteStateFromService(state votesvc.VoteState) VoteStateResponse {
	return VoteStateResponse{
		EventID: state.EventID,
		Voted:   state.Voted,
		Votes:   state.Count,
	}
}

func TrendingFromService(events []votesvc.TrendingEvent) TrendingResponse {
	out := TrendingResponse{Events: make([]TrendingEventResponse, 0, len(events))}
	for _, event := range events {
		out.Events = append(out.Events, TrendingEventResponse{
			EventID: event.EventID,
			Votes:   event.Votes,
		})
	}
	return out
}
