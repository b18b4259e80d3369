package dto

import (
	"time"

	mediasvc "github.com/AlonsoPV/baileApp-sub007/internal/services/media"
)

type PhotoResponse struct {
	ID        int64     `json:"id"`
	Position  int       `json:"position"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type PhotoListResponse struct {
	Photos []PhotoResponse `json:"photos"`
}

func PhotoFromService(photo mediasvc.Photo) PhotoResponse {
	return PhotoResponse{
		ID:        photo.ID,
		Position:  photo.Position,
		URL:       photo.URL,
		CreatedAt: photo.CreatedAt,
	}
}

func PhotoListFromService(photos []mediasvc.Photo) PhotoListResponse {
	out := PhotoListResponse{Photos: make([]PhotoResponse, 0, len(photos))}
	for _, photo := range photos {
		out.Photos = append(out.Photos, PhotoFromService(photo))
	}
	return out
}
