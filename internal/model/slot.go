package model

import (
	"time"

	"github.com/google/uuid"
)

// Creative is the playable asset metadata handed to a display client.
type Creative struct {
	Type            string   `json:"type"`
	URL             string   `json:"url"`
	ContentType     string   `json:"content_type"`
	Bytes           int64    `json:"bytes"`
	SHA256          *string  `json:"sha256"`
	DurationSeconds *float64 `json:"duration_seconds"`
}

// Slot is the booking currently on air for a display. It is computed per
// request and never persisted.
type Slot struct {
	ID              uuid.UUID `json:"id"`
	DisplayID       uuid.UUID `json:"display_id"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	ReadyAt         time.Time `json:"ready_at"`
	PrefetchSeconds int       `json:"prefetch_seconds"`
	Creative        Creative  `json:"creative"`
	PlaylistVersion int       `json:"playlist_version"`
}

type NextSlot struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Creative Creative  `json:"creative"`
}

type Playlist struct {
	Slot *Slot     `json:"slot"`
	Next *NextSlot `json:"next"`
}
