package packets

import "github.com/google/uuid"

// RESPONSES FOR /api/admin/*

// DisplayResponse mirrors model.Display but flattens times to RFC3339
type DisplayResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ActivationCode string    `json:"activation_code"`
	Timezone       string    `json:"timezone"`
	IsMain         bool      `json:"is_main"`
	CreatedAt      string    `json:"created_at"`
	UpdatedAt      string    `json:"updated_at"`
}

type MediaResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	FileSize  int64     `json:"file_size"`
	Width     *int      `json:"width"`
	Height    *int      `json:"height"`
	Duration  *float64  `json:"duration"`
	CreatedAt string    `json:"created_at"`
}

type BookingResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	DisplayID    uuid.UUID `json:"display_id"`
	MediaAssetID uuid.UUID `json:"media_asset_id"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	CreatedAt    string    `json:"created_at"`
}

// UserBookingResponse is a booking joined with what the dashboard shows
// next to it.
type UserBookingResponse struct {
	BookingResponse
	DisplayName string `json:"display_name"`
	Filename    string `json:"filename"`
	MediaType   string `json:"media_type"`
}

type ConflictResponse struct {
	Conflict bool `json:"conflict"`
}

// BookingStatusResponse is the user's ad on air now and the one after it.
type BookingStatusResponse struct {
	Current *UserBookingResponse `json:"current"`
	Next    *UserBookingResponse `json:"next"`
}
