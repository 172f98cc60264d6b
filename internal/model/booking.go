package model

import (
	"time"

	"github.com/google/uuid"
)

// Booking reserves [StartTime, EndTime) on one display for one media asset.
// Both times are stored in UTC.
type Booking struct {
	ID           uuid.UUID `db:"id"             json:"id"`
	UserID       uuid.UUID `db:"user_id"        json:"user_id"`
	DisplayID    uuid.UUID `db:"display_id"     json:"display_id"`
	MediaAssetID uuid.UUID `db:"media_asset_id" json:"media_asset_id"`
	StartTime    time.Time `db:"start_time"     json:"start_time"`
	EndTime      time.Time `db:"end_time"       json:"end_time"`
	CreatedAt    time.Time `db:"created_at"     json:"created_at"`
}

// BookingDetail is a booking joined with the fields the dashboard and the
// playout resolver need from its display and media asset.
type BookingDetail struct {
	Booking
	DisplayName   string   `db:"display_name"   json:"display_name"`
	Filename      string   `db:"filename"       json:"filename"`
	MediaType     string   `db:"media_type"     json:"media_type"`
	StoragePath   string   `db:"storage_path"   json:"-"`
	FileSize      int64    `db:"file_size"      json:"file_size"`
	MediaDuration *float64 `db:"media_duration" json:"media_duration,omitempty"`
}
