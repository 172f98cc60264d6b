package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

type MediaAsset struct {
	ID          uuid.UUID `db:"id"            json:"id"`
	OwnerUserID uuid.UUID `db:"owner_user_id" json:"owner_user_id"`
	Type        string    `db:"type"          json:"type"`
	StoragePath string    `db:"storage_path"  json:"storage_path"`
	Filename    string    `db:"filename"      json:"filename"`
	FileSize    int64     `db:"file_size"     json:"file_size"`
	Width       *int      `db:"width"         json:"width,omitempty"`
	Height      *int      `db:"height"        json:"height,omitempty"`
	Duration    *float64  `db:"duration"      json:"duration,omitempty"` // seconds, video only
	CreatedAt   time.Time `db:"created_at"    json:"created_at"`
}
