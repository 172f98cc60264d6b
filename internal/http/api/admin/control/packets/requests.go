package packets

import "github.com/google/uuid"

type CreateDisplayRequest struct {
	Name           string `json:"name"            binding:"required"`
	ActivationCode string `json:"activation_code" binding:"required"`
	Timezone       string `json:"timezone"        binding:"required"`
}

type UpdateDisplayRequest struct {
	Name           *string `json:"name"`
	ActivationCode *string `json:"activation_code"`
	Timezone       *string `json:"timezone"`
}

// CreateBookingRequest carries start/end either as RFC3339 instants or as
// wall-clock "YYYY-MM-DDTHH:MM" in the display's timezone.
type CreateBookingRequest struct {
	DisplayID    uuid.UUID `json:"display_id"     binding:"required"`
	MediaAssetID uuid.UUID `json:"media_asset_id" binding:"required"`
	Start        string    `json:"start"          binding:"required"`
	End          string    `json:"end"            binding:"required"`
}

type ConflictQuery struct {
	DisplayID string `form:"display_id" binding:"required"`
	Start     string `form:"start"      binding:"required"`
	End       string `form:"end"        binding:"required"`
}
