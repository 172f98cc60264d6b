package packets

import "github.com/google/uuid"

// RESPONSES FOR /api/tv/activate
type ActivationResponse struct {
	DisplayID uuid.UUID `json:"display_id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	IsMain    bool      `json:"is_main"`
}
