package packets

// REQUESTS FOR /api/tv/playlist (POST body; GET uses the displayId query)
type PlaylistRequest struct {
	DisplayID string `json:"displayId"`
}
