package endpoints

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/billboard/internal/model"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

type PlaylistResolver interface {
	ResolvePlaylist(ctx context.Context, displayID *uuid.UUID) (model.Playlist, error)
}

type PlaylistController struct {
	resolver PlaylistResolver
}

func NewPlaylistController(resolver PlaylistResolver) *PlaylistController {
	return &PlaylistController{resolver: resolver}
}

// PlaylistModule mounts the public playout endpoint polled by players.
func PlaylistModule(resolver PlaylistResolver) api.Module {
	ctl := NewPlaylistController(resolver)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/playlist", ctl.getPlaylist)
		c.PUBLIC_POST("/playlist", ctl.getPlaylist)
	})
}

// displayIDFrom reads displayId from the query string, falling back to a JSON
// body on POST. An empty value selects the main display.
func displayIDFrom(ctx *gin.Context) string {
	if v := ctx.Query("displayId"); v != "" {
		return v
	}
	if ctx.Request.Method == "POST" && ctx.Request.ContentLength != 0 {
		var request packets.PlaylistRequest
		if err := ctx.ShouldBindJSON(&request); err == nil {
			return request.DisplayID
		}
	}
	return ""
}

// GET|POST /api/tv/playlist
func (p *PlaylistController) getPlaylist(ctx *gin.Context) (any, *api.APIError) {
	ctx.Header("Cache-Control", "no-store")

	var displayID *uuid.UUID
	if raw := strings.TrimSpace(displayIDFrom(ctx)); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			// no display can carry a malformed id
			return nil, api.FromError(schedule.ErrDisplayNotFound, "")
		}
		displayID = &id
	}

	playlist, err := p.resolver.ResolvePlaylist(ctx.Request.Context(), displayID)
	if err != nil {
		if displayID != nil {
			log.Debug().Err(err).Str("display", displayID.String()).Msg("[playlist] resolve failed")
		}
		return nil, api.FromError(err, "could not resolve playlist")
	}
	return playlist, nil
}
