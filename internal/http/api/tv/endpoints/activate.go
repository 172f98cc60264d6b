package endpoints

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/db"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api/tv/packets"
)

type ActivationController struct {
	store db.Store
}

func NewActivationController(store db.Store) *ActivationController {
	return &ActivationController{store: store}
}

// ActivationModule lets a freshly installed player find out which display it is.
func ActivationModule(store db.Store) api.Module {
	ctl := NewActivationController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/activate", ctl.activate)
	})
}

// GET /api/tv/activate?code=
func (a *ActivationController) activate(ctx *gin.Context) (any, *api.APIError) {
	code := strings.TrimSpace(ctx.Query("code"))
	if code == "" {
		return nil, api.BadRequest("code is required")
	}
	display, err := a.store.GetDisplayByActivationCode(ctx.Request.Context(), code)
	if err != nil {
		return nil, api.FromError(err, "could not activate display")
	}
	log.Info().Str("display", display.ID.String()).Msg("display activated")
	return packets.ActivationResponse{
		DisplayID: display.ID,
		Name:      display.Name,
		Timezone:  display.Timezone,
		IsMain:    display.IsMain,
	}, nil
}
