package endpoints

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/db"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/billboard/internal/model"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

// MainDisplayListener is told after the main display has been switched.
type MainDisplayListener interface {
	MainDisplayChanged(ctx context.Context) error
}

type DisplayController struct {
	store     db.Store
	listeners []MainDisplayListener
}

func newDisplayController(store db.Store, listeners []MainDisplayListener) *DisplayController {
	return &DisplayController{store: store, listeners: listeners}
}

// DisplayModule mounts all authenticated /displays endpoints. Reads are open
// to every user, writes need an operator.
func DisplayModule(store db.Store, listeners ...MainDisplayListener) api.Module {
	ctl := newDisplayController(store, listeners)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/displays", ctl.listDisplays)
		c.GET("/displays/:id", ctl.getDisplay)
		c.POST("/displays", ctl.createDisplay)
		c.PUT("/displays/:id", ctl.updateDisplay)
		c.POST("/displays/:id/main", ctl.setMainDisplay)
	})
}

func toDisplayResponse(d model.Display) packets.DisplayResponse {
	return packets.DisplayResponse{
		ID:             d.ID,
		Name:           d.Name,
		ActivationCode: d.ActivationCode,
		Timezone:       d.Timezone,
		IsMain:         d.IsMain,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      d.UpdatedAt.Format(time.RFC3339),
	}
}

func parseID(ctx *gin.Context, name string) (uuid.UUID, *api.APIError) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, api.BadRequest("invalid " + strings.ReplaceAll(name, "_", " "))
	}
	return id, nil
}

func requireOperator(user *model.User) *api.APIError {
	if !user.IsOperator() {
		log.Warn().Str("user", user.ID.String()).Msg("[displays] operator role required")
		return &api.APIError{Code: http.StatusForbidden, Message: "operator role required"}
	}
	return nil
}

// GET /api/admin/displays
func (d *DisplayController) listDisplays(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := d.store.ListDisplays(ctx.Request.Context())
	if err != nil {
		return nil, api.FromError(err, "could not list displays")
	}
	out := make([]packets.DisplayResponse, 0, len(all))
	for _, x := range all {
		out = append(out, toDisplayResponse(x))
	}
	return out, nil
}

// GET /api/admin/displays/:id
func (d *DisplayController) getDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := parseID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	x, err := d.store.GetDisplayByID(ctx.Request.Context(), id)
	if err != nil {
		return nil, api.FromError(err, "could not load display")
	}
	return toDisplayResponse(x), nil
}

// POST /api/admin/displays
func (d *DisplayController) createDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if apiErr := requireOperator(user); apiErr != nil {
		return nil, apiErr
	}
	var request packets.CreateDisplayRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if !schedule.ValidTimezone(request.Timezone) {
		return nil, api.BadRequest("unknown timezone")
	}

	created, err := d.store.CreateDisplay(ctx.Request.Context(), model.Display{
		Name:           request.Name,
		ActivationCode: request.ActivationCode,
		Timezone:       request.Timezone,
		CreatedBy:      &user.ID,
	})
	if err != nil {
		return nil, api.FromError(err, "could not create display")
	}
	log.Info().Str("display", created.ID.String()).Str("by", user.ID.String()).Msg("[displays] created")
	return api.Created(toDisplayResponse(created)), nil
}

// PUT /api/admin/displays/:id
func (d *DisplayController) updateDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if apiErr := requireOperator(user); apiErr != nil {
		return nil, apiErr
	}
	id, apiErr := parseID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.UpdateDisplayRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if request.Timezone != nil && !schedule.ValidTimezone(*request.Timezone) {
		return nil, api.BadRequest("unknown timezone")
	}

	updated, err := d.store.UpdateDisplay(ctx.Request.Context(), id, request.Name, request.Timezone, request.ActivationCode)
	if err != nil {
		return nil, api.FromError(err, "could not update display")
	}
	return toDisplayResponse(updated), nil
}

// POST /api/admin/displays/:id/main
func (d *DisplayController) setMainDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if apiErr := requireOperator(user); apiErr != nil {
		return nil, apiErr
	}
	id, apiErr := parseID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if err := d.store.SetMainDisplay(ctx.Request.Context(), id); err != nil {
		return nil, api.FromError(err, "could not set main display")
	}
	for _, l := range d.listeners {
		if err := l.MainDisplayChanged(ctx.Request.Context()); err != nil {
			log.Warn().Err(err).Str("display", id.String()).Msg("main display change not propagated")
		}
	}
	return gin.H{"message": "main display updated"}, nil
}
