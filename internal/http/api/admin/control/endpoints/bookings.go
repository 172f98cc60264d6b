package endpoints

import (
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

type BookingController struct {
	store  db.Store
	booker *schedule.Booker
	now    func() time.Time
}

func newBookingController(store db.Store, booker *schedule.Booker) *BookingController {
	return &BookingController{store: store, booker: booker, now: time.Now}
}

// BookingModule mounts all authenticated booking endpoints.
func BookingModule(store db.Store, booker *schedule.Booker) api.Module {
	ctl := newBookingController(store, booker)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/displays/:id/bookings", ctl.listDisplayBookings)

		c.GET("/bookings", ctl.listMyBookings)
		c.GET("/bookings/status", ctl.bookingStatus)
		c.GET("/bookings/conflict", ctl.checkConflict)
		c.POST("/bookings", ctl.createBooking)
		c.DELETE("/bookings/:id", ctl.deleteBooking)
	})
}

func toBookingResponse(b model.Booking) packets.BookingResponse {
	return packets.BookingResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		DisplayID:    b.DisplayID,
		MediaAssetID: b.MediaAssetID,
		StartTime:    b.StartTime.UTC().Format(time.RFC3339),
		EndTime:      b.EndTime.UTC().Format(time.RFC3339),
		CreatedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toUserBookingResponse(b *model.BookingDetail) *packets.UserBookingResponse {
	if b == nil {
		return nil
	}
	return &packets.UserBookingResponse{
		BookingResponse: toBookingResponse(b.Booking),
		DisplayName:     b.DisplayName,
		Filename:        b.Filename,
		MediaType:       b.MediaType,
	}
}

// parseRange interprets start/end in the display's timezone unless they carry
// their own offset.
func (b *BookingController) parseRange(ctx *gin.Context, displayID uuid.UUID, start, end string) (time.Time, time.Time, *api.APIError) {
	display, err := b.store.GetDisplayByID(ctx.Request.Context(), displayID)
	if err != nil {
		return time.Time{}, time.Time{}, api.FromError(err, "could not load display")
	}
	loc, err := display.Location()
	if err != nil {
		log.Error().Err(err).Str("timezone", display.Timezone).Msg("[bookings] display has invalid timezone")
		loc = time.UTC
	}
	s, err := schedule.ParseInstant(start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, api.BadRequest(err.Error())
	}
	e, err := schedule.ParseInstant(end, loc)
	if err != nil {
		return time.Time{}, time.Time{}, api.BadRequest(err.Error())
	}
	return s, e, nil
}

// GET /api/admin/displays/:id/bookings
func (b *BookingController) listDisplayBookings(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := parseID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, err := b.store.GetDisplayByID(ctx.Request.Context(), id); err != nil {
		return nil, api.FromError(err, "could not load display")
	}
	list, err := b.store.ListBookingsByDisplay(ctx.Request.Context(), id)
	if err != nil {
		return nil, api.FromError(err, "could not list bookings")
	}
	out := make([]packets.BookingResponse, 0, len(list))
	for _, x := range list {
		out = append(out, toBookingResponse(x))
	}
	return out, nil
}

// GET /api/admin/bookings
func (b *BookingController) listMyBookings(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	list, err := b.store.ListBookingsByUser(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, api.FromError(err, "could not list bookings")
	}
	out := make([]*packets.UserBookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toUserBookingResponse(&list[i]))
	}
	return out, nil
}

// GET /api/admin/bookings/status
func (b *BookingController) bookingStatus(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	list, err := b.store.ListBookingsByUser(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, api.FromError(err, "could not load booking status")
	}
	now := b.now().UTC()
	return packets.BookingStatusResponse{
		Current: toUserBookingResponse(schedule.SelectCurrent(list, now)),
		Next:    toUserBookingResponse(schedule.SelectNext(list, now)),
	}, nil
}

// GET /api/admin/bookings/conflict?display_id=&start=&end=
func (b *BookingController) checkConflict(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var query packets.ConflictQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	displayID, err := uuid.Parse(query.DisplayID)
	if err != nil {
		return nil, api.BadRequest("invalid display id")
	}
	start, end, apiErr := b.parseRange(ctx, displayID, query.Start, query.End)
	if apiErr != nil {
		return nil, apiErr
	}

	conflict, err := b.booker.HasConflict(ctx.Request.Context(), displayID, start, end)
	if err != nil {
		return nil, api.FromError(err, "could not check availability")
	}
	return packets.ConflictResponse{Conflict: conflict}, nil
}

// POST /api/admin/bookings
func (b *BookingController) createBooking(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateBookingRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	start, end, apiErr := b.parseRange(ctx, request.DisplayID, request.Start, request.End)
	if apiErr != nil {
		return nil, apiErr
	}

	booking, err := b.booker.CreateReservation(ctx.Request.Context(), user.ID, request.DisplayID, request.MediaAssetID, start, end)
	if err != nil {
		return nil, api.FromError(err, "could not create booking")
	}
	log.Info().
		Str("booking", booking.ID.String()).
		Str("display", booking.DisplayID.String()).
		Time("start", booking.StartTime).
		Time("end", booking.EndTime).
		Msg("[bookings] created")
	return api.Created(toBookingResponse(booking)), nil
}

// DELETE /api/admin/bookings/:id
func (b *BookingController) deleteBooking(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := parseID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if err := b.booker.DeleteReservation(ctx.Request.Context(), user.ID, id); err != nil {
		return nil, api.FromError(err, "could not delete booking")
	}
	return gin.H{"message": "deleted"}, nil
}
