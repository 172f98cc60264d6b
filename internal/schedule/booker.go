package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
)

// BookingStore is the persistence the booker drives.
type BookingStore interface {
	GetDisplayByID(ctx context.Context, id uuid.UUID) (model.Display, error)
	GetMediaByID(ctx context.Context, id uuid.UUID) (model.MediaAsset, error)
	HasBookingConflict(ctx context.Context, displayID uuid.UUID, start, end time.Time) (bool, error)
	// CreateBookingExclusive must re-check for overlap and insert atomically,
	// returning ErrSlotTaken without writing when the interval is taken.
	CreateBookingExclusive(ctx context.Context, b model.Booking) (model.Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (model.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
}

type Booker struct {
	store    BookingStore
	announce Announcer
}

func NewBooker(store BookingStore, announcers ...Announcer) *Booker {
	return &Booker{store: store, announce: Announcers(announcers)}
}

// HasConflict is the advisory availability check. The authoritative check
// runs again inside CreateReservation.
func (b *Booker) HasConflict(ctx context.Context, displayID uuid.UUID, start, end time.Time) (bool, error) {
	iv, err := NewInterval(start, end)
	if err != nil {
		return false, err
	}
	if _, err := b.store.GetDisplayByID(ctx, displayID); err != nil {
		return false, err
	}
	return b.store.HasBookingConflict(ctx, displayID, iv.Start, iv.End)
}

// CreateReservation books [start, end) on a display for one of the user's
// media assets. It either commits a non-overlapping row or writes nothing.
func (b *Booker) CreateReservation(
	ctx context.Context,
	userID, displayID, mediaAssetID uuid.UUID,
	start, end time.Time,
) (model.Booking, error) {
	iv, err := NewInterval(start, end)
	if err != nil {
		return model.Booking{}, err
	}
	if _, err := b.store.GetDisplayByID(ctx, displayID); err != nil {
		return model.Booking{}, err
	}
	media, err := b.store.GetMediaByID(ctx, mediaAssetID)
	if err != nil {
		return model.Booking{}, err
	}
	if media.OwnerUserID != userID {
		return model.Booking{}, ErrMediaNotFound
	}

	booking, err := b.store.CreateBookingExclusive(ctx, model.Booking{
		UserID:       userID,
		DisplayID:    displayID,
		MediaAssetID: mediaAssetID,
		StartTime:    iv.Start,
		EndTime:      iv.End,
	})
	if err != nil {
		return model.Booking{}, err
	}

	b.publish(ctx, EventBookingCreated, booking)
	return booking, nil
}

// DeleteReservation removes a booking owned by userID.
func (b *Booker) DeleteReservation(ctx context.Context, userID, bookingID uuid.UUID) error {
	booking, err := b.store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != userID {
		return ErrForbidden
	}
	if err := b.store.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}
	b.publish(ctx, EventBookingDeleted, booking)
	return nil
}

func (b *Booker) publish(ctx context.Context, kind string, booking model.Booking) {
	ev := BookingEvent{Type: kind, Booking: booking, OccurredAt: time.Now().UTC()}
	if err := b.announce.Announce(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("event", kind).
			Str("booking_id", booking.ID.String()).
			Msg("booking announcement failed")
	}
}
