package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
)

const (
	EventBookingCreated = "booking.created"
	EventBookingDeleted = "booking.deleted"
)

type BookingEvent struct {
	Type       string        `json:"type"`
	Booking    model.Booking `json:"booking"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Announcer is told about committed booking changes. Failures are logged by
// the caller and never undo the change.
type Announcer interface {
	Announce(ctx context.Context, ev BookingEvent) error
}

// Announcers fans an event out to every member, skipping nils.
type Announcers []Announcer

func (as Announcers) Announce(ctx context.Context, ev BookingEvent) error {
	var errs []error
	for _, a := range as {
		if a == nil {
			continue
		}
		if err := a.Announce(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
