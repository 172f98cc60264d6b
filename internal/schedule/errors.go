package schedule

import "errors"

var (
	// ErrInvalidRange is returned when an interval's end is not strictly after its start.
	ErrInvalidRange = errors.New("end time must be after start time")

	// ErrSlotTaken is returned when a reservation would overlap an existing one
	// on the same display at write time. Nothing is persisted.
	ErrSlotTaken = errors.New("time slot is already booked")

	// ErrNotFound is the parent of every lookup failure below; match it with
	// errors.Is to handle any missing record.
	ErrNotFound        = errors.New("not found")
	ErrDisplayNotFound = notFound("display not found")
	ErrNoMainDisplay   = notFound("no main display configured")
	ErrMediaNotFound   = notFound("media asset not found")
	ErrBookingNotFound = notFound("booking not found")
	ErrUserNotFound    = notFound("user not found")

	ErrForbidden = errors.New("forbidden")

	// ErrTimezoneLocked is returned when changing the timezone of a display that
	// already has bookings scheduled against it.
	ErrTimezoneLocked = errors.New("display timezone cannot change once bookings exist")

	// ErrInUse is returned when deleting a record other rows still reference.
	ErrInUse = errors.New("record is still referenced")

	// ErrDuplicate is returned when a unique field (email, activation code) is taken.
	ErrDuplicate = errors.New("already exists")
)

type notFoundError struct {
	msg string
}

func notFound(msg string) error { return &notFoundError{msg: msg} }

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }
