// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

type Store interface {
	// user functions
	CreateUser(ctx context.Context, email, hashedPassword string, name *string, role string) (uuid.UUID, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id uuid.UUID, email string, name *string) error

	// display functions
	CreateDisplay(ctx context.Context, d model.Display) (model.Display, error)
	GetDisplayByID(ctx context.Context, id uuid.UUID) (model.Display, error)
	GetDisplayByActivationCode(ctx context.Context, code string) (model.Display, error)
	GetMainDisplay(ctx context.Context) (model.Display, error)
	ListDisplays(ctx context.Context) ([]model.Display, error)
	UpdateDisplay(ctx context.Context, id uuid.UUID, name, timezone, activationCode *string) (model.Display, error)
	SetMainDisplay(ctx context.Context, id uuid.UUID) error

	// media functions
	CreateMedia(ctx context.Context, m model.MediaAsset) (model.MediaAsset, error)
	GetMediaByID(ctx context.Context, id uuid.UUID) (model.MediaAsset, error)
	ListMediaByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.MediaAsset, error)
	MediaInUse(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteMedia(ctx context.Context, id uuid.UUID) error

	// booking functions
	HasBookingConflict(ctx context.Context, displayID uuid.UUID, start, end time.Time) (bool, error)
	CreateBookingExclusive(ctx context.Context, b model.Booking) (model.Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (model.Booking, error)
	ListBookingsByDisplay(ctx context.Context, displayID uuid.UUID) ([]model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]model.BookingDetail, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	CurrentBooking(ctx context.Context, displayID uuid.UUID, at time.Time) (*model.BookingDetail, error)
	NextBooking(ctx context.Context, displayID uuid.UUID, at time.Time) (*model.BookingDetail, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time checks that pgStore serves the scheduling core
var (
	_ Store                   = (*pgStore)(nil)
	_ schedule.BookingStore   = (*pgStore)(nil)
	_ schedule.PlaylistSource = (*pgStore)(nil)
)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn}
}
