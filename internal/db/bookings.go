package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

const bookingColumns = `id, user_id, display_id, media_asset_id, start_time, end_time, created_at`

const bookingDetailSelect = `
	SELECT b.id, b.user_id, b.display_id, b.media_asset_id, b.start_time, b.end_time, b.created_at,
	       d.name AS display_name,
	       m.filename, m.type AS media_type, m.storage_path, m.file_size, m.duration AS media_duration
	  FROM bookings b
	  JOIN displays d ON d.id = b.display_id
	  JOIN media_assets m ON m.id = b.media_asset_id`

func (s *pgStore) HasBookingConflict(ctx context.Context, displayID uuid.UUID, start, end time.Time) (bool, error) {
	var conflict bool
	err := s.db.GetContext(ctx, &conflict, `SELECT check_booking_conflict($1, $2, $3);`, displayID, start.UTC(), end.UTC())
	if err != nil {
		log.Error().Err(err).Str("display_id", displayID.String()).Msg("conflict check failed")
		return false, err
	}
	return conflict, nil
}

// CreateBookingExclusive inserts b unless it overlaps an existing booking on
// the same display. The display row lock queues concurrent writers for one
// display; the bookings_no_overlap exclusion constraint rejects anything that
// gets past it.
func (s *pgStore) CreateBookingExclusive(ctx context.Context, b model.Booking) (model.Booking, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked uuid.UUID
	err = tx.GetContext(ctx, &locked, `SELECT id FROM displays WHERE id = $1 FOR UPDATE;`, b.DisplayID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, schedule.ErrDisplayNotFound
	}
	if err != nil {
		log.Error().Err(err).Msg("display lock failed")
		return model.Booking{}, err
	}

	var taken bool
	if err := tx.GetContext(ctx, &taken, `SELECT check_booking_conflict($1, $2, $3);`,
		b.DisplayID, b.StartTime.UTC(), b.EndTime.UTC()); err != nil {
		log.Error().Err(err).Msg("overlap check failed")
		return model.Booking{}, err
	}
	if taken {
		return model.Booking{}, schedule.ErrSlotTaken
	}

	var out model.Booking
	err = tx.GetContext(ctx, &out, `
	INSERT INTO bookings (user_id, display_id, media_asset_id, start_time, end_time, created_at)
	VALUES ($1, $2, $3, $4, $5, now())
	RETURNING `+bookingColumns+`;`,
		b.UserID, b.DisplayID, b.MediaAssetID, b.StartTime.UTC(), b.EndTime.UTC())
	if err != nil {
		err = translateWriteError(err)
		if !errors.Is(err, schedule.ErrSlotTaken) {
			log.Error().Err(err).Msg("CreateBooking failed")
		}
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, translateWriteError(err)
	}
	return out, nil
}

func (s *pgStore) GetBookingByID(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	var b model.Booking
	err := s.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, schedule.ErrBookingNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("booking_id", id.String()).Msg("GetBookingByID failed")
	}
	return b, err
}

func (s *pgStore) ListBookingsByDisplay(ctx context.Context, displayID uuid.UUID) ([]model.Booking, error) {
	var out []model.Booking
	const q = `
	SELECT ` + bookingColumns + `
	  FROM bookings
	 WHERE display_id = $1
	 ORDER BY start_time;`
	if err := s.db.SelectContext(ctx, &out, q, displayID); err != nil {
		log.Error().Err(err).Str("display_id", displayID.String()).Msg("ListBookingsByDisplay failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]model.BookingDetail, error) {
	var out []model.BookingDetail
	q := bookingDetailSelect + `
	 WHERE b.user_id = $1
	 ORDER BY b.start_time;`
	if err := s.db.SelectContext(ctx, &out, q, userID); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("ListBookingsByUser failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id.String()).Msg("DeleteBooking failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrBookingNotFound
	}
	return nil
}

func (s *pgStore) CurrentBooking(ctx context.Context, displayID uuid.UUID, at time.Time) (*model.BookingDetail, error) {
	q := bookingDetailSelect + `
	 WHERE b.display_id = $1
	   AND b.start_time <= $2
	   AND b.end_time >= $2
	 ORDER BY b.start_time DESC
	 LIMIT 1;`
	return s.oneDetail(ctx, q, displayID, at.UTC())
}

func (s *pgStore) NextBooking(ctx context.Context, displayID uuid.UUID, at time.Time) (*model.BookingDetail, error) {
	q := bookingDetailSelect + `
	 WHERE b.display_id = $1
	   AND b.start_time > $2
	 ORDER BY b.start_time ASC
	 LIMIT 1;`
	return s.oneDetail(ctx, q, displayID, at.UTC())
}

func (s *pgStore) oneDetail(ctx context.Context, q string, args ...any) (*model.BookingDetail, error) {
	var d model.BookingDetail
	err := s.db.GetContext(ctx, &d, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Msg("booking lookup failed")
		return nil, err
	}
	return &d, nil
}
