package db

import (
	"errors"

	"github.com/lib/pq"

	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

// postgres SQLSTATE codes we translate
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeExclusionViolation  = "23P01"
)

// translateWriteError maps constraint violations raised by INSERT/UPDATE to
// the scheduling error taxonomy. Anything else is returned unchanged.
func translateWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case codeExclusionViolation:
		return schedule.ErrSlotTaken
	case codeCheckViolation:
		if pqErr.Constraint == "bookings_valid_range" {
			return schedule.ErrInvalidRange
		}
	case codeUniqueViolation:
		return schedule.ErrDuplicate
	case codeForeignKeyViolation:
		switch pqErr.Constraint {
		case "bookings_display_id_fkey":
			return schedule.ErrDisplayNotFound
		case "bookings_media_asset_id_fkey":
			return schedule.ErrMediaNotFound
		case "bookings_user_id_fkey", "media_assets_owner_user_id_fkey":
			return schedule.ErrUserNotFound
		}
	}
	return err
}

// translateDeleteError maps a foreign key violation on DELETE to ErrInUse.
func translateDeleteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == codeForeignKeyViolation {
		return schedule.ErrInUse
	}
	return err
}
