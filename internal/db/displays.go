package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

const displayColumns = `id, name, activation_code, timezone, is_main, created_by, created_at, updated_at`

func (s *pgStore) CreateDisplay(ctx context.Context, d model.Display) (model.Display, error) {
	var out model.Display
	q := `
	INSERT INTO displays (name, activation_code, timezone, is_main, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, false, $4, now(), now())
	RETURNING ` + displayColumns + `;`
	if err := s.db.GetContext(ctx, &out, q, d.Name, d.ActivationCode, d.Timezone, d.CreatedBy); err != nil {
		log.Error().Err(err).Str("name", d.Name).Msg("CreateDisplay failed")
		return model.Display{}, translateWriteError(err)
	}
	return out, nil
}

func (s *pgStore) getDisplay(ctx context.Context, notFound error, where string, args ...any) (model.Display, error) {
	var d model.Display
	err := s.db.GetContext(ctx, &d, `SELECT `+displayColumns+` FROM displays WHERE `+where+`;`, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Display{}, notFound
	}
	if err != nil {
		log.Error().Err(err).Msg("get display failed")
		return model.Display{}, err
	}
	return d, nil
}

func (s *pgStore) GetDisplayByID(ctx context.Context, id uuid.UUID) (model.Display, error) {
	return s.getDisplay(ctx, schedule.ErrDisplayNotFound, `id = $1`, id)
}

func (s *pgStore) GetDisplayByActivationCode(ctx context.Context, code string) (model.Display, error) {
	return s.getDisplay(ctx, schedule.ErrDisplayNotFound, `activation_code = $1`, code)
}

func (s *pgStore) GetMainDisplay(ctx context.Context) (model.Display, error) {
	return s.getDisplay(ctx, schedule.ErrNoMainDisplay, `is_main`)
}

func (s *pgStore) ListDisplays(ctx context.Context) ([]model.Display, error) {
	var out []model.Display
	if err := s.db.SelectContext(ctx, &out, `SELECT `+displayColumns+` FROM displays ORDER BY is_main DESC, name;`); err != nil {
		log.Error().Err(err).Msg("ListDisplays failed")
		return nil, err
	}
	return out, nil
}

// UpdateDisplay applies the non-nil fields. The timezone may only change
// while no bookings reference the display.
func (s *pgStore) UpdateDisplay(ctx context.Context, id uuid.UUID, name, timezone, activationCode *string) (model.Display, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Display{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var current model.Display
	err = tx.GetContext(ctx, &current, `SELECT `+displayColumns+` FROM displays WHERE id = $1 FOR UPDATE;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Display{}, schedule.ErrDisplayNotFound
	}
	if err != nil {
		return model.Display{}, err
	}

	if timezone != nil && *timezone != current.Timezone {
		var scheduled bool
		if err := tx.GetContext(ctx, &scheduled, `SELECT EXISTS (SELECT 1 FROM bookings WHERE display_id = $1);`, id); err != nil {
			return model.Display{}, err
		}
		if scheduled {
			return model.Display{}, schedule.ErrTimezoneLocked
		}
	}

	var out model.Display
	err = tx.GetContext(ctx, &out, `
		UPDATE displays
		SET name = COALESCE($2, name),
		timezone = COALESCE($3, timezone),
		activation_code = COALESCE($4, activation_code),
		updated_at = now()
		WHERE id = $1
		RETURNING `+displayColumns+`;`, id, name, timezone, activationCode)
	if err != nil {
		log.Error().Err(err).Str("display_id", id.String()).Msg("UpdateDisplay failed")
		return model.Display{}, translateWriteError(err)
	}
	if err := tx.Commit(); err != nil {
		return model.Display{}, err
	}
	return out, nil
}

// SetMainDisplay makes id the only main display.
func (s *pgStore) SetMainDisplay(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE displays SET is_main = false, updated_at = now() WHERE is_main AND id <> $1;`, id); err != nil {
		log.Error().Err(err).Msg("SetMainDisplay clear failed")
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE displays SET is_main = true, updated_at = now() WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Str("display_id", id.String()).Msg("SetMainDisplay failed")
		return translateWriteError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrDisplayNotFound
	}
	return tx.Commit()
}
