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

const mediaColumns = `id, owner_user_id, type, storage_path, filename, file_size, width, height, duration, created_at`

func (s *pgStore) CreateMedia(ctx context.Context, m model.MediaAsset) (model.MediaAsset, error) {
	var out model.MediaAsset
	query := `
	INSERT INTO media_assets
	(owner_user_id, type, storage_path, filename, file_size, width, height, duration, created_at)
	VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, now())
	RETURNING ` + mediaColumns + `;`

	if err := s.db.GetContext(ctx, &out, query,
		m.OwnerUserID,
		m.Type,
		m.StoragePath,
		m.Filename,
		m.FileSize,
		m.Width,
		m.Height,
		m.Duration,
	); err != nil {
		log.Error().Err(err).Str("storage_path", m.StoragePath).Msg("failed to create media asset")
		return model.MediaAsset{}, translateWriteError(err)
	}
	return out, nil
}

func (s *pgStore) GetMediaByID(ctx context.Context, id uuid.UUID) (model.MediaAsset, error) {
	var m model.MediaAsset
	err := s.db.GetContext(ctx, &m, `SELECT `+mediaColumns+` FROM media_assets WHERE id = $1;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MediaAsset{}, schedule.ErrMediaNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("media_id", id.String()).Msg("failed to get media asset")
	}
	return m, err
}

// newest first, like the upload library view
func (s *pgStore) ListMediaByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.MediaAsset, error) {
	var all []model.MediaAsset
	query := `
	SELECT ` + mediaColumns + `
	FROM media_assets
	WHERE owner_user_id = $1
	ORDER BY created_at DESC;`
	if err := s.db.SelectContext(ctx, &all, query, ownerID); err != nil {
		log.Error().Err(err).Msg("failed to list media assets")
		return nil, err
	}
	return all, nil
}

func (s *pgStore) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media_assets WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Str("media_id", id.String()).Msg("failed to delete media asset")
		return translateDeleteError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrMediaNotFound
	}
	return nil
}

// MediaInUse reports whether any booking still plays the asset.
func (s *pgStore) MediaInUse(ctx context.Context, id uuid.UUID) (bool, error) {
	var inUse bool
	err := s.db.GetContext(ctx, &inUse, `SELECT EXISTS (SELECT 1 FROM bookings WHERE media_asset_id = $1);`, id)
	if err != nil {
		log.Error().Err(err).Str("media_id", id.String()).Msg("failed to check media usage")
	}
	return inUse, err
}
