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

const userColumns = `id, email, hashed_password, name, role, created_at, updated_at`

// inserts new user into table with its role, returns new user ID.
func (s *pgStore) CreateUser(ctx context.Context, email, hashedPassword string, name *string, role string) (uuid.UUID, error) {
	query := `
	INSERT INTO users (email, hashed_password, name, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, now(), now())
	RETURNING id;
	`
	var newID uuid.UUID
	if err := s.db.GetContext(ctx, &newID, query, email, hashedPassword, name, role); err != nil {
		log.Error().Err(err).Str("email", email).Msg("failed to create user")
		return uuid.Nil, translateWriteError(err)
	}
	return newID, nil
}

// fetches user by email. returns nil, ErrUserNotFound if not found.
func (s *pgStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrUserNotFound
		}
		log.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrUserNotFound
		}
		log.Error().Err(err).Str("user_id", id.String()).Msg("failed to get user by id")
		return nil, err
	}
	return &u, nil
}

// updates a user's email and name, and bumps updated_at.
func (s *pgStore) UpdateUserProfile(ctx context.Context, id uuid.UUID, email string, name *string) error {
	query := `
	UPDATE users
	SET email = $2,
	name = $3,
	updated_at = now()
	WHERE id = $1;
	`
	res, err := s.db.ExecContext(ctx, query, id, email, name)
	if err != nil {
		log.Error().Err(err).Msg("failed to update user profile - exec")
		return translateWriteError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		log.Error().Err(err).Msg("failed to update user profile - rows affected")
		return err
	}
	if rows == 0 {
		return schedule.ErrUserNotFound
	}
	return nil
}
