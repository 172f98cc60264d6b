package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var (
	DB *sqlx.DB
)

// Init opens a PostgreSQL connection and assigns it to DB, retrying while the
// database comes up.
func Init(databaseURL string) error {
	const maxRetries = 10
	const retryInterval = 2 * time.Second
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		DB, err = sqlx.Connect("postgres", databaseURL)
		if err == nil {
			DB.SetMaxOpenConns(20)
			DB.SetConnMaxIdleTime(5 * time.Minute)
			log.Info().Msg("connected to database")
			return nil
		}

		log.Error().Err(err).
			Int("attempt", attempt).
			Msgf("failed to connect to database, retrying in %s", retryInterval)

		time.Sleep(retryInterval)
	}

	return fmt.Errorf("could not connect to database after %d attempts: %w", maxRetries, err)
}

// RunMigrations applies every "*.up.sql" file in migrationsPath, in name
// order, that is not yet recorded in schema_migrations. Each file runs in its
// own transaction together with its bookkeeping row.
func RunMigrations(ctx context.Context, conn *sqlx.DB, migrationsPath string) error {
	pattern := filepath.Join(migrationsPath, "*.up.sql")
	files, err := filepath.Glob(pattern)
	if err != nil {
		log.Error().Msg("failed to list up migrations")
		return fmt.Errorf("failed to glob migrations: %w", err)
	}
	if len(files) == 0 {
		return nil
	}
	sort.Strings(files)

	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		);`); err != nil {
		return fmt.Errorf("could not create schema_migrations: %w", err)
	}

	var applied []string
	if err := conn.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations;`); err != nil {
		return fmt.Errorf("could not read schema_migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, file := range files {
		version := filepath.Base(file)
		if done[version] {
			continue
		}
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			log.Error().Str("file", file).Msg("failed to read migration file")
			return fmt.Errorf("could not read migration %q: %w", file, err)
		}
		if len(sqlBytes) == 0 {
			continue
		}

		tx, err := conn.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("error executing migration %q: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1);`, version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("could not record migration %q: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("could not commit migration %q: %w", file, err)
		}
		log.Info().Str("migration", version).Msg("applied migration")
	}
	return nil
}
