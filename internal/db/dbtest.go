package db

import (
	"context"
	"errors"
	"os"
)

var TestStore Store

// InitTestDB connects to TEST_DATABASE_URL, applies migrations and sets
// TestStore. Integration tests skip when the variable is unset.
func InitTestDB(ctx context.Context, migrationsPath string) error {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		return errors.New("TEST_DATABASE_URL environment variable is not set")
	}

	if err := Init(dbURL); err != nil {
		return err
	}

	if err := RunMigrations(ctx, DB, migrationsPath); err != nil {
		return err
	}

	TestStore = NewStore(DB)
	return nil
}
