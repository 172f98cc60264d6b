// Package config loads settings from the environment (and an optional .env
// file) into structs tagged for github.com/codingconcepts/env.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/codingconcepts/env"
	"github.com/joho/godotenv"
)

// Load reads .env when present and then populates dst from the environment.
// dst must be a pointer to a struct with `env` tags.
func Load(dst any) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	if err := env.Set(dst); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// List splits a comma-separated setting, dropping blanks.
func List(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
