// Package config loads environment-driven configuration structs. A .env file
// in the working directory is applied first when present; process environment
// always wins.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Load populates cfg from the environment using `env` struct tags. Missing
// required variables surface as errors.
func Load(cfg any) error {
	// Best effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
