// Package config reads server settings from the environment and an optional
// .env file. Command-line flags override what is loaded here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when present.
const DefaultEnvFile = ".env"

// Config holds the server settings.
type Config struct {
	DB            string        `env:"ZAMENJAVA_DB" envDefault:"zamenjava.sqlite3"`
	Addr          string        `env:"ZAMENJAVA_ADDR" envDefault:":8080"`
	LogFile       string        `env:"ZAMENJAVA_LOG"`
	JWTSecret     string        `env:"ZAMENJAVA_JWT_SECRET"`
	TokenTTL      time.Duration `env:"ZAMENJAVA_TOKEN_TTL" envDefault:"168h"`
	PointsPerStar int           `env:"ZAMENJAVA_POINTS_PER_STAR" envDefault:"5"`
}

// Load merges envFile (if it exists) under the process environment and
// parses the result. Process variables win over file entries. A missing
// envFile is not an error.
func Load(envFile string) (Config, error) {
	vars := make(map[string]string)
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading %s: %w", envFile, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for k, v := range env.ToMap(os.Environ()) {
		vars[k] = v
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	if c.DB == "" {
		return errors.New("database path must not be empty")
	}
	if c.Addr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.PointsPerStar <= 0 {
		return fmt.Errorf("points per star must be positive, got %d", c.PointsPerStar)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token lifetime must be positive, got %s", c.TokenTTL)
	}
	return nil
}
