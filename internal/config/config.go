// Package config loads PolySumm settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

const appDir = "polysumm"

// Config holds every tunable the CLI and TUI read at startup.
type Config struct {
	APIURL         string        `env:"POLYSUMM_API_URL" envDefault:"http://localhost:8000"`
	RequestTimeout time.Duration `env:"POLYSUMM_REQUEST_TIMEOUT" envDefault:"2m"`
	RetryAttempts  int           `env:"POLYSUMM_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInitial   time.Duration `env:"POLYSUMM_RETRY_INITIAL" envDefault:"500ms"`
	RetryMax       time.Duration `env:"POLYSUMM_RETRY_MAX" envDefault:"5s"`
	TopK           int           `env:"POLYSUMM_TOP_K" envDefault:"5"`
	StateDir       string        `env:"POLYSUMM_STATE_DIR"`
	Store          string        `env:"POLYSUMM_STORE" envDefault:"file"`
	RedisURL       string        `env:"REDIS_URL"`
	LogFile        string        `env:"POLYSUMM_LOG_FILE"`
	Debug          bool          `env:"POLYSUMM_DEBUG" envDefault:"false"`
	AutoSuggest    bool          `env:"POLYSUMM_AUTO_SUGGEST" envDefault:"true"`
	Typing         bool          `env:"POLYSUMM_TYPING" envDefault:"true"`
}

// Load reads envFile (when present) into the process environment and parses
// the result. A missing envFile is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve state dir: %w", err)
		}
		c.StateDir = filepath.Join(base, appDir)
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.StateDir, "polysumm.log")
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIURL, validation.Required),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.RetryAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.RetryInitial, validation.Min(time.Duration(0))),
		validation.Field(&c.RetryMax, validation.Min(c.RetryInitial)),
		validation.Field(&c.TopK, validation.Required, validation.Min(1)),
		validation.Field(&c.Store, validation.Required, validation.In("file", "redis")),
		validation.Field(&c.RedisURL, validation.When(c.Store == "redis", validation.Required)),
	)
}
