package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type (
	// Env holds the values of environment variable based configuration
	Env struct {
		Host         string        `envconfig:"HOST" default:"127.0.0.1" validate:"required"`
		Port         int           `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
		SpecDir      string        `envconfig:"RESTSPECS_DIR" default:"./specs" validate:"required"`
		SpecPattern  string        `envconfig:"RESTSPECS_PATTERN" default:"**/*.spec.json" validate:"required"`
		Catalog      string        `envconfig:"RESTSPECS_CATALOG"`
		PathPrefix   string        `envconfig:"RESTSPECS_PATH_PREFIX"`
		BaseURL      string        `envconfig:"RESTSPECS_BASE_URL" validate:"omitempty,url"`
		APIBasePath  string        `envconfig:"RESTSPECS_API_BASE_PATH" default:"/restspecs" validate:"startswith=/"`
		FixturePath  string        `envconfig:"RESTSPECS_FIXTURE_PATH" default:"/fixtures" validate:"startswith=/"`
		FetchTimeout time.Duration `envconfig:"RESTSPECS_FETCH_TIMEOUT" default:"10s" validate:"gt=0"`
		Watch        bool          `envconfig:"RESTSPECS_WATCH" default:"false"`
		WatchDelay   time.Duration `envconfig:"RESTSPECS_WATCH_DELAY" default:"250ms" validate:"gte=0"`
		LogLevel     string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	}
)

// Load reads the given dotenv files (".env" when none are named) into the environment without overriding
// variables that are already set, then processes and validates the environment. Missing dotenv files are
// not an error.
func Load(envFiles ...string) (*Env, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Env{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// HTTPClient returns a client bounded by the fetch timeout.
func (e *Env) HTTPClient() *http.Client {
	return &http.Client{Timeout: e.FetchTimeout}
}

// Logger returns a logger at the configured level.
func (e *Env) Logger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(e.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
