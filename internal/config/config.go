// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	StaticDir string `env:"STATIC_DIR" envDefault:"static"`
	ImagesDir string `env:"IMAGES_DIR" envDefault:"images"`

	Storage Storage
	Admin   Admin
	SMTP    SMTP
	Scroll  Scroll
}

type Storage struct {
	Driver      string `env:"STORAGE_DRIVER" envDefault:"file"`
	DataDir     string `env:"DATA_DIR" envDefault:"data"`
	ProjectsKey string `env:"PROJECTS_KEY" envDefault:"projects.json"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/site.db"`
	GCSBucket   string `env:"GCS_BUCKET"`
}

type Admin struct {
	Key         string        `env:"ADMIN_KEY"`
	TokenSecret string        `env:"ADMIN_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"1h"`
}

type SMTP struct {
	Host string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port string `env:"SMTP_PORT" envDefault:"587"`
	User string `env:"SMTP_USER"`
	Pass string `env:"SMTP_PASS"`
	To   string `env:"TO_EMAIL"`
}

type Scroll struct {
	Threshold int `env:"SCROLL_THRESHOLD" envDefault:"40"`
	Lookahead int `env:"SCROLL_LOOKAHEAD" envDefault:"100"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Storage.Driver = driverName(cfg.Storage.Driver)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Admin.Key) == "" {
		return errors.New("ADMIN_KEY is required")
	}
	if c.Admin.TokenTTL <= 0 {
		return errors.New("ADMIN_TOKEN_TTL must be positive")
	}
	switch driverName(c.Storage.Driver) {
	case "file", "sqlite":
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required for the gcs storage driver")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER %q is not one of file, sqlite, gcs", c.Storage.Driver)
	}
	if c.Scroll.Threshold < 0 || c.Scroll.Lookahead < 0 {
		return errors.New("SCROLL_THRESHOLD and SCROLL_LOOKAHEAD must not be negative")
	}
	return nil
}

// driverName folds STORAGE_DRIVER the same way blob.Open does.
func driverName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
