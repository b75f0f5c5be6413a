package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Env selects between "dev" and "prod" behavior.
	Env string `env:"ENV" envDefault:"dev"`

	// DBPath is the SQLite database file path.
	DBPath string `env:"DB_PATH" envDefault:"app.db"`

	// ListenAddr is the HTTP listen address (e.g. ":4000").
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":4000"`

	// JWTSecret signs bearer tokens. Required in production.
	JWTSecret string `env:"JWT_SECRET"`

	// AdminUser / AdminPass are the seeded admin credentials.
	AdminUser string `env:"ADMIN_USER" envDefault:"admin@mithaipalace.com"`
	AdminPass string `env:"ADMIN_PASS"`
}

// IsProd reports whether the config was loaded for production.
func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

func parse() (*Config, error) {
	// A .env file is a development convenience; its absence is not an error.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Load loads configuration from environment variables and refuses to start
// without the secrets a deployment must override.
func Load() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	if cfg.AdminPass == "" {
		return nil, fmt.Errorf("ADMIN_PASS environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but fills development defaults for the secrets.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
	}
	if cfg.AdminPass == "" {
		cfg.AdminPass = "admin123"
	}
	return cfg, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, DB: %s, Listen: %s, Admin: %s, Secrets: *** (masked) ***}",
		c.Env, c.DBPath, c.ListenAddr, c.AdminUser)
}
