// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first when present, so a personal install needs no exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, S3) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported relational store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the Librarium server and CLI.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational store. DATABASE_URL is a file path for sqlite and a DSN for postgres.
	DBDriver    string `env:"DB_DRIVER"    envDefault:"sqlite"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"./data/library.db"`

	// Key-Value Cache (Redis). Empty disables the metadata cache.
	RedisURL         string        `env:"REDIS_URL"`
	MetadataCacheTTL time.Duration `env:"METADATA_CACHE_TTL" envDefault:"24h"`

	// External book metadata
	GoogleBooksAPIKey string `env:"GOOGLE_BOOKS_API_KEY"`

	// Backups are written locally and optionally copied to S3-compatible storage
	BackupDir  string `env:"BACKUP_DIR"  envDefault:"./data/backups"`
	S3Bucket   string `env:"S3_BUCKET"`
	S3Region   string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint string `env:"S3_ENDPOINT"`

	// Static S3 credentials. Empty falls back to the default AWS credential chain.
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`

	// Admin token keys. Without a public key the admin routes are open.
	JWTPrivKeyPath string `env:"ADMIN_JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string `env:"ADMIN_JWT_PUBLIC_KEY_PATH"`

	// Tracing exporter endpoint. Empty keeps tracing in-process only.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Cross-Origin Resource Sharing. Development allows every origin.
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config].
func Load() (*Config, error) {

	// Variables already present in the environment win over the .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q (want %q or %q)", c.DBDriver, DriverSQLite, DriverPostgres)
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must not be empty")
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins lists the origins CORS accepts outside development.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}

// UsesSQLite reports whether the store is a local SQLite file.
func (c *Config) UsesSQLite() bool {
	return c.DBDriver == DriverSQLite
}
