// Package config provides centralized configuration management for the importer.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Import   ImportConfig
	SQLite   SQLiteConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ImportConfig holds snapshot import settings.
type ImportConfig struct {
	// MaxInputSize is the largest snapshot accepted, in bytes (default: 256MB)
	MaxInputSize int64 `env:"IMPORT_MAX_INPUT_SIZE" default:"268435456"`

	// RequireAllTables fails the import when a known table is absent from the
	// snapshot instead of loading it as empty (default: false)
	RequireAllTables bool `env:"IMPORT_REQUIRE_ALL_TABLES" default:"false"`
}

// SQLiteConfig holds settings for SQLite output artifacts.
type SQLiteConfig struct {
	// JournalMode is the SQLite journal_mode pragma (default: DELETE)
	JournalMode string `env:"SQLITE_JOURNAL_MODE" default:"DELETE"`

	// ForeignKeys enables foreign key enforcement at commit (default: true)
	ForeignKeys bool `env:"SQLITE_FOREIGN_KEYS" default:"true"`

	// BusyTimeout is how long to wait on a locked database (default: 5s)
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" default:"5s"`
}

// DatabaseConfig holds settings used when the output is a PostgreSQL URL.
type DatabaseConfig struct {
	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// ConnectTimeout bounds establishing the connection (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s"`

	// Schema is the PostgreSQL search_path the tables are created in (optional)
	Schema string `env:"DB_SCHEMA" envAlt:"PGSCHEMA"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text, json or pretty (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
