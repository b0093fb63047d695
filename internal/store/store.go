// Package store persists an imported entity graph.
//
// A Session collects entities as the importer creates them and writes them
// all in one transaction at Commit. Where the rows go is decided by a
// Backend: a SQLite file, a PostgreSQL database, or memory.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/sakilaimport/internal/config"
	"github.com/JonMunkholm/sakilaimport/internal/schema"
)

// Table is the committed content of one entity table.
type Table struct {
	Name    string // table name
	Entity  string // entity kind
	Columns []string
	Rows    [][]any
}

// Backend writes a set of tables atomically.
type Backend interface {
	// Write creates the tables of s and inserts every row in one
	// transaction. The output is only visible once Write returns nil.
	Write(ctx context.Context, s *schema.Schema, tables []Table) error
	// Discard releases resources and removes any unfinished output.
	// It is safe to call after Write and more than once.
	Discard() error
}

// Options controls how Open builds the backend.
type Options struct {
	RunID  string
	DryRun bool
	Logger *slog.Logger
}

// IsPostgresURL reports whether output names a PostgreSQL database.
func IsPostgresURL(output string) bool {
	return strings.HasPrefix(output, "postgres://") || strings.HasPrefix(output, "postgresql://")
}

// Open prepares the output and returns a session writing into it.
// PostgreSQL URLs get the PostgreSQL backend, dry runs keep everything in
// memory, and anything else is a SQLite file path.
func Open(ctx context.Context, output string, s *schema.Schema, cfg *config.Config, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		backend Backend
		err     error
	)
	switch {
	case opts.DryRun:
		backend = NewMemory()
	case IsPostgresURL(output):
		backend, err = OpenPostgres(ctx, output, cfg.Database)
	default:
		backend, err = OpenSQLite(ctx, output, opts.RunID, cfg.SQLite)
	}
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}

	return NewSession(s, backend, logger), nil
}
