package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/sakilaimport/internal/config"
	"github.com/JonMunkholm/sakilaimport/internal/schema"
	"github.com/google/uuid"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLite is a Backend that writes a SQLite database file. Rows go to a
// temporary file next to the output, which is renamed onto the output path
// only after the transaction commits.
type SQLite struct {
	path    string
	tmpPath string
	db      *sql.DB
	done    bool
}

// OpenSQLite creates the temporary database for output. The temporary
// name carries runID so concurrent runs on one directory do not collide.
func OpenSQLite(ctx context.Context, output, runID string, cfg config.SQLiteConfig) (*SQLite, error) {
	if output == "" {
		return nil, errors.New("output path is empty")
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return nil, fmt.Errorf("output %s is a directory", output)
	}

	tmpPath := fmt.Sprintf("%s.%s.tmp", output, runID)
	s := &SQLite{path: output, tmpPath: tmpPath}

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", tmpPath, err)
	}
	// One connection, so the pragmas below apply to the transaction.
	db.SetMaxOpenConns(1)
	s.db = db

	pragmas := []string{
		fmt.Sprintf("PRAGMA journal_mode = %s", strings.ToUpper(cfg.JournalMode)),
		fmt.Sprintf("PRAGMA foreign_keys = %s", onOff(cfg.ForeignKeys)),
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			s.Discard()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	return s, nil
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// Path returns the final output path.
func (s *SQLite) Path() string { return s.path }

// TempPath returns the path rows are written to before the rename.
func (s *SQLite) TempPath() string { return s.tmpPath }

// Write implements Backend.
func (s *SQLite) Write(ctx context.Context, sc *schema.Schema, tables []Table) error {
	if s.done {
		return ErrClosed
	}

	if err := s.writeTx(ctx, sc, tables); err != nil {
		return err
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	s.db = nil

	if err := os.Rename(s.tmpPath, s.path); err != nil {
		return fmt.Errorf("finalize %s: %w", s.path, err)
	}
	s.done = true
	return nil
}

func (s *SQLite) writeTx(ctx context.Context, sc *schema.Schema, tables []Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if already committed

	for _, stmt := range sc.CreateStatements(schema.SQLite) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	for _, t := range tables {
		if err := insertRows(ctx, tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, t Table) error {
	if len(t.Rows) == 0 {
		return nil
	}

	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = schema.Quote(c)
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.Quote(t.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", t.Name, err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert into %s row %d: %w", t.Name, i, err)
		}
	}
	return nil
}

// Discard implements Backend. It removes the temporary file and its
// journal; the output path is never touched.
func (s *SQLite) Discard() error {
	if s.done {
		return nil
	}
	s.done = true

	var errs []error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
		s.db = nil
	}
	for _, p := range []string{s.tmpPath, s.tmpPath + "-journal", s.tmpPath + "-wal", s.tmpPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
