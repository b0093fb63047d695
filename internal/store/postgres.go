package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/sakilaimport/internal/config"
	"github.com/JonMunkholm/sakilaimport/internal/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Backend that creates the schema in a PostgreSQL database
// and bulk loads rows with COPY, all in one transaction.
type Postgres struct {
	pool *pgxpool.Pool
	done bool
}

// OpenPostgres connects to the database at url and verifies the connection.
func OpenPostgres(ctx context.Context, url string, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.Schema != "" {
		poolConfig.ConnConfig.RuntimeParams["search_path"] = cfg.Schema
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Write implements Backend.
func (p *Postgres) Write(ctx context.Context, sc *schema.Schema, tables []Table) error {
	if p.done {
		return ErrClosed
	}
	defer p.close()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	for _, stmt := range sc.CreateStatements(schema.Postgres) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	for _, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{t.Name}, t.Columns, pgx.CopyFromRows(t.Rows))
		if err != nil {
			return fmt.Errorf("copy into %s: %w", t.Name, err)
		}
		if n != int64(len(t.Rows)) {
			return fmt.Errorf("copy into %s: wrote %d of %d rows", t.Name, n, len(t.Rows))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Discard implements Backend. Nothing was committed, so closing the pool
// is enough.
func (p *Postgres) Discard() error {
	p.close()
	return nil
}

func (p *Postgres) close() {
	if p.done {
		return
	}
	p.done = true
	p.pool.Close()
}
