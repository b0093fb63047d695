package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/sakilaimport/internal/model"
)

// Record is one decoded input row: field name to JSON scalar or array.
// Numbers are JSON number literals when decoded by ReadSnapshot.
type Record map[string]any

// Snapshot maps a table name to its records in source order.
type Snapshot map[string][]Record

// Store is the persistence collaborator the importer writes into.
// Satisfied by *store.Session.
type Store interface {
	// Insert registers a newly created entity for the next commit. The store
	// reads the entity's values at commit time, so it may still be mutated.
	Insert(e model.Entity) error
	// Commit writes every registered entity atomically.
	Commit(ctx context.Context) error
	// Discard releases resources and removes any unfinished output.
	Discard() error
}

// TableInfo describes one input table and where it sits in the load plan.
type TableInfo struct {
	Key   string // Input table name: "film_actor"
	Group string // Related tables: "Film"
	Label string // Display name: "Film actors"

	// DependsOn lists tables whose entity maps must exist before this one loads.
	DependsOn []string

	// Defers lists referenced tables that load after this one. The reference
	// is patched when the other table loads; the edge is left out of the plan.
	Defers []string
}

// LoadFunc loads one table into the run and returns the number of entities
// it created.
type LoadFunc func(r *Run) (int, error)

// TableDefinition contains everything needed to load a table.
type TableDefinition struct {
	Info TableInfo
	Load LoadFunc

	seq int // registration order, used to break ties in the plan
}

// TableCount is the number of entities created for one table.
type TableCount struct {
	Table string
	Label string
	Count int
}

// Result is the outcome of a committed import.
type Result struct {
	RunID       string
	Counts      []TableCount
	Diagnostics []string
	Duration    time.Duration
}

// Count returns the entity count for table, or zero if it was not loaded.
func (r *Result) Count(table string) int {
	for _, c := range r.Counts {
		if c.Table == table {
			return c.Count
		}
	}
	return 0
}

// Total returns the number of entities across all tables.
func (r *Result) Total() int {
	var n int
	for _, c := range r.Counts {
		n += c.Count
	}
	return n
}
