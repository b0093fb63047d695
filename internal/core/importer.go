package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/JonMunkholm/sakilaimport/internal/logging"
	"github.com/google/uuid"
)

// Importer runs snapshot imports into one Store. An Importer is single use:
// the store is committed or discarded by the first call to Import.
type Importer struct {
	store            Store
	logger           *slog.Logger
	runID            string
	requireAllTables bool
	tables           []TableDefinition
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the base logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) { im.logger = logger }
}

// WithRunID sets the run id instead of generating one. The CLI uses this
// so the store's temporary artifact and the log share the same id.
func WithRunID(id string) Option {
	return func(im *Importer) { im.runID = id }
}

// WithRequireAllTables makes a table missing from the snapshot an error
// instead of an empty load.
func WithRequireAllTables(require bool) Option {
	return func(im *Importer) { im.requireAllTables = require }
}

// WithTables replaces the registered tables. The definitions are still
// ordered by Plan rules.
func WithTables(defs ...TableDefinition) Option {
	return func(im *Importer) {
		im.tables = make([]TableDefinition, len(defs))
		for i, def := range defs {
			def.seq = i
			im.tables[i] = def
		}
	}
}

// NewImporter creates an importer writing into store.
func NewImporter(store Store, opts ...Option) *Importer {
	im := &Importer{store: store}
	for _, opt := range opts {
		opt(im)
	}
	if im.logger == nil {
		im.logger = slog.Default()
	}
	if im.runID == "" {
		im.runID = uuid.NewString()
	}
	return im
}

// RunID returns the id of the import run.
func (im *Importer) RunID() string { return im.runID }

// Import loads every table of snap in dependency order, links the graph,
// and commits it to the store exactly once. On any error the store is
// discarded and nothing is persisted.
func (im *Importer) Import(ctx context.Context, snap Snapshot) (*Result, error) {
	start := time.Now()
	ctx = logging.ContextWithRunID(ctx, im.runID)
	logger := logging.WithFields(ctx, im.logger)

	result, err := im.run(ctx, logger, snap)
	if err != nil {
		if derr := im.store.Discard(); derr != nil {
			logger.Warn("discard after failed import", "error", derr)
		}
		logger.Error("import failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	result.Duration = time.Since(start)
	logger.Info("import committed",
		"tables", len(result.Counts),
		"entities", result.Total(),
		"duration", result.Duration,
	)
	return result, nil
}

func (im *Importer) run(ctx context.Context, logger *slog.Logger, snap Snapshot) (*Result, error) {
	defs := im.tables
	var err error
	if defs == nil {
		defs, err = Plan()
	} else {
		defs, err = plan(defs)
	}
	if err != nil {
		return nil, fmt.Errorf("plan tables: %w", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no tables registered")
	}
	logger.Debug("load plan", "tables", PlanKeys(defs))

	diagnostics, err := im.checkTables(defs, snap)
	if err != nil {
		return nil, err
	}
	for _, d := range diagnostics {
		logger.Warn(d)
	}

	r := newRun(ctx, im.runID, snap, im.store, logger)
	result := &Result{
		RunID:       im.runID,
		Counts:      make([]TableCount, 0, len(defs)),
		Diagnostics: diagnostics,
	}

	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("import cancelled before %s: %w", def.Info.Key, err)
		}

		tableStart := time.Now()
		count, err := def.Load(r)
		if err != nil {
			return nil, err
		}

		result.Counts = append(result.Counts, TableCount{
			Table: def.Info.Key,
			Label: def.Info.Label,
			Count: count,
		})
		logger.Info("table loaded",
			"table", def.Info.Key,
			"count", count,
			"duration", time.Since(tableStart),
		)
	}

	if err := r.verifyPending(); err != nil {
		return nil, err
	}

	if err := im.store.Commit(ctx); err != nil {
		return nil, &CommitError{Err: err}
	}
	return result, nil
}

// checkTables compares the snapshot's tables with the plan. Unknown tables
// are ignored with a diagnostic; absent ones load as empty unless required.
func (im *Importer) checkTables(defs []TableDefinition, snap Snapshot) ([]string, error) {
	known := make(map[string]bool, len(defs))
	var diagnostics []string

	for _, def := range defs {
		known[def.Info.Key] = true
		if _, ok := snap[def.Info.Key]; ok {
			continue
		}
		if im.requireAllTables {
			return nil, &IntegrityError{Kind: UnloadedTable, Target: def.Info.Key}
		}
		diagnostics = append(diagnostics, fmt.Sprintf("table %s absent from snapshot, loaded as empty", def.Info.Key))
	}

	var unknown []string
	for name := range snap {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		diagnostics = append(diagnostics, fmt.Sprintf("unknown table %s ignored (%d records)", name, len(snap[name])))
	}

	return diagnostics, nil
}
