package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/JonMunkholm/sakilaimport/internal/model"
)

// Run is the state of one import: the snapshot, the store, and every entity
// map and deferred side table built so far. A Run is used by one goroutine.
type Run struct {
	ID string

	ctx      context.Context
	snapshot Snapshot
	store    Store
	logger   *slog.Logger

	maps    map[string]any
	pending map[string]pendingSet
	order   []string // pending names in creation order
}

func newRun(ctx context.Context, id string, snap Snapshot, store Store, logger *slog.Logger) *Run {
	return &Run{
		ID:       id,
		ctx:      ctx,
		snapshot: snap,
		store:    store,
		logger:   logger,
		maps:     make(map[string]any),
		pending:  make(map[string]pendingSet),
	}
}

// Context returns the context the import was started with.
func (r *Run) Context() context.Context { return r.ctx }

// Logger returns the run-scoped logger.
func (r *Run) Logger() *slog.Logger { return r.logger }

// Records returns the input records for table.
func (r *Run) Records(table string) []Record { return r.snapshot[table] }

// EntityMap is the primary key to entity lookup built while loading one
// table. It is read-only once its table has loaded.
type EntityMap[T model.Entity] struct {
	table string
	byKey map[int]T
}

func newEntityMap[T model.Entity](table string, size int) *EntityMap[T] {
	return &EntityMap[T]{table: table, byKey: make(map[int]T, size)}
}

// Table returns the table the map was built from.
func (m *EntityMap[T]) Table() string { return m.table }

// Get returns the entity with the given primary key.
func (m *EntityMap[T]) Get(key int) (T, bool) {
	e, ok := m.byKey[key]
	return e, ok
}

// Len returns the number of keyed entities.
func (m *EntityMap[T]) Len() int { return len(m.byKey) }

// Keys returns the primary keys in ascending order.
func (m *EntityMap[T]) Keys() []int {
	keys := make([]int, 0, len(m.byKey))
	for k := range m.byKey {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// FillFunc copies a record's attributes onto a freshly created entity and
// resolves its references.
type FillFunc[T model.Entity] func(rec Record, e T) error

// Load creates one entity per record of table, registers each with the
// store, fills it, and returns the map of keyed entities. The map is
// published on the run so downstream tables can resolve against it.
//
// Returns the number of entities created, which can exceed the map length
// for tables whose records carry no primary key.
func Load[T model.Entity](r *Run, table string, newFn func() T, fill FillFunc[T]) (*EntityMap[T], int, error) {
	if _, loaded := r.maps[table]; loaded {
		return nil, 0, fmt.Errorf("table %s already loaded", table)
	}

	records := r.snapshot[table]
	m := newEntityMap[T](table, len(records))

	for i, rec := range records {
		if i%contextCheckInterval == 0 {
			if err := r.ctx.Err(); err != nil {
				return nil, 0, fmt.Errorf("load %s cancelled at record %d: %w", table, i, err)
			}
		}

		e := newFn()

		key, hasKey, err := rec.PrimaryKey(table)
		if err != nil {
			return nil, 0, annotate(err, table, i, "")
		}
		if hasKey {
			if _, dup := m.byKey[key]; dup {
				return nil, 0, &IntegrityError{Kind: DuplicateKey, Table: table, Field: table + "_id", Key: key}
			}
			e.Base().SetPrimaryKey(key)
		}

		if err := r.store.Insert(e); err != nil {
			return nil, 0, fmt.Errorf("register %s record %d: %w", table, i, err)
		}

		if err := fill(rec, e); err != nil {
			keyText := ""
			if hasKey {
				keyText = strconv.Itoa(key)
			}
			return nil, 0, annotate(err, table, i, keyText)
		}

		if hasKey {
			m.byKey[key] = e
		}
	}

	r.maps[table] = m
	return m, len(records), nil
}

// contextCheckInterval is how many records are loaded between context checks.
const contextCheckInterval = 1000

// annotate attaches the table and record position to coercion errors.
func annotate(err error, table string, index int, key string) error {
	var ce *CoercionError
	if errors.As(err, &ce) {
		if ce.Table == "" {
			ce.Table = table
		}
		if ce.Key == "" {
			ce.Key = key
			if key == "" {
				ce.Key = "#" + strconv.Itoa(index)
			}
		}
		return err
	}
	var ie *IntegrityError
	if errors.As(err, &ie) {
		return err
	}
	return fmt.Errorf("table %s record %d: %w", table, index, err)
}

// Map returns the entity map of an already loaded upstream table.
func Map[T model.Entity](r *Run, table string) (*EntityMap[T], error) {
	raw, ok := r.maps[table]
	if !ok {
		return nil, &IntegrityError{Kind: UnloadedTable, Target: table}
	}
	m, ok := raw.(*EntityMap[T])
	if !ok {
		return nil, fmt.Errorf("table %s holds %T, not the requested entity type", table, raw)
	}
	return m, nil
}
