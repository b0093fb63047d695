package store

import (
	"context"
	"sync"

	"github.com/JonMunkholm/sakilaimport/internal/schema"
)

// Memory is a Backend that keeps committed tables in memory. It backs dry
// runs and tests.
type Memory struct {
	mu        sync.RWMutex
	tables    map[string]Table
	committed bool
	discarded bool
}

// NewMemory creates an empty memory backend.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]Table)}
}

// Write implements Backend.
func (m *Memory) Write(ctx context.Context, _ *schema.Schema, tables []Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range tables {
		m.tables[t.Name] = t
	}
	m.committed = true
	return nil
}

// Discard implements Backend. Committed tables are kept.
func (m *Memory) Discard() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.committed {
		m.discarded = true
	}
	return nil
}

// Committed reports whether Write succeeded.
func (m *Memory) Committed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.committed
}

// Discarded reports whether the backend was discarded before a commit.
func (m *Memory) Discarded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.discarded
}

// Table returns the committed table by name.
func (m *Memory) Table(name string) (Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[name]
	return t, ok
}

// Row returns the committed row of table with the given id as a column map.
func (m *Memory) Row(table string, id int64) (map[string]any, bool) {
	t, ok := m.Table(table)
	if !ok {
		return nil, false
	}
	for _, row := range t.Rows {
		if row[0] == id {
			out := make(map[string]any, len(t.Columns))
			for i, col := range t.Columns {
				out[col] = row[i]
			}
			return out, true
		}
	}
	return nil, false
}
