package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/sakilaimport/internal/model"
	"github.com/JonMunkholm/sakilaimport/internal/schema"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrClosed is returned when a session is used after Commit or Discard.
var ErrClosed = errors.New("session closed")

type sessionState int

const (
	stateOpen sessionState = iota
	stateCommitted
	stateDiscarded
)

// Session collects entities for one atomic commit. Entity values are read
// at Commit, so entities may still be linked after Insert.
type Session struct {
	schema  *schema.Schema
	backend Backend
	logger  *slog.Logger

	pending []model.Entity
	seen    map[*model.Object]bool
	state   sessionState
}

// NewSession creates a session writing to backend.
func NewSession(s *schema.Schema, backend Backend, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		schema:  s,
		backend: backend,
		logger:  logger,
		seen:    make(map[*model.Object]bool),
	}
}

// Backend returns the session's backend.
func (s *Session) Backend() Backend { return s.backend }

// Len returns the number of entities registered.
func (s *Session) Len() int { return len(s.pending) }

// Insert registers e for the next commit. The kind must be declared in the
// schema and an entity can only be registered once.
func (s *Session) Insert(e model.Entity) error {
	if s.state != stateOpen {
		return ErrClosed
	}
	if _, err := s.schema.Entity(e.Kind()); err != nil {
		return err
	}
	base := e.Base()
	if s.seen[base] {
		return fmt.Errorf("%s entity registered twice", e.Kind())
	}
	s.seen[base] = true
	s.pending = append(s.pending, e)
	return nil
}

// Commit assigns row ids, builds rows, and writes them in one transaction.
// The session is closed afterwards whether or not the write succeeded.
func (s *Session) Commit(ctx context.Context) error {
	if s.state != stateOpen {
		return ErrClosed
	}

	start := time.Now()
	s.assignRowIDs()

	tables, err := s.buildTables()
	if err != nil {
		s.discard()
		return err
	}

	if err := s.backend.Write(ctx, s.schema, tables); err != nil {
		s.discard()
		return err
	}
	s.state = stateCommitted

	var rows int
	for _, t := range tables {
		rows += len(t.Rows)
	}
	s.logger.Debug("session committed", "tables", len(tables), "rows", rows, "duration", time.Since(start))
	return nil
}

// Discard drops every pending entity and removes unfinished output.
// Calling it after a successful Commit is a no-op.
func (s *Session) Discard() error {
	if s.state != stateOpen {
		return nil
	}
	return s.discard()
}

func (s *Session) discard() error {
	s.state = stateDiscarded
	s.pending = nil
	return s.backend.Discard()
}

// assignRowIDs gives every entity its row id: the source primary key when
// present, otherwise the next number after the largest key of its kind.
func (s *Session) assignRowIDs() {
	next := make(map[string]int64)
	for _, e := range s.pending {
		if key, ok := e.Base().PrimaryKey(); ok && int64(key) >= next[e.Kind()] {
			next[e.Kind()] = int64(key) + 1
		}
	}
	for _, e := range s.pending {
		base := e.Base()
		if key, ok := base.PrimaryKey(); ok {
			base.SetRowID(int64(key))
			continue
		}
		if next[e.Kind()] == 0 {
			next[e.Kind()] = 1
		}
		base.SetRowID(next[e.Kind()])
		next[e.Kind()]++
	}
}

// buildTables returns one table per schema entity, in schema order, with
// rows in registration order.
func (s *Session) buildTables() ([]Table, error) {
	tables := make([]Table, len(s.schema.Entities))
	index := make(map[string]int, len(tables))
	for i := range s.schema.Entities {
		def := &s.schema.Entities[i]
		tables[i] = Table{Name: def.Table, Entity: def.Name, Columns: def.Columns()}
		index[def.Name] = i
	}

	for _, e := range s.pending {
		i := index[e.Kind()]
		row, err := s.buildRow(&s.schema.Entities[i], e)
		if err != nil {
			return nil, err
		}
		tables[i].Rows = append(tables[i].Rows, row)
	}
	return tables, nil
}

func (s *Session) buildRow(def *schema.Entity, e model.Entity) ([]any, error) {
	row := make([]any, 0, 1+len(def.Attributes)+len(def.Relationships))
	row = append(row, e.Base().RowID())

	attrs := e.Attributes()
	for _, a := range def.Attributes {
		raw, ok := attrs[a.Name]
		if !ok {
			return nil, &schema.MismatchError{Entity: def.Name, Column: a.Name, Reason: "not provided by the model"}
		}
		v, typ, err := columnValue(raw)
		if err != nil {
			return nil, &schema.MismatchError{Entity: def.Name, Column: a.Name, Reason: err.Error()}
		}
		if v == nil && !a.Optional {
			return nil, &schema.MismatchError{Entity: def.Name, Column: a.Name, Reason: "null value for a required column"}
		}
		if !compatible(a.Type, typ) {
			return nil, &schema.MismatchError{Entity: def.Name, Column: a.Name,
				Reason: fmt.Sprintf("model value is %s, column is %s", typ, a.Type)}
		}
		row = append(row, v)
	}

	rels := e.Relationships()
	for _, r := range def.Relationships {
		target, ok := rels[r.Name]
		if !ok {
			return nil, &schema.MismatchError{Entity: def.Name, Column: r.Column(), Reason: "relationship not provided by the model"}
		}
		if target == nil {
			if !r.Optional {
				return nil, &schema.MismatchError{Entity: def.Name, Column: r.Column(), Reason: "required reference is not set"}
			}
			row = append(row, nil)
			continue
		}
		if target.Kind() != r.Target {
			return nil, &schema.MismatchError{Entity: def.Name, Column: r.Column(),
				Reason: fmt.Sprintf("references %s, schema expects %s", target.Kind(), r.Target)}
		}
		if !s.seen[target.Base()] {
			return nil, &schema.MismatchError{Entity: def.Name, Column: r.Column(),
				Reason: fmt.Sprintf("references a %s that was never registered", target.Kind())}
		}
		row = append(row, target.Base().RowID())
	}

	return row, nil
}

// columnValue unwraps nullable pgtype values into plain driver values (nil
// for NULL) and reports the attribute type the value belongs to. Numerics
// stay pgtype.Numeric: pgx encodes them natively and database/sql goes
// through their driver.Valuer.
func columnValue(v any) (any, schema.AttributeType, error) {
	switch x := v.(type) {
	case string:
		return x, schema.TypeString, nil
	case pgtype.Text:
		if !x.Valid {
			return nil, schema.TypeString, nil
		}
		return x.String, schema.TypeString, nil
	case int32:
		return x, schema.TypeInt32, nil
	case pgtype.Int4:
		if !x.Valid {
			return nil, schema.TypeInt32, nil
		}
		return x.Int32, schema.TypeInt32, nil
	case int64:
		return x, schema.TypeInt64, nil
	case int:
		return int64(x), schema.TypeInt64, nil
	case pgtype.Int8:
		if !x.Valid {
			return nil, schema.TypeInt64, nil
		}
		return x.Int64, schema.TypeInt64, nil
	case pgtype.Numeric:
		if !x.Valid {
			return nil, schema.TypeDecimal, nil
		}
		return x, schema.TypeDecimal, nil
	case time.Time:
		return x.UTC(), schema.TypeTimestamp, nil
	case pgtype.Timestamptz:
		if !x.Valid {
			return nil, schema.TypeTimestamp, nil
		}
		return x.Time.UTC(), schema.TypeTimestamp, nil
	case bool:
		return x, schema.TypeBool, nil
	case pgtype.Bool:
		if !x.Valid {
			return nil, schema.TypeBool, nil
		}
		return x.Bool, schema.TypeBool, nil
	default:
		return nil, 0, fmt.Errorf("unsupported model value %T", v)
	}
}

// compatible allows int32 values in int64 columns; everything else must match.
func compatible(column, value schema.AttributeType) bool {
	if column == value {
		return true
	}
	return column == schema.TypeInt64 && value == schema.TypeInt32
}
