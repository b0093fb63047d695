package schema

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Dialect selects the SQL flavour for generated DDL.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Quote quotes an identifier for either dialect.
func Quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func columnType(d Dialect, t AttributeType) string {
	switch t {
	case TypeString:
		return "TEXT"
	case TypeInt32:
		return "INTEGER"
	case TypeInt64:
		if d == Postgres {
			return "BIGINT"
		}
		return "INTEGER"
	case TypeDecimal:
		return "NUMERIC"
	case TypeTimestamp:
		if d == Postgres {
			return "TIMESTAMPTZ"
		}
		return "TIMESTAMP"
	case TypeBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func idType(d Dialect) string {
	if d == Postgres {
		return "BIGINT"
	}
	return "INTEGER"
}

// CreateStatements returns the DDL that creates every entity table.
//
// Foreign keys are deferred to commit time so rows can be written in any
// order, which the staff/store cycle requires. SQLite accepts references to
// tables created later, so constraints are inline; PostgreSQL gets them as
// ALTER TABLE statements after all tables exist.
func (s *Schema) CreateStatements(d Dialect) []string {
	var creates, alters []string

	for i := range s.Entities {
		e := &s.Entities[i]
		defs := []string{fmt.Sprintf("%s %s PRIMARY KEY", Quote("id"), idType(d))}

		for _, a := range e.Attributes {
			def := Quote(a.Name) + " " + columnType(d, a.Type)
			if !a.Optional {
				def += " NOT NULL"
			}
			defs = append(defs, def)
		}

		for _, r := range e.Relationships {
			target := s.byName[r.Target]
			def := Quote(r.Column()) + " " + idType(d)
			if !r.Optional {
				def += " NOT NULL"
			}
			ref := fmt.Sprintf("REFERENCES %s (%s) DEFERRABLE INITIALLY DEFERRED",
				Quote(target.Table), Quote("id"))
			if d == SQLite {
				def += " " + ref
			} else {
				alters = append(alters, fmt.Sprintf("ALTER TABLE %s ADD FOREIGN KEY (%s) %s",
					Quote(e.Table), Quote(r.Column()), ref))
			}
			defs = append(defs, def)
		}

		creates = append(creates, fmt.Sprintf("CREATE TABLE %s (%s)",
			Quote(e.Table), strings.Join(defs, ", ")))
	}

	return append(creates, alters...)
}
