// Package schema loads the destination schema definition.
//
// A schema file is TOML. It lists entities, the table each one is stored in,
// the typed attributes that become columns and the relationships that become
// foreign-key columns. The importer only populates what the schema declares.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed sakila.toml
var defaultSource []byte

// ErrUnknownEntity is returned when an entity kind is not declared.
var ErrUnknownEntity = errors.New("unknown entity")

// AttributeType is the destination type of an attribute column.
type AttributeType int

const (
	TypeString AttributeType = iota + 1
	TypeInt32
	TypeInt64
	TypeDecimal
	TypeTimestamp
	TypeBool
)

var typeNames = map[AttributeType]string{
	TypeString:    "string",
	TypeInt32:     "int32",
	TypeInt64:     "int64",
	TypeDecimal:   "decimal",
	TypeTimestamp: "timestamp",
	TypeBool:      "bool",
}

func (t AttributeType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("AttributeType(%d)", int(t))
}

// UnmarshalText lets TOML decode type names directly.
func (t *AttributeType) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for typ, n := range typeNames {
		if n == name {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown attribute type %q", name)
}

// Attribute is one typed column.
type Attribute struct {
	Name     string        `toml:"name"`
	Type     AttributeType `toml:"type"`
	Optional bool          `toml:"optional"`
}

// Relationship is a to-one reference stored as column Name+"_id".
type Relationship struct {
	Name     string `toml:"name"`
	Target   string `toml:"target"`
	Optional bool   `toml:"optional"`
}

// Column returns the foreign-key column name.
func (r Relationship) Column() string { return r.Name + "_id" }

// Entity describes one destination table.
type Entity struct {
	Name          string         `toml:"name"`
	Table         string         `toml:"table"`
	Attributes    []Attribute    `toml:"attribute"`
	Relationships []Relationship `toml:"relationship"`
}

// Columns returns the column names in insert order: id, attributes, then
// relationship columns.
func (e *Entity) Columns() []string {
	cols := make([]string, 0, 1+len(e.Attributes)+len(e.Relationships))
	cols = append(cols, "id")
	for _, a := range e.Attributes {
		cols = append(cols, a.Name)
	}
	for _, r := range e.Relationships {
		cols = append(cols, r.Column())
	}
	return cols
}

// Schema is a parsed and validated schema definition.
type Schema struct {
	Version  int      `toml:"version"`
	Entities []Entity `toml:"entity"`

	byName map[string]*Entity
}

// Load reads and parses a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates schema TOML.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys: %v", undecoded)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the embedded Sakila schema.
func Default() *Schema {
	s, err := Parse(defaultSource)
	if err != nil {
		panic(fmt.Sprintf("embedded schema is invalid: %v", err))
	}
	return s
}

// DefaultSource returns the embedded Sakila schema file contents.
func DefaultSource() []byte {
	return append([]byte(nil), defaultSource...)
}

// Validate checks names are unique and relationships point at declared
// entities. It also builds the lookup index used by Entity.
func (s *Schema) Validate() error {
	var errs []string

	s.byName = make(map[string]*Entity, len(s.Entities))
	tables := make(map[string]bool, len(s.Entities))
	for i := range s.Entities {
		e := &s.Entities[i]
		if e.Name == "" || e.Table == "" {
			errs = append(errs, fmt.Sprintf("entity #%d: name and table are required", i+1))
			continue
		}
		if _, dup := s.byName[e.Name]; dup {
			errs = append(errs, fmt.Sprintf("entity %s declared twice", e.Name))
		}
		if tables[e.Table] {
			errs = append(errs, fmt.Sprintf("table %s used by more than one entity", e.Table))
		}
		s.byName[e.Name] = e
		tables[e.Table] = true

		cols := map[string]bool{"id": true}
		for _, a := range e.Attributes {
			if a.Type == 0 {
				errs = append(errs, fmt.Sprintf("%s.%s: type is required", e.Name, a.Name))
			}
			if cols[a.Name] {
				errs = append(errs, fmt.Sprintf("%s: duplicate column %s", e.Name, a.Name))
			}
			cols[a.Name] = true
		}
		for _, r := range e.Relationships {
			if cols[r.Column()] {
				errs = append(errs, fmt.Sprintf("%s: duplicate column %s", e.Name, r.Column()))
			}
			cols[r.Column()] = true
		}
	}

	for _, e := range s.Entities {
		for _, r := range e.Relationships {
			if _, ok := s.byName[r.Target]; !ok {
				errs = append(errs, fmt.Sprintf("%s.%s: unknown target %s", e.Name, r.Name, r.Target))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid schema:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Entity returns the definition for kind.
func (s *Schema) Entity(kind string) (*Entity, error) {
	if e, ok := s.byName[kind]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, kind)
}

// MismatchError reports an entity whose values do not fit its definition.
type MismatchError struct {
	Entity string
	Column string
	Reason string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %s.%s: %s", e.Entity, e.Column, e.Reason)
}
