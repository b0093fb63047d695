// Package model defines the destination entity types the importer populates.
//
// Every entity embeds [Object], which carries its in-process identity: the
// primary key read from the source record (if any) and the row id the store
// assigns at commit time. Attributes and relationships are exposed as maps so
// the store can project them onto whatever columns the schema definition
// declares.
package model

// Attributes maps an attribute name to its typed value. Values are Go
// scalars (string, int32, bool, time.Time) or pgtype nullable wrappers.
type Attributes map[string]any

// Relationships maps a relationship name to the referenced entity.
// A nil value means the relationship is unset.
type Relationships map[string]Entity

// Entity is one materialized destination object.
type Entity interface {
	// Kind is the schema entity name, e.g. "Country".
	Kind() string
	// Base returns the embedded identity.
	Base() *Object
	Attributes() Attributes
	Relationships() Relationships
}

// Object holds the identity shared by all entities.
type Object struct {
	key    int
	hasKey bool
	rowID  int64
}

// Base returns o itself so embedding types satisfy Entity.
func (o *Object) Base() *Object { return o }

// SetPrimaryKey records the source primary key.
func (o *Object) SetPrimaryKey(key int) {
	o.key = key
	o.hasKey = true
}

// PrimaryKey returns the source primary key and whether one was recorded.
func (o *Object) PrimaryKey() (int, bool) {
	return o.key, o.hasKey
}

// SetRowID is called by the store when the entity is assigned a row.
func (o *Object) SetRowID(id int64) { o.rowID = id }

// RowID returns the row id assigned at commit, or zero before that.
func (o *Object) RowID() int64 { return o.rowID }

// link converts a possibly-nil entity pointer into an Entity without
// producing a non-nil interface around a nil pointer.
func link[P interface {
	*E
	Entity
}, E any](p P) Entity {
	if p == nil {
		return nil
	}
	return p
}
