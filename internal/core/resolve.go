package core

import "github.com/JonMunkholm/sakilaimport/internal/model"

// Resolve reads the foreign key field of rec and returns the referenced
// entity from m. table is the table being loaded and is reported in the
// error when the key does not resolve.
func Resolve[T model.Entity](m *EntityMap[T], table string, rec Record, field string) (T, error) {
	var zero T
	key, err := rec.Int(field)
	if err != nil {
		return zero, err
	}
	e, ok := m.Get(key)
	if !ok {
		return zero, &IntegrityError{
			Kind:   UnresolvedReference,
			Table:  table,
			Field:  field,
			Key:    key,
			Target: m.Table(),
		}
	}
	return e, nil
}

// ResolveOptional is Resolve for nullable foreign keys: a missing or null
// field yields the zero value and no error. A present key must resolve.
func ResolveOptional[T model.Entity](m *EntityMap[T], table string, rec Record, field string) (T, error) {
	var zero T
	if _, ok := rec.lookup(field); !ok {
		return zero, nil
	}
	return Resolve(m, table, rec, field)
}
