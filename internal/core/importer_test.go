package core

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/sakilaimport/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countryCityTables is a two-table graph: city references country.
func countryCityTables() []TableDefinition {
	return []TableDefinition{
		{
			Info: TableInfo{Key: "city", Label: "Cities", DependsOn: []string{"country"}},
			Load: func(r *Run) (int, error) {
				countries, err := Map[*model.Country](r, "country")
				if err != nil {
					return 0, err
				}
				_, n, err := Load(r, "city", func() *model.City { return new(model.City) }, func(rec Record, c *model.City) error {
					f := Fields(rec)
					c.City = f.Text("city")
					c.LastUpdate = f.Timestamp("last_update")
					if err := f.Err(); err != nil {
						return err
					}
					country, err := Resolve(countries, "city", rec, "country_id")
					c.Country = country
					return err
				})
				return n, err
			},
		},
		{
			Info: TableInfo{Key: "country", Label: "Countries"},
			Load: func(r *Run) (int, error) {
				_, n, err := loadCountries(r)
				return n, err
			},
		},
	}
}

func countryCitySnapshot() Snapshot {
	return Snapshot{
		"country": {{"country_id": 1, "country": "Chad", "last_update": "2006-02-15T09:44:00"}},
		"city": {
			{"city_id": 10, "city": "N'Djamena", "country_id": 1, "last_update": "2006-02-15T09:45:25"},
			{"city_id": 11, "city": "Moundou", "country_id": 1, "last_update": "2006-02-15T09:45:25"},
		},
	}
}

func newTestImporter(store Store, opts ...Option) *Importer {
	opts = append([]Option{WithLogger(discardLogger()), WithTables(countryCityTables()...)}, opts...)
	return NewImporter(store, opts...)
}

func TestImport(t *testing.T) {
	store := &fakeStore{}
	im := newTestImporter(store, WithRunID("run-1"))

	result, err := im.Import(context.Background(), countryCitySnapshot())
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, []TableCount{
		{Table: "country", Label: "Countries", Count: 1},
		{Table: "city", Label: "Cities", Count: 2},
	}, result.Counts)
	assert.Equal(t, 3, result.Total())
	assert.Equal(t, 2, result.Count("city"))
	assert.Zero(t, result.Count("film"))
	assert.Empty(t, result.Diagnostics)

	assert.Equal(t, 1, store.committed)
	assert.Zero(t, store.discarded)
	require.Len(t, store.inserted, 3)

	city := store.inserted[1].(*model.City)
	require.NotNil(t, city.Country)
	assert.Same(t, store.inserted[0], model.Entity(city.Country))
}

func TestImport_GeneratesRunID(t *testing.T) {
	im := newTestImporter(&fakeStore{})
	assert.NotEmpty(t, im.RunID())
	assert.NotEqual(t, im.RunID(), newTestImporter(&fakeStore{}).RunID())
}

func TestImport_Diagnostics(t *testing.T) {
	snap := Snapshot{
		"country":        {{"country_id": 1, "country": "Chad", "last_update": "2006-02-15T09:44:00"}},
		"film_text":      {{"film_id": 1}},
		"sales_by_store": {},
	}
	store := &fakeStore{}

	result, err := newTestImporter(store).Import(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"table city absent from snapshot, loaded as empty",
		"unknown table film_text ignored (1 records)",
		"unknown table sales_by_store ignored (0 records)",
	}, result.Diagnostics)
	assert.Equal(t, 0, result.Count("city"))
	assert.Equal(t, 1, store.committed)
}

func TestImport_RequireAllTables(t *testing.T) {
	snap := Snapshot{"country": {{"country_id": 1, "country": "Chad", "last_update": "2006-02-15T09:44:00"}}}
	store := &fakeStore{}

	_, err := newTestImporter(store, WithRequireAllTables(true)).Import(context.Background(), snap)

	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, UnloadedTable, ie.Kind)
	assert.Equal(t, "city", ie.Target)
	assert.Zero(t, store.committed)
	assert.Equal(t, 1, store.discarded)
}

func TestImport_UnresolvedReferenceDiscards(t *testing.T) {
	snap := countryCitySnapshot()
	snap["city"][1]["country_id"] = 9999
	store := &fakeStore{}

	result, err := newTestImporter(store).Import(context.Background(), snap)
	assert.Nil(t, result)

	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, UnresolvedReference, ie.Kind)
	assert.Equal(t, "city", ie.Table)
	assert.Equal(t, 9999, ie.Key)
	assert.Zero(t, store.committed, "nothing is committed after a failure")
	assert.Equal(t, 1, store.discarded)
}

func TestImport_CommitError(t *testing.T) {
	store := &fakeStore{commitErr: errors.New("disk full")}

	_, err := newTestImporter(store).Import(context.Background(), countryCitySnapshot())

	assert.ErrorIs(t, err, ErrCommit)
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, store.discarded)
}

func TestImport_DanglingDeferredReference(t *testing.T) {
	tables := []TableDefinition{{
		Info: TableInfo{Key: "staff"},
		Load: func(r *Run) (int, error) {
			waiting, err := Pending[*model.Staff](r, "staff", "store")
			if err != nil {
				return 0, err
			}
			s := &model.Staff{}
			waiting.Defer(3, s)
			return 1, r.store.Insert(s)
		},
	}}
	store := &fakeStore{}

	_, err := NewImporter(store, WithLogger(discardLogger()), WithTables(tables...)).
		Import(context.Background(), Snapshot{"staff": {}})

	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, DanglingReference, ie.Kind)
	assert.Equal(t, []int{3}, ie.Keys)
	assert.Zero(t, store.committed)
}

func TestImport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &fakeStore{}

	_, err := newTestImporter(store).Import(ctx, countryCitySnapshot())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, store.discarded)
}

func TestImport_PlanError(t *testing.T) {
	tables := []TableDefinition{
		{Info: TableInfo{Key: "a", DependsOn: []string{"b"}}, Load: noopLoad},
		{Info: TableInfo{Key: "b", DependsOn: []string{"a"}}, Load: noopLoad},
	}
	_, err := NewImporter(&fakeStore{}, WithLogger(discardLogger()), WithTables(tables...)).
		Import(context.Background(), Snapshot{})
	assert.ErrorContains(t, err, "dependency cycle")
}
