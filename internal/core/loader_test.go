package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JonMunkholm/sakilaimport/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records inserts and the commit/discard lifecycle.
type fakeStore struct {
	inserted  []model.Entity
	insertErr error
	commitErr error
	committed int
	discarded int
}

func (s *fakeStore) Insert(e model.Entity) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, e)
	return nil
}

func (s *fakeStore) Commit(context.Context) error {
	s.committed++
	return s.commitErr
}

func (s *fakeStore) Discard() error {
	s.discarded++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRun(snap Snapshot, store Store) *Run {
	return newRun(context.Background(), "test-run", snap, store, discardLogger())
}

func fillCountry(rec Record, c *model.Country) error {
	f := Fields(rec)
	c.Country = f.Text("country")
	c.LastUpdate = f.Timestamp("last_update")
	return f.Err()
}

func loadCountries(r *Run) (*EntityMap[*model.Country], int, error) {
	return Load(r, "country", func() *model.Country { return new(model.Country) }, fillCountry)
}

func TestLoad(t *testing.T) {
	snap := Snapshot{"country": {
		{"country_id": 1, "country": "Afghanistan", "last_update": "2006-02-15T09:44:00"},
		{"country_id": 2, "country": "Algeria", "last_update": "2006-02-15T09:44:00"},
		{"country": "Nowhere", "last_update": "2006-02-15T09:44:00"},
	}}
	store := &fakeStore{}
	r := testRun(snap, store)

	m, count, err := loadCountries(r)
	require.NoError(t, err)

	assert.Equal(t, 3, count, "every record creates an entity")
	assert.Equal(t, 2, m.Len(), "only keyed records enter the map")
	assert.Equal(t, []int{1, 2}, m.Keys())
	assert.Len(t, store.inserted, 3)

	algeria, ok := m.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Algeria", algeria.Country)
	key, hasKey := algeria.PrimaryKey()
	assert.True(t, hasKey)
	assert.Equal(t, 2, key)

	_, hasKey = store.inserted[2].Base().PrimaryKey()
	assert.False(t, hasKey)
}

func TestLoad_EmptyTable(t *testing.T) {
	r := testRun(Snapshot{}, &fakeStore{})

	m, count, err := loadCountries(r)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, m.Len())

	// An absent table still publishes its (empty) map.
	_, err = Map[*model.Country](r, "country")
	assert.NoError(t, err)
}

func TestLoad_DuplicateKey(t *testing.T) {
	snap := Snapshot{"country": {
		{"country_id": 7, "country": "A", "last_update": "2006-02-15T09:44:00"},
		{"country_id": 7, "country": "B", "last_update": "2006-02-15T09:44:00"},
	}}
	_, _, err := loadCountries(testRun(snap, &fakeStore{}))

	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, DuplicateKey, ie.Kind)
	assert.Equal(t, "country", ie.Table)
	assert.Equal(t, "country_id", ie.Field)
	assert.Equal(t, 7, ie.Key)
}

func TestLoad_WriteOnce(t *testing.T) {
	r := testRun(Snapshot{}, &fakeStore{})
	_, _, err := loadCountries(r)
	require.NoError(t, err)

	_, _, err = loadCountries(r)
	assert.ErrorContains(t, err, "already loaded")
}

func TestLoad_CoercionErrorCarriesPosition(t *testing.T) {
	snap := Snapshot{"country": {
		{"country_id": 1, "country": "A", "last_update": "2006-02-15T09:44:00"},
		{"country_id": 4, "country": 12, "last_update": "2006-02-15T09:44:00"},
	}}
	_, _, err := loadCountries(testRun(snap, &fakeStore{}))

	var ce *CoercionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "country", ce.Table)
	assert.Equal(t, "4", ce.Key)
	assert.Equal(t, "country", ce.Field)
	assert.ErrorIs(t, err, ErrCoercion)
}

func TestLoad_UnkeyedRecordUsesIndex(t *testing.T) {
	snap := Snapshot{"country": {
		{"country": "A", "last_update": "yesterday"},
	}}
	_, _, err := loadCountries(testRun(snap, &fakeStore{}))

	var ce *CoercionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "#0", ce.Key)
}

func TestLoad_StoreRejectsInsert(t *testing.T) {
	snap := Snapshot{"country": {{"country_id": 1, "country": "A", "last_update": "2006-02-15T09:44:00"}}}
	store := &fakeStore{insertErr: errors.New("unknown entity Country")}

	_, _, err := loadCountries(testRun(snap, store))
	assert.ErrorContains(t, err, "unknown entity Country")
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap := Snapshot{"country": {{"country_id": 1, "country": "A", "last_update": "2006-02-15T09:44:00"}}}
	r := newRun(ctx, "test-run", snap, &fakeStore{}, discardLogger())

	_, _, err := loadCountries(r)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMap(t *testing.T) {
	r := testRun(Snapshot{}, &fakeStore{})

	_, err := Map[*model.Country](r, "country")
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, UnloadedTable, ie.Kind)
	assert.Equal(t, "country", ie.Target)

	_, _, err = loadCountries(r)
	require.NoError(t, err)

	_, err = Map[*model.City](r, "country")
	assert.ErrorContains(t, err, "not the requested entity type")
}

func TestResolve(t *testing.T) {
	snap := Snapshot{"country": {{"country_id": 5, "country": "Chad", "last_update": "2006-02-15T09:44:00"}}}
	r := testRun(snap, &fakeStore{})
	countries, _, err := loadCountries(r)
	require.NoError(t, err)

	got, err := Resolve(countries, "city", Record{"country_id": 5}, "country_id")
	require.NoError(t, err)
	assert.Equal(t, "Chad", got.Country)

	_, err = Resolve(countries, "city", Record{"country_id": 99}, "country_id")
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, UnresolvedReference, ie.Kind)
	assert.Equal(t, "city", ie.Table)
	assert.Equal(t, "country_id", ie.Field)
	assert.Equal(t, 99, ie.Key)
	assert.Equal(t, "country", ie.Target)

	_, err = Resolve(countries, "city", Record{}, "country_id")
	assert.ErrorIs(t, err, ErrCoercion)
}

func TestResolveOptional(t *testing.T) {
	snap := Snapshot{"country": {{"country_id": 5, "country": "Chad", "last_update": "2006-02-15T09:44:00"}}}
	r := testRun(snap, &fakeStore{})
	countries, _, err := loadCountries(r)
	require.NoError(t, err)

	got, err := ResolveOptional(countries, "city", Record{"country_id": nil}, "country_id")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ResolveOptional(countries, "city", Record{}, "country_id")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ResolveOptional(countries, "city", Record{"country_id": 5}, "country_id")
	require.NoError(t, err)
	assert.Equal(t, "Chad", got.Country)

	_, err = ResolveOptional(countries, "city", Record{"country_id": 6}, "country_id")
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestDeferred(t *testing.T) {
	r := testRun(Snapshot{}, &fakeStore{})

	waiting, err := Pending[*model.Staff](r, "staff", "store")
	require.NoError(t, err)

	mike, jon, ann := &model.Staff{FirstName: "Mike"}, &model.Staff{FirstName: "Jon"}, &model.Staff{FirstName: "Ann"}
	waiting.Defer(1, mike)
	waiting.Defer(2, jon)
	waiting.Defer(1, ann)

	assert.Equal(t, 2, waiting.Len())
	assert.Equal(t, []int{1, 2}, waiting.Keys())

	again, err := Pending[*model.Staff](r, "staff", "store")
	require.NoError(t, err)
	assert.Same(t, waiting, again, "the side table is created once per run")

	assert.Equal(t, []*model.Staff{mike, ann}, waiting.Drain(1))
	assert.Empty(t, waiting.Drain(1), "drained keys are removed")

	err = r.verifyPending()
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, DanglingReference, ie.Kind)
	assert.Equal(t, "staff", ie.Table)
	assert.Equal(t, "store", ie.Target)
	assert.Equal(t, []int{2}, ie.Keys)

	waiting.Drain(2)
	assert.NoError(t, r.verifyPending())
}

func TestPending_TypeMismatch(t *testing.T) {
	r := testRun(Snapshot{}, &fakeStore{})
	_, err := Pending[*model.Staff](r, "staff", "store")
	require.NoError(t, err)

	_, err = Pending[*model.Store](r, "staff", "store")
	assert.Error(t, err)
}
