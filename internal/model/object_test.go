package model

import "testing"

func TestLinkNilPointer(t *testing.T) {
	var c *Country
	if got := link(c); got != nil {
		t.Fatalf("link(nil) = %#v, want nil interface", got)
	}

	city := &City{Country: &Country{Country: "Chad"}}
	if city.Relationships()["country"] == nil {
		t.Fatal("expected country relationship to be set")
	}
	if (&City{}).Relationships()["country"] != nil {
		t.Fatal("unset relationship must be a nil interface")
	}
}

func TestObjectIdentity(t *testing.T) {
	var s Staff
	if _, ok := s.PrimaryKey(); ok {
		t.Fatal("fresh object must not report a primary key")
	}
	s.SetPrimaryKey(7)
	s.SetRowID(7)
	if key, ok := s.Base().PrimaryKey(); !ok || key != 7 {
		t.Fatalf("PrimaryKey() = %d, %v; want 7, true", key, ok)
	}
	if s.RowID() != 7 {
		t.Fatalf("RowID() = %d, want 7", s.RowID())
	}
}

func TestEntitiesSatisfyInterface(t *testing.T) {
	entities := []Entity{
		&Language{}, &Actor{}, &Category{}, &Country{}, &City{}, &Address{},
		&Film{}, &FilmActor{}, &FilmCategory{}, &Staff{}, &Store{},
		&Inventory{}, &Customer{}, &Rental{}, &Payment{},
	}
	seen := make(map[string]bool)
	for _, e := range entities {
		if seen[e.Kind()] {
			t.Errorf("duplicate kind %q", e.Kind())
		}
		seen[e.Kind()] = true
		if e.Attributes() == nil {
			t.Errorf("%s: Attributes() returned nil", e.Kind())
		}
	}
}
