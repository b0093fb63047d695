package model

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Staff works at a Store. Staff and Store reference each other: a store's
// manager is a staff member, and every staff member belongs to a store.
type Staff struct {
	Object
	FirstName  string
	LastName   string
	Email      pgtype.Text
	Active     bool
	Username   string
	Password   string
	LastUpdate time.Time

	Address *Address
	Store   *Store
}

func (*Staff) Kind() string { return "Staff" }

func (s *Staff) Attributes() Attributes {
	return Attributes{
		"first_name":  s.FirstName,
		"last_name":   s.LastName,
		"email":       s.Email,
		"active":      s.Active,
		"username":    s.Username,
		"password":    s.Password,
		"last_update": s.LastUpdate,
	}
}

func (s *Staff) Relationships() Relationships {
	return Relationships{"address": link(s.Address), "store": link(s.Store)}
}

// Store is a rental location managed by a Staff member.
type Store struct {
	Object
	LastUpdate time.Time

	Address *Address
	Manager *Staff
}

func (*Store) Kind() string { return "Store" }

func (s *Store) Attributes() Attributes {
	return Attributes{"last_update": s.LastUpdate}
}

func (s *Store) Relationships() Relationships {
	return Relationships{"address": link(s.Address), "manager": link(s.Manager)}
}

// Inventory is one physical copy of a Film held by a Store.
type Inventory struct {
	Object
	LastUpdate time.Time

	Store *Store
	Film  *Film
}

func (*Inventory) Kind() string { return "Inventory" }

func (i *Inventory) Attributes() Attributes {
	return Attributes{"last_update": i.LastUpdate}
}

func (i *Inventory) Relationships() Relationships {
	return Relationships{"store": link(i.Store), "film": link(i.Film)}
}
