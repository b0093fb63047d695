package model

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// City belongs to a Country.
type City struct {
	Object
	City       string
	LastUpdate time.Time

	Country *Country
}

func (*City) Kind() string { return "City" }

func (c *City) Attributes() Attributes {
	return Attributes{"city": c.City, "last_update": c.LastUpdate}
}

func (c *City) Relationships() Relationships {
	return Relationships{"country": link(c.Country)}
}

// Address is shared by staff, stores and customers.
type Address struct {
	Object
	Address    string
	Address2   pgtype.Text
	District   string
	PostalCode pgtype.Text
	Phone      pgtype.Text
	LastUpdate time.Time

	City *City
}

func (*Address) Kind() string { return "Address" }

func (a *Address) Attributes() Attributes {
	return Attributes{
		"address":     a.Address,
		"address2":    a.Address2,
		"district":    a.District,
		"postal_code": a.PostalCode,
		"phone":       a.Phone,
		"last_update": a.LastUpdate,
	}
}

func (a *Address) Relationships() Relationships {
	return Relationships{"city": link(a.City)}
}
