package model

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Customer rents inventory from a home Store.
//
// The source carries two activity flags: the boolean activebool and the
// integer active. Both are surfaced; the schema decides which columns exist.
type Customer struct {
	Object
	FirstName  string
	LastName   string
	Email      pgtype.Text
	Active     bool
	ActiveCode pgtype.Int4
	CreateDate time.Time
	LastUpdate time.Time

	Address *Address
	Store   *Store
}

func (*Customer) Kind() string { return "Customer" }

func (c *Customer) Attributes() Attributes {
	return Attributes{
		"first_name":  c.FirstName,
		"last_name":   c.LastName,
		"email":       c.Email,
		"active":      c.Active,
		"active_code": c.ActiveCode,
		"create_date": c.CreateDate,
		"last_update": c.LastUpdate,
	}
}

func (c *Customer) Relationships() Relationships {
	return Relationships{"address": link(c.Address), "store": link(c.Store)}
}

// Rental records one inventory item handed to a customer.
type Rental struct {
	Object
	RentalDate time.Time
	ReturnDate pgtype.Timestamptz
	LastUpdate time.Time

	Inventory *Inventory
	Customer  *Customer
	Staff     *Staff
}

func (*Rental) Kind() string { return "Rental" }

func (r *Rental) Attributes() Attributes {
	return Attributes{
		"rental_date": r.RentalDate,
		"return_date": r.ReturnDate,
		"last_update": r.LastUpdate,
	}
}

func (r *Rental) Relationships() Relationships {
	return Relationships{
		"inventory": link(r.Inventory),
		"customer":  link(r.Customer),
		"staff":     link(r.Staff),
	}
}

// Payment settles a Rental.
type Payment struct {
	Object
	Amount      pgtype.Numeric
	PaymentDate time.Time
	LastUpdate  time.Time

	Customer *Customer
	Staff    *Staff
	Rental   *Rental
}

func (*Payment) Kind() string { return "Payment" }

func (p *Payment) Attributes() Attributes {
	return Attributes{
		"amount":       p.Amount,
		"payment_date": p.PaymentDate,
		"last_update":  p.LastUpdate,
	}
}

func (p *Payment) Relationships() Relationships {
	return Relationships{
		"customer": link(p.Customer),
		"staff":    link(p.Staff),
		"rental":   link(p.Rental),
	}
}
