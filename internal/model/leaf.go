package model

import "time"

// Language is a film language.
type Language struct {
	Object
	Name       string
	LastUpdate time.Time
}

func (*Language) Kind() string { return "Language" }

func (l *Language) Attributes() Attributes {
	return Attributes{"name": l.Name, "last_update": l.LastUpdate}
}

func (*Language) Relationships() Relationships { return nil }

// Actor appears in films through FilmActor.
type Actor struct {
	Object
	FirstName  string
	LastName   string
	LastUpdate time.Time
}

func (*Actor) Kind() string { return "Actor" }

func (a *Actor) Attributes() Attributes {
	return Attributes{
		"first_name":  a.FirstName,
		"last_name":   a.LastName,
		"last_update": a.LastUpdate,
	}
}

func (*Actor) Relationships() Relationships { return nil }

// Category classifies films through FilmCategory.
type Category struct {
	Object
	Name       string
	LastUpdate time.Time
}

func (*Category) Kind() string { return "Category" }

func (c *Category) Attributes() Attributes {
	return Attributes{"name": c.Name, "last_update": c.LastUpdate}
}

func (*Category) Relationships() Relationships { return nil }

// Country is the root of the address chain.
type Country struct {
	Object
	Country    string
	LastUpdate time.Time
}

func (*Country) Kind() string { return "Country" }

func (c *Country) Attributes() Attributes {
	return Attributes{"country": c.Country, "last_update": c.LastUpdate}
}

func (*Country) Relationships() Relationships { return nil }
