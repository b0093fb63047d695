package model

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Film is a catalogue title.
type Film struct {
	Object
	Title           string
	Description     pgtype.Text
	ReleaseYear     pgtype.Int4
	RentalDuration  pgtype.Int4
	RentalRate      pgtype.Numeric
	Length          int32
	ReplacementCost pgtype.Numeric
	Rating          pgtype.Text
	// SpecialFeatures is the comma-joined feature tag list.
	SpecialFeatures pgtype.Text
	LastUpdate      time.Time

	Language         *Language
	OriginalLanguage *Language
}

func (*Film) Kind() string { return "Film" }

func (f *Film) Attributes() Attributes {
	return Attributes{
		"title":            f.Title,
		"description":      f.Description,
		"release_year":     f.ReleaseYear,
		"rental_duration":  f.RentalDuration,
		"rental_rate":      f.RentalRate,
		"length":           f.Length,
		"replacement_cost": f.ReplacementCost,
		"rating":           f.Rating,
		"special_features": f.SpecialFeatures,
		"last_update":      f.LastUpdate,
	}
}

func (f *Film) Relationships() Relationships {
	return Relationships{
		"language":          link(f.Language),
		"original_language": link(f.OriginalLanguage),
	}
}

// FilmActor joins Film and Actor.
type FilmActor struct {
	Object
	LastUpdate time.Time

	Film  *Film
	Actor *Actor
}

func (*FilmActor) Kind() string { return "FilmActor" }

func (fa *FilmActor) Attributes() Attributes {
	return Attributes{"last_update": fa.LastUpdate}
}

func (fa *FilmActor) Relationships() Relationships {
	return Relationships{"film": link(fa.Film), "actor": link(fa.Actor)}
}

// FilmCategory joins Film and Category.
type FilmCategory struct {
	Object
	LastUpdate time.Time

	Film     *Film
	Category *Category
}

func (*FilmCategory) Kind() string { return "FilmCategory" }

func (fc *FilmCategory) Attributes() Attributes {
	return Attributes{"last_update": fc.LastUpdate}
}

func (fc *FilmCategory) Relationships() Relationships {
	return Relationships{"film": link(fc.Film), "category": link(fc.Category)}
}
