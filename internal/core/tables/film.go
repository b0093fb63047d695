package tables

import (
	"github.com/JonMunkholm/sakilaimport/internal/core"
	"github.com/JonMunkholm/sakilaimport/internal/model"
)

// specialFeaturesSep joins the special_features array into one column.
const specialFeaturesSep = ","

func registerFilmTables() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "film",
			Group:     groupFilm,
			Label:     "Films",
			DependsOn: []string{"language"},
		},
		Load: loadFilms,
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "film_actor",
			Group:     groupFilm,
			Label:     "Film actors",
			DependsOn: []string{"film", "actor"},
		},
		Load: loadFilmActors,
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "film_category",
			Group:     groupFilm,
			Label:     "Film categories",
			DependsOn: []string{"film", "category"},
		},
		Load: loadFilmCategories,
	})
}

// {"film_id":133,"title":"Chamber Italian","description":"...","release_year":2006,
// "language_id":1,"rental_duration":7,"rental_rate":4.99,"length":117,
// "replacement_cost":14.99,"rating":"NC-17","last_update":"2013-05-26T14:50:58.951",
// "special_features":["Trailers"],"fulltext":"..."}
//
// fulltext is a derived search column and is not imported.
func loadFilms(r *core.Run) (int, error) {
	languages, err := core.Map[*model.Language](r, "language")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "film", func() *model.Film { return new(model.Film) },
		func(rec core.Record, film *model.Film) error {
			f := core.Fields(rec)
			film.Title = f.Text("title")
			film.Description = f.OptText("description")
			film.ReleaseYear = f.OptInt32("release_year")
			film.RentalDuration = f.OptInt32("rental_duration")
			film.RentalRate = f.Decimal("rental_rate")
			film.Length = f.Int32("length")
			film.ReplacementCost = f.Decimal("replacement_cost")
			film.Rating = f.OptText("rating")
			film.SpecialFeatures = f.JoinedStrings("special_features", specialFeaturesSep)
			film.LastUpdate = f.Timestamp("last_update")
			if err := f.Err(); err != nil {
				return err
			}

			lang, err := core.Resolve(languages, "film", rec, "language_id")
			if err != nil {
				return err
			}
			film.Language = lang

			orig, err := core.ResolveOptional(languages, "film", rec, "original_language_id")
			if err != nil {
				return err
			}
			film.OriginalLanguage = orig
			return nil
		})
	return n, err
}

// {"actor_id":1,"film_id":1,"last_update":"2006-02-15T10:05:03"}
func loadFilmActors(r *core.Run) (int, error) {
	films, err := core.Map[*model.Film](r, "film")
	if err != nil {
		return 0, err
	}
	actors, err := core.Map[*model.Actor](r, "actor")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "film_actor", func() *model.FilmActor { return new(model.FilmActor) },
		func(rec core.Record, fa *model.FilmActor) error {
			var err error
			if fa.LastUpdate, err = rec.Timestamp("last_update"); err != nil {
				return err
			}
			if fa.Film, err = core.Resolve(films, "film_actor", rec, "film_id"); err != nil {
				return err
			}
			fa.Actor, err = core.Resolve(actors, "film_actor", rec, "actor_id")
			return err
		})
	return n, err
}

// {"film_id":1,"category_id":6,"last_update":"2006-02-15T10:07:09"}
func loadFilmCategories(r *core.Run) (int, error) {
	films, err := core.Map[*model.Film](r, "film")
	if err != nil {
		return 0, err
	}
	categories, err := core.Map[*model.Category](r, "category")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "film_category", func() *model.FilmCategory { return new(model.FilmCategory) },
		func(rec core.Record, fc *model.FilmCategory) error {
			var err error
			if fc.LastUpdate, err = rec.Timestamp("last_update"); err != nil {
				return err
			}
			if fc.Film, err = core.Resolve(films, "film_category", rec, "film_id"); err != nil {
				return err
			}
			fc.Category, err = core.Resolve(categories, "film_category", rec, "category_id")
			return err
		})
	return n, err
}
