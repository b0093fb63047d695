package tables

import (
	"github.com/JonMunkholm/sakilaimport/internal/core"
	"github.com/JonMunkholm/sakilaimport/internal/model"
)

// Leaf tables have no foreign keys.
func registerLeafTables() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{Key: "language", Group: groupReference, Label: "Languages"},
		Load: loadLanguages,
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{Key: "actor", Group: groupReference, Label: "Actors"},
		Load: loadActors,
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{Key: "category", Group: groupReference, Label: "Categories"},
		Load: loadCategories,
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{Key: "country", Group: groupAddress, Label: "Countries"},
		Load: loadCountries,
	})
}

// {"language_id":1,"name":"English","last_update":"2006-02-15T10:02:19"}
func loadLanguages(r *core.Run) (int, error) {
	_, n, err := core.Load(r, "language", func() *model.Language { return new(model.Language) },
		func(rec core.Record, l *model.Language) error {
			f := core.Fields(rec)
			l.Name = f.Text("name")
			l.LastUpdate = f.Timestamp("last_update")
			return f.Err()
		})
	return n, err
}

// {"actor_id":1,"first_name":"Penelope","last_name":"Guiness","last_update":"2006-02-15T09:34:33"}
func loadActors(r *core.Run) (int, error) {
	_, n, err := core.Load(r, "actor", func() *model.Actor { return new(model.Actor) },
		func(rec core.Record, a *model.Actor) error {
			f := core.Fields(rec)
			a.FirstName = f.Text("first_name")
			a.LastName = f.Text("last_name")
			a.LastUpdate = f.Timestamp("last_update")
			return f.Err()
		})
	return n, err
}

func loadCategories(r *core.Run) (int, error) {
	_, n, err := core.Load(r, "category", func() *model.Category { return new(model.Category) },
		func(rec core.Record, c *model.Category) error {
			f := core.Fields(rec)
			c.Name = f.Text("name")
			c.LastUpdate = f.Timestamp("last_update")
			return f.Err()
		})
	return n, err
}

func loadCountries(r *core.Run) (int, error) {
	_, n, err := core.Load(r, "country", func() *model.Country { return new(model.Country) },
		func(rec core.Record, c *model.Country) error {
			f := core.Fields(rec)
			c.Country = f.Text("country")
			c.LastUpdate = f.Timestamp("last_update")
			return f.Err()
		})
	return n, err
}
