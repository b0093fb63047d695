package tables

import (
	"github.com/JonMunkholm/sakilaimport/internal/core"
	"github.com/JonMunkholm/sakilaimport/internal/model"
)

func registerAddressTables() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "city",
			Group:     groupAddress,
			Label:     "Cities",
			DependsOn: []string{"country"},
		},
		Load: loadCities,
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "address",
			Group:     groupAddress,
			Label:     "Addresses",
			DependsOn: []string{"city"},
		},
		Load: loadAddresses,
	})
}

// {"city_id":1,"city":"A Corua (La Corua)","country_id":87,"last_update":"2006-02-15T09:45:25"}
func loadCities(r *core.Run) (int, error) {
	countries, err := core.Map[*model.Country](r, "country")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "city", func() *model.City { return new(model.City) },
		func(rec core.Record, c *model.City) error {
			f := core.Fields(rec)
			c.City = f.Text("city")
			c.LastUpdate = f.Timestamp("last_update")
			if err := f.Err(); err != nil {
				return err
			}

			country, err := core.Resolve(countries, "city", rec, "country_id")
			if err != nil {
				return err
			}
			c.Country = country
			return nil
		})
	return n, err
}

// {"address_id":2,"address":"28 MySQL Boulevard","address2":null,"district":"QLD",
// "city_id":576,"postal_code":"","phone":"","last_update":"2006-02-15T09:45:30"}
func loadAddresses(r *core.Run) (int, error) {
	cities, err := core.Map[*model.City](r, "city")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "address", func() *model.Address { return new(model.Address) },
		func(rec core.Record, a *model.Address) error {
			f := core.Fields(rec)
			a.Address = f.Text("address")
			a.Address2 = f.OptText("address2")
			a.District = f.Text("district")
			a.PostalCode = f.OptText("postal_code")
			a.Phone = f.OptText("phone")
			a.LastUpdate = f.Timestamp("last_update")
			if err := f.Err(); err != nil {
				return err
			}

			city, err := core.Resolve(cities, "address", rec, "city_id")
			if err != nil {
				return err
			}
			a.City = city
			return nil
		})
	return n, err
}
