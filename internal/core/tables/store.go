package tables

import (
	"github.com/JonMunkholm/sakilaimport/internal/core"
	"github.com/JonMunkholm/sakilaimport/internal/model"
)

// Staff and store reference each other: staff.store_id names the store a
// member works at and store.manager_staff_id names one staff member. Staff
// loads first and parks each member under its store_id; the store loader
// hands the members their store as each store is created.
func registerStaffAndStore() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "staff",
			Group:     groupStore,
			Label:     "Staff",
			DependsOn: []string{"address"},
			Defers:    []string{"store"},
		},
		Load: loadStaff,
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "store",
			Group:     groupStore,
			Label:     "Stores",
			DependsOn: []string{"address", "staff"},
		},
		Load: loadStores,
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "inventory",
			Group:     groupStore,
			Label:     "Inventory",
			DependsOn: []string{"store", "film"},
		},
		Load: loadInventory,
	})
}

// {"staff_id":1,"first_name":"Mike","last_name":"Hillyer","address_id":3,
// "email":"Mike.Hillyer@sakilastaff.com","store_id":1,"active":true,
// "username":"Mike","password":"8cb2237d...","last_update":"2006-05-16T16:13:11.79328","picture":"..."}
//
// picture is a hex string in the export and is not imported.
func loadStaff(r *core.Run) (int, error) {
	addresses, err := core.Map[*model.Address](r, "address")
	if err != nil {
		return 0, err
	}
	waiting, err := core.Pending[*model.Staff](r, "staff", "store")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "staff", func() *model.Staff { return new(model.Staff) },
		func(rec core.Record, s *model.Staff) error {
			f := core.Fields(rec)
			s.FirstName = f.Text("first_name")
			s.LastName = f.Text("last_name")
			s.Email = f.OptText("email")
			s.Active = f.OptBool("active")
			s.Username = f.Text("username")
			s.Password = f.Text("password")
			s.LastUpdate = f.Timestamp("last_update")
			storeID := f.Int("store_id")
			if err := f.Err(); err != nil {
				return err
			}

			address, err := core.Resolve(addresses, "staff", rec, "address_id")
			if err != nil {
				return err
			}
			s.Address = address

			waiting.Defer(storeID, s)
			return nil
		})
	return n, err
}

// {"store_id":1,"manager_staff_id":1,"address_id":1,"last_update":"2006-02-15T09:57:12"}
func loadStores(r *core.Run) (int, error) {
	addresses, err := core.Map[*model.Address](r, "address")
	if err != nil {
		return 0, err
	}
	staff, err := core.Map[*model.Staff](r, "staff")
	if err != nil {
		return 0, err
	}
	waiting, err := core.Pending[*model.Staff](r, "staff", "store")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "store", func() *model.Store { return new(model.Store) },
		func(rec core.Record, st *model.Store) error {
			var err error
			if st.LastUpdate, err = rec.Timestamp("last_update"); err != nil {
				return err
			}
			if st.Address, err = core.Resolve(addresses, "store", rec, "address_id"); err != nil {
				return err
			}
			if st.Manager, err = core.Resolve(staff, "store", rec, "manager_staff_id"); err != nil {
				return err
			}

			if key, ok := st.PrimaryKey(); ok {
				for _, member := range waiting.Drain(key) {
					member.Store = st
				}
			}
			return nil
		})
	if err != nil {
		return 0, err
	}

	if err := waiting.Verify(); err != nil {
		return 0, err
	}
	return n, nil
}

// {"inventory_id":1,"film_id":1,"store_id":1,"last_update":"2006-02-15T10:09:17"}
func loadInventory(r *core.Run) (int, error) {
	stores, err := core.Map[*model.Store](r, "store")
	if err != nil {
		return 0, err
	}
	films, err := core.Map[*model.Film](r, "film")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "inventory", func() *model.Inventory { return new(model.Inventory) },
		func(rec core.Record, inv *model.Inventory) error {
			var err error
			if inv.LastUpdate, err = rec.Timestamp("last_update"); err != nil {
				return err
			}
			if inv.Store, err = core.Resolve(stores, "inventory", rec, "store_id"); err != nil {
				return err
			}
			inv.Film, err = core.Resolve(films, "inventory", rec, "film_id")
			return err
		})
	return n, err
}
