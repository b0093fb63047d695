package tables

import (
	"github.com/JonMunkholm/sakilaimport/internal/core"
	"github.com/JonMunkholm/sakilaimport/internal/model"
)

func registerCustomerTables() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "customer",
			Group:     groupCustomer,
			Label:     "Customers",
			DependsOn: []string{"store", "address"},
		},
		Load: loadCustomers,
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "rental",
			Group:     groupCustomer,
			Label:     "Rentals",
			DependsOn: []string{"inventory", "customer", "staff"},
		},
		Load: loadRentals,
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "payment",
			Group:     groupCustomer,
			Label:     "Payments",
			DependsOn: []string{"customer", "staff", "rental"},
		},
		Load: loadPayments,
	})
}

// {"customer_id":524,"store_id":1,"first_name":"Jared","last_name":"Ely",
// "email":"jared.ely@sakilacustomer.org","address_id":530,"activebool":true,
// "create_date":"2006-02-14","last_update":"2013-05-26T14:49:45.738","active":1}
//
// activebool and active carry the same flag in two shapes; both are kept and
// the schema decides which columns are written.
func loadCustomers(r *core.Run) (int, error) {
	stores, err := core.Map[*model.Store](r, "store")
	if err != nil {
		return 0, err
	}
	addresses, err := core.Map[*model.Address](r, "address")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "customer", func() *model.Customer { return new(model.Customer) },
		func(rec core.Record, c *model.Customer) error {
			f := core.Fields(rec)
			c.FirstName = f.Text("first_name")
			c.LastName = f.Text("last_name")
			c.Email = f.OptText("email")
			c.Active = f.OptBool("activebool")
			c.ActiveCode = f.OptInt32("active")
			c.CreateDate = f.CalendarDate("create_date")
			c.LastUpdate = f.Timestamp("last_update")
			if err := f.Err(); err != nil {
				return err
			}

			var err error
			if c.Address, err = core.Resolve(addresses, "customer", rec, "address_id"); err != nil {
				return err
			}
			c.Store, err = core.Resolve(stores, "customer", rec, "store_id")
			return err
		})
	return n, err
}

// {"rental_id":2,"rental_date":"2005-05-24T22:54:33","inventory_id":1525,
// "customer_id":459,"return_date":"2005-05-28T19:40:33","staff_id":1,
// "last_update":"2006-02-16T02:30:53"}
func loadRentals(r *core.Run) (int, error) {
	inventory, err := core.Map[*model.Inventory](r, "inventory")
	if err != nil {
		return 0, err
	}
	customers, err := core.Map[*model.Customer](r, "customer")
	if err != nil {
		return 0, err
	}
	staff, err := core.Map[*model.Staff](r, "staff")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "rental", func() *model.Rental { return new(model.Rental) },
		func(rec core.Record, rt *model.Rental) error {
			f := core.Fields(rec)
			rt.RentalDate = f.Timestamp("rental_date")
			rt.ReturnDate = f.OptTimestamp("return_date")
			rt.LastUpdate = f.Timestamp("last_update")
			if err := f.Err(); err != nil {
				return err
			}

			var err error
			if rt.Inventory, err = core.Resolve(inventory, "rental", rec, "inventory_id"); err != nil {
				return err
			}
			if rt.Customer, err = core.Resolve(customers, "rental", rec, "customer_id"); err != nil {
				return err
			}
			rt.Staff, err = core.Resolve(staff, "rental", rec, "staff_id")
			return err
		})
	return n, err
}

// {"payment_id":17503,"customer_id":341,"staff_id":2,"rental_id":1520,
// "amount":7.99,"payment_date":"2007-02-15T22:25:46.996577"}
//
// The export has no last_update for payments; payment_date stands in.
func loadPayments(r *core.Run) (int, error) {
	customers, err := core.Map[*model.Customer](r, "customer")
	if err != nil {
		return 0, err
	}
	staff, err := core.Map[*model.Staff](r, "staff")
	if err != nil {
		return 0, err
	}
	rentals, err := core.Map[*model.Rental](r, "rental")
	if err != nil {
		return 0, err
	}

	_, n, err := core.Load(r, "payment", func() *model.Payment { return new(model.Payment) },
		func(rec core.Record, p *model.Payment) error {
			f := core.Fields(rec)
			p.Amount = f.Decimal("amount")
			p.PaymentDate = f.Timestamp("payment_date")
			lastUpdate := f.OptTimestamp("last_update")
			if err := f.Err(); err != nil {
				return err
			}
			p.LastUpdate = p.PaymentDate
			if lastUpdate.Valid {
				p.LastUpdate = lastUpdate.Time
			}

			var err error
			if p.Customer, err = core.Resolve(customers, "payment", rec, "customer_id"); err != nil {
				return err
			}
			if p.Staff, err = core.Resolve(staff, "payment", rec, "staff_id"); err != nil {
				return err
			}
			p.Rental, err = core.Resolve(rentals, "payment", rec, "rental_id")
			return err
		})
	return n, err
}
