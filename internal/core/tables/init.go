// Package tables registers all Sakila table definitions with the core registry.
// Import this package to ensure all tables are registered.
package tables

// Registration order is the plan's tie-break, so tables are registered here
// in one place rather than from per-file init functions.
func init() {
	registerLeafTables()
	registerAddressTables()
	registerFilmTables()
	registerStaffAndStore()
	registerCustomerTables()
}

// Group names used in TableInfo.
const (
	groupReference = "Reference"
	groupAddress   = "Address"
	groupFilm      = "Film"
	groupStore     = "Store"
	groupCustomer  = "Customer"
)
