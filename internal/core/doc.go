// Package core loads a table-shaped Sakila JSON snapshot into a linked,
// typed entity graph and hands it to a Store for one atomic commit.
//
// This package holds the import logic independent of the output engine and
// the command line. It can be driven by the CLI, by tests with the memory
// store, or embedded in another program.
//
// # Architecture
//
//   - Scalar coercion: typed accessors on [Record] ([Record.Text],
//     [Record.Decimal], [Record.Timestamp], ...) each with its own policy for
//     absent and malformed values. [FieldReader] keeps the first error.
//   - Table loading: [Load] creates one entity per record, registers it with
//     the [Store], fills it, and publishes a primary key map for later tables.
//   - Reference resolution: [Resolve] turns a foreign key field into the
//     entity from an upstream [EntityMap], failing on a missing key.
//   - Cycle breaking: [Deferred] parks members of a table whose reference
//     target loads later and hands them out when the target is created.
//   - Orchestration: [Importer] runs the [Plan], verifies every deferred
//     side table is drained, and commits once.
//
// # Table Registry
//
// Tables are registered at init time using [Register]. Each [TableDefinition]
// names its dependencies and a load function:
//
//	core.Register(core.TableDefinition{
//	    Info: core.TableInfo{Key: "city", Group: "Address", Label: "Cities", DependsOn: []string{"country"}},
//	    Load: loadCities,
//	})
//
// [Plan] orders the registered tables so every table follows its
// dependencies, keeping registration order among independent tables.
// References listed in TableInfo.Defers are left out of the ordering; the
// loaders patch them through a [Deferred] side table.
//
// # Error Handling
//
// Every failure is fatal to the run and is returned, never printed:
//
//   - [FormatError]: the document is not an object of arrays of records
//   - [IntegrityError]: duplicate keys and unresolved or dangling references
//   - [CoercionError]: a field cannot be converted to its destination type
//   - [CommitError]: the store failed to commit
//
// [MapError] maps any of these to an operator-facing message with a code.
package core
