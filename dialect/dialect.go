// Package dialect provides database dialect abstraction for the query
// builder and schema toolkit.
//
// It defines the driver contract the rest of the module consumes
// (Driver, Tx, Stmt, Rows) and the closed set of dialect name constants.
// Concrete driver implementations (connection/factory) are external
// collaborators: the core never imports database/sql/driver directly
// outside of that boundary.
package dialect

import "context"

// Supported dialect names. A Connection, Grammar, or SchemaGrammar is
// always constructed for exactly one of these.
const (
	MySQL     = "mysql"
	Postgres  = "postgres"
	SQLite    = "sqlite"
	SQLServer = "sqlserver"
)

// Attribute identifies a driver-level attribute queryable through
// Driver.GetAttribute. Only ServerVersion exists; it is read by
// connection.Connection.ServerVersion, and query/schema compilation
// does not consult it.
type Attribute int

const (
	// ServerVersion reports the backend's version string.
	ServerVersion Attribute = iota
)

// Driver is the contract the core requires from a driver binding.
// Implementations live in connection/factory; the core never assumes
// anything about the underlying transport.
type Driver interface {
	// Prepare compiles sql into a reusable Stmt.
	Prepare(ctx context.Context, query string) (Stmt, error)
	// Exec runs sql directly (no prepared statement reuse) and reports
	// the number of affected rows.
	Exec(ctx context.Context, query string, args []any) (int64, error)
	// GetAttribute returns a driver-level attribute. Only ServerVersion
	// is guaranteed to be implemented.
	GetAttribute(ctx context.Context, attr Attribute) (string, error)
	// Close releases the underlying connection.
	Close() error
}

// Tx extends Driver with transaction control; a Tx is itself a Driver
// for the statements run inside it. Driver has no method that returns
// a Tx, and connection.Connection runs transactions as raw SQL
// through Driver.Exec instead.
type Tx interface {
	Driver
	Commit() error
	Rollback() error
}

// Stmt is a prepared statement. Binding keys are 1-based positional
// indexes unless the driver supports named parameters.
type Stmt interface {
	BindValue(key any, value any) error
	// SetFetchMode overrides, for this statement only, the fetch shape
	// Fetch/FetchAll return rows in (see the Fetch* constants in the
	// connection package). A driver that only ever produces one shape
	// may accept any mode without error.
	SetFetchMode(mode int) error
	Execute(ctx context.Context) (bool, error)
	Fetch(ctx context.Context) (map[string]any, error)
	FetchAll(ctx context.Context) ([]map[string]any, error)
	RowCount() (int64, error)
	NextRowset(ctx context.Context) (bool, error)
	Close() error
}

// Rows is a lazily-fetched cursor, returned by Connection.Cursor.
type Rows interface {
	Next(ctx context.Context) (map[string]any, error)
	Close() error
}
