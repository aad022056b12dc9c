// Package lihtne is a multi-dialect SQL query builder and schema DDL
// toolkit: a fluent QueryBuilder compiled per dialect by a
// QueryGrammar (dialect/sql), a Blueprint/SchemaGrammar pair for
// declarative schema changes (dialect/sql/schema), and a Connection
// that drives both against a real database/sql-backed driver
// (connection, connection/factory).
//
// Open is the package's single entry point for the common case of
// opening one named connection from a Config. Callers needing
// multiple named connections, a custom DriverRegistry, or read/write
// splitting should use connection/factory directly.
package lihtne
