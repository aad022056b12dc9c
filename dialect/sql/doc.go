// Package sql provides the fluent query Builder and its per-dialect
// QueryGrammar compilers.
//
// Builder accumulates a query's shape (select columns, from/join
// clauses, where predicates, grouping, ordering, locking, and the
// insert/update/delete/upsert variants) independent of any dialect.
// A QueryGrammar then compiles that shape to a dialect-specific SQL
// string plus its ordered bind values (mysql.go, postgres.go,
// sqlite.go, sqlserver.go).
//
//	b := sql.Table("users").Where("status", "=", "active")
//	query, bindings, err := sql.NewPostgresQueryGrammar().CompileSelect(b)
//
// Row-shaped DDL lives in the schema subpackage; error values raised
// by either package use the sqlerr subpackage's typed kinds.
package sql
