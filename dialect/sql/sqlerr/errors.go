// Package sqlerr is the error taxonomy shared by the query grammar,
// schema grammar, and connection packages. Every caller-observable
// error kind named in the toolkit's design is a concrete type here,
// following the teacher's pattern of one struct per error kind with an
// Error/Unwrap/Is* triad rather than sentinel strings.
package sqlerr

import (
	"errors"
	"fmt"
	"regexp"
)

// sqliteUniqueRe matches the error text returned by modernc.org/sqlite
// and mattn/go-sqlite3 for a UNIQUE or PRIMARY KEY constraint failure;
// SQLite does not expose a structured error code for this.
var sqliteUniqueRe = regexp.MustCompile(`(?i)unique constraint failed`)

// InvalidArgumentError reports a caller-supplied value the compiler or
// builder cannot accept: an unknown driver name, an empty host list, an
// operator outside the dialect's whitelist, a malformed JSON path, or a
// morph key type outside {int, uuid, ulid}.
type InvalidArgumentError struct {
	Arg string
	Msg string
}

func (e *InvalidArgumentError) Error() string {
	if e.Arg == "" {
		return "lihtne: invalid argument: " + e.Msg
	}
	return fmt.Sprintf("lihtne: invalid argument %q: %s", e.Arg, e.Msg)
}

// NewInvalidArgument returns an *InvalidArgumentError for arg.
func NewInvalidArgument(arg, msg string) error {
	return &InvalidArgumentError{Arg: arg, Msg: msg}
}

// IsInvalidArgument reports whether err is an *InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var e *InvalidArgumentError
	return errors.As(err, &e)
}

// LogicError reports a DDL or query operation that is well-formed but
// unsupported by the target dialect: modifying a generated column on
// Postgres, CREATE DATABASE on SQLite, an alias equal to the table's
// own name, and similar dialect-feature mismatches. Per spec.md's
// Non-goals, the toolkit never emulates the missing feature — it fails
// with a message naming exactly what was asked for and why it cannot
// be done.
type LogicError struct {
	Op  string
	Msg string
}

func (e *LogicError) Error() string {
	return fmt.Sprintf("lihtne: %s: %s", e.Op, e.Msg)
}

// NewLogicError returns a *LogicError for the named operation.
func NewLogicError(op, msg string) error {
	return &LogicError{Op: op, Msg: msg}
}

// IsLogicError reports whether err is a *LogicError.
func IsLogicError(err error) bool {
	var e *LogicError
	return errors.As(err, &e)
}

// MultipleColumnsSelectedError is returned by Connection.Scalar when the
// first row of the result set has more than one column.
type MultipleColumnsSelectedError struct {
	Columns int
}

func (e *MultipleColumnsSelectedError) Error() string {
	return fmt.Sprintf("lihtne: scalar query returned %d columns, expected 1", e.Columns)
}

// NewMultipleColumnsSelected returns a *MultipleColumnsSelectedError.
func NewMultipleColumnsSelected(n int) error {
	return &MultipleColumnsSelectedError{Columns: n}
}

// IsMultipleColumnsSelected reports whether err is a
// *MultipleColumnsSelectedError.
func IsMultipleColumnsSelected(err error) bool {
	var e *MultipleColumnsSelectedError
	return errors.As(err, &e)
}

// QueryException wraps a driver-raised error with the SQL and bindings
// that produced it, so logs are self-contained: "(Connection: {name},
// SQL: {sql-with-bindings-substituted})".
type QueryException struct {
	Connection string
	SQL        string
	Bindings   []any
	Err        error
}

func (e *QueryException) Error() string {
	return fmt.Sprintf("lihtne: (Connection: %s, SQL: %s) %v", e.Connection, e.SQL, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *QueryException) Unwrap() error { return e.Err }

// NewQueryException wraps err as a *QueryException.
func NewQueryException(connection, sql string, bindings []any, err error) error {
	return &QueryException{Connection: connection, SQL: sql, Bindings: bindings, Err: err}
}

// IsQueryException reports whether err is a *QueryException.
func IsQueryException(err error) bool {
	var e *QueryException
	return errors.As(err, &e)
}

// LostConnectionError marks a QueryException whose underlying message
// matched a dialect's lost-connection predicate. It is only ever
// surfaced to a caller when the retry (outside a transaction) also
// failed; otherwise it is handled silently by Connection.run.
type LostConnectionError struct {
	*QueryException
}

// Unwrap returns the embedded *QueryException itself rather than letting
// Go's promoted-method rule forward straight to QueryException.Unwrap's
// raw driver error — otherwise errors.As(err, &queryException) would
// skip past the QueryException entirely and IsQueryException would
// report false for a LostConnectionError.
func (e *LostConnectionError) Unwrap() error { return e.QueryException }

// NewLostConnection wraps qe as a *LostConnectionError.
func NewLostConnection(qe *QueryException) error {
	return &LostConnectionError{QueryException: qe}
}

// IsLostConnection reports whether err is a *LostConnectionError.
func IsLostConnection(err error) bool {
	var e *LostConnectionError
	return errors.As(err, &e)
}

// DSNExhaustedError is returned when every host in a multi-host config
// failed to connect during failover.
type DSNExhaustedError struct {
	Hosts  []string
	Errors []error
}

func (e *DSNExhaustedError) Error() string {
	return fmt.Sprintf("lihtne: exhausted %d host(s) attempting to connect: %v", len(e.Hosts), e.Errors)
}

// NewDSNExhausted returns a *DSNExhaustedError.
func NewDSNExhausted(hosts []string, errs []error) error {
	return &DSNExhaustedError{Hosts: hosts, Errors: errs}
}

// IsDSNExhausted reports whether err is a *DSNExhaustedError.
func IsDSNExhausted(err error) bool {
	var e *DSNExhaustedError
	return errors.As(err, &e)
}

// errorCoder is implemented by driver errors exposing a string error
// code: pq.Error, pgx, modernc.org/sqlite.
type errorCoder interface {
	Code() string
}

// errorNumberer is implemented by mysql.MySQLError's Number field via a
// method of the same shape on wrapping types.
type errorNumberer interface {
	Number() uint16
}

// sqlStateError is implemented by errors that expose a SQLSTATE code
// directly (pq.Error, pgx).
type sqlStateError interface {
	SQLState() string
}

// PostgreSQL SQLSTATE codes (class 23 — integrity constraint violation).
const (
	pgUniqueViolation = "23505"
)

// MySQL error numbers.
const mysqlDuplicateEntry = 1062

func asError[T any](err error) (T, bool) {
	var zero T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return zero, false
}

// IsUniqueConstraintError reports whether err resulted from a database
// uniqueness constraint violation, recognizing the dialect-specific
// code: Postgres SQLSTATE 23505, MySQL error number 1062, and SQLite's
// "UNIQUE constraint failed" message.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgUniqueViolation {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == pgUniqueViolation {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok && e.Number() == mysqlDuplicateEntry {
		return true
	}
	return sqliteUniqueRe.MatchString(err.Error())
}
