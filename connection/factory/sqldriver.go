package factory

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/aagamezl/lihtne-go/dialect"
)

// sqlDriver adapts a database/sql.DB into the dialect.Driver contract.
// It is the sole place this module touches database/sql directly,
// grounded on the teacher's dialect/sql/driver.go Driver/Conn wrapper,
// reworked from ent's Exec/Query-with-out-param convention onto the
// PDO-style Prepare/BindValue/Fetch contract dialect.Driver requires.
//
// Unlike the teacher's Driver, which lets database/sql.DB.Exec pick a
// connection from the pool for every call, sqlDriver must pin a single
// *sql.Conn for the lifetime of a "begin"..."commit"/"rollback" pair —
// otherwise a transaction's statements could land on different pooled
// connections and silently run outside it. txConn tracks that pinned
// connection; connFor chooses it over the pool whenever one is open.
type sqlDriver struct {
	db          *sql.DB
	dialectName string

	mu     sync.Mutex
	txConn *sql.Conn
}

func newSQLDriver(dialectName string, db *sql.DB) *sqlDriver {
	return &sqlDriver{db: db, dialectName: dialectName}
}

var _ dialect.Driver = (*sqlDriver)(nil)

// execQuerier is the subset of *sql.DB / *sql.Conn this driver needs.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (d *sqlDriver) connFor(ctx context.Context) (execQuerier, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.txConn != nil {
		return d.txConn, nil
	}
	return d.db, nil
}

// Exec implements dialect.Driver. A bare "begin" pins a dedicated
// connection and a bare "commit" or "rollback" releases it after it
// runs; every other statement, savepoint statements included, runs
// through whichever connection (pinned or pooled) is currently active.
func (d *sqlDriver) Exec(ctx context.Context, query string, args []any) (int64, error) {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	switch {
	case trimmed == "begin":
		if err := d.pinConn(ctx); err != nil {
			return 0, err
		}
	case trimmed == "commit" || trimmed == "rollback":
		defer d.releaseConn()
	}

	ex, err := d.connFor(ctx)
	if err != nil {
		return 0, err
	}
	result, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("lihtne: exec: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("lihtne: exec: rows affected: %w", err)
	}
	return n, nil
}

func (d *sqlDriver) pinConn(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.txConn != nil {
		return nil
	}
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("lihtne: begin: acquire connection: %w", err)
	}
	d.txConn = conn
	return nil
}

func (d *sqlDriver) releaseConn() {
	d.mu.Lock()
	conn := d.txConn
	d.txConn = nil
	d.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// Prepare implements dialect.Driver.
func (d *sqlDriver) Prepare(ctx context.Context, query string) (dialect.Stmt, error) {
	ex, err := d.connFor(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlStmt{ex: ex, query: query, bindings: map[int]any{}}, nil
}

// GetAttribute implements dialect.Driver; only ServerVersion is
// supported, and any other attribute returns an error.
func (d *sqlDriver) GetAttribute(ctx context.Context, attr dialect.Attribute) (string, error) {
	if attr != dialect.ServerVersion {
		return "", fmt.Errorf("lihtne: unsupported driver attribute %v", attr)
	}
	query := serverVersionQuery(d.dialectName)
	row := d.db.QueryRowContext(ctx, query)
	var version string
	if err := row.Scan(&version); err != nil {
		return "", fmt.Errorf("lihtne: server version: %w", err)
	}
	return version, nil
}

func serverVersionQuery(dialectName string) string {
	switch dialectName {
	case dialect.MySQL:
		return "select version()"
	case dialect.Postgres:
		return "show server_version"
	case dialect.SQLite:
		return "select sqlite_version()"
	case dialect.SQLServer:
		return "select cast(serverproperty('productversion') as varchar(128))"
	default:
		return "select 1"
	}
}

// Close implements dialect.Driver.
func (d *sqlDriver) Close() error {
	d.releaseConn()
	return d.db.Close()
}

// sqlStmt adapts a database/sql query to the dialect.Stmt contract.
// Unlike a *sql.Stmt, it holds the raw query text and defers
// preparation to Execute, since bindings arrive one BindValue call at
// a time after Prepare returns (the PDO convention the dialect.Stmt
// contract follows).
type sqlStmt struct {
	ex       execQuerier
	query    string
	bindings map[int]any

	rows    *sql.Rows
	columns []string
}

func (s *sqlStmt) BindValue(key any, value any) error {
	idx, err := bindKeyToIndex(key)
	if err != nil {
		return err
	}
	s.bindings[idx] = value
	return nil
}

// SetFetchMode accepts only the default associative shape (mode 0) and
// returns an error for any other mode: scanRow always builds a
// column-name-keyed map, since database/sql gives no cheaper
// positional-only path.
func (s *sqlStmt) SetFetchMode(mode int) error {
	if mode != 0 {
		return fmt.Errorf("lihtne: fetch mode %d is not supported; rows are always associative", mode)
	}
	return nil
}

func bindKeyToIndex(key any) (int, error) {
	switch k := key.(type) {
	case int:
		return k, nil
	case string:
		n, err := strconv.Atoi(k)
		if err != nil {
			return 0, fmt.Errorf("lihtne: named bind keys are not supported: %q", k)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("lihtne: unsupported bind key type %T", key)
	}
}

func (s *sqlStmt) orderedArgs() []any {
	if len(s.bindings) == 0 {
		return nil
	}
	args := make([]any, len(s.bindings))
	for idx, v := range s.bindings {
		if idx-1 >= 0 && idx-1 < len(args) {
			args[idx-1] = v
		}
	}
	return args
}

// Execute runs the statement as a query, since every caller of
// Driver.Prepare in this module wants rows back (Connection.Insert/
// Update/Delete/Statement call Driver.Exec directly instead).
func (s *sqlStmt) Execute(ctx context.Context) (bool, error) {
	rows, err := s.ex.QueryContext(ctx, s.query, s.orderedArgs()...)
	if err != nil {
		return false, fmt.Errorf("lihtne: execute: %w", err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return false, fmt.Errorf("lihtne: execute: columns: %w", err)
	}
	s.rows = rows
	s.columns = cols
	return true, nil
}

func (s *sqlStmt) Fetch(ctx context.Context) (map[string]any, error) {
	if s.rows == nil {
		return nil, fmt.Errorf("lihtne: fetch: statement has not been executed")
	}
	if !s.rows.Next() {
		return nil, s.rows.Err()
	}
	return s.scanRow()
}

func (s *sqlStmt) FetchAll(ctx context.Context) ([]map[string]any, error) {
	if s.rows == nil {
		return nil, fmt.Errorf("lihtne: fetch all: statement has not been executed")
	}
	var out []map[string]any
	for s.rows.Next() {
		row, err := s.scanRow()
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, s.rows.Err()
}

func (s *sqlStmt) scanRow() (map[string]any, error) {
	vals := make([]any, len(s.columns))
	ptrs := make([]any, len(s.columns))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("lihtne: scan: %w", err)
	}
	row := make(map[string]any, len(s.columns))
	for i, col := range s.columns {
		if b, ok := vals[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = vals[i]
	}
	return row, nil
}

// RowCount always returns an error: database/sql gives no reliable row
// count for a query-style result set ahead of fully draining it.
func (s *sqlStmt) RowCount() (int64, error) {
	return 0, fmt.Errorf("lihtne: row count is not available for query-shaped statements")
}

// NextRowset always reports false: database/sql exposes multiple
// result sets only through driver-specific extensions
// (go-mssqldb's NextResultSet), which this adapter does not target.
func (s *sqlStmt) NextRowset(ctx context.Context) (bool, error) {
	return false, nil
}

func (s *sqlStmt) Close() error {
	if s.rows == nil {
		return nil
	}
	return s.rows.Close()
}
