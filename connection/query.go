package connection

import (
	"context"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/schema"
)

// Get compiles b as a SELECT and returns every row.
func (c *Connection) Get(ctx context.Context, b *sql.Builder) ([]map[string]any, error) {
	query, bindings, err := c.QueryGrammar.CompileSelect(b)
	if err != nil {
		return nil, err
	}
	return c.Select(ctx, query, bindings)
}

// First compiles b (capped to one row) and returns it, or nil.
func (c *Connection) First(ctx context.Context, b *sql.Builder) (map[string]any, error) {
	b.Limit(1)
	rows, err := c.Get(ctx, b)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Exists reports whether b's query matches at least one row, compiled
// through CompileExists's "select exists(select 1 from ...)" form
// rather than fetching and counting a real row.
func (c *Connection) Exists(ctx context.Context, b *sql.Builder) (bool, error) {
	query, bindings, err := c.QueryGrammar.CompileExists(b)
	if err != nil {
		return false, err
	}
	row, err := c.SelectOne(ctx, query, bindings)
	if err != nil || row == nil {
		return false, err
	}
	return truthy(row["exists"]), nil
}

// truthy normalizes a driver-returned "exists" column value: drivers
// vary between returning a bool, an int64 0/1, or (via database/sql's
// []byte text-protocol fallback) the strings "t"/"f"/"1"/"0".
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case string:
		return t == "1" || t == "t" || t == "true"
	default:
		return false
	}
}

// InsertGetID compiles b as an INSERT and returns the new row's
// identity column value, dialect-extracted through Processor.
func (c *Connection) InsertGetID(ctx context.Context, b *sql.Builder, keyName string) (int64, error) {
	query, bindings, err := c.QueryGrammar.CompileInsert(b)
	if err != nil {
		return 0, err
	}
	var returningRow map[string]any
	var lastID int64
	if c.QueryGrammar.Dialect() == dialect.Postgres {
		query += " returning " + keyName
		returningRow, err = c.SelectOne(ctx, query, bindings)
		if err != nil {
			return 0, err
		}
	} else {
		result, err := c.run(ctx, query, bindings, int64(0), func(ctx context.Context, query string, bindings []any) (any, error) {
			drv, err := c.Driver(ctx)
			if err != nil {
				return nil, err
			}
			return drv.Exec(ctx, query, bindings)
		})
		if err != nil {
			return 0, err
		}
		lastID, _ = result.(int64)
	}
	return c.Processor.ProcessInsertGetID(returningRow, keyName, lastID)
}

// UpdateBuilder compiles b as an UPDATE and returns the affected row count.
func (c *Connection) UpdateBuilder(ctx context.Context, b *sql.Builder) (int64, error) {
	query, bindings, err := c.QueryGrammar.CompileUpdate(b)
	if err != nil {
		return 0, err
	}
	return c.Update(ctx, query, bindings)
}

// DeleteBuilder compiles b as a DELETE and returns the affected row count.
func (c *Connection) DeleteBuilder(ctx context.Context, b *sql.Builder) (int64, error) {
	query, bindings, err := c.QueryGrammar.CompileDelete(b)
	if err != nil {
		return 0, err
	}
	return c.Delete(ctx, query, bindings)
}

// Migrate compiles bp against the Connection's SchemaGrammar and runs
// every resulting DDL statement in order, stopping at the first error.
func (c *Connection) Migrate(ctx context.Context, bp *schema.Blueprint) error {
	statements, err := bp.ToSQL(c.SchemaGrammar)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := c.Unprepared(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
