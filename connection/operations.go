package connection

import (
	"context"

	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
)

// Select runs a SELECT and returns every row.
func (c *Connection) Select(ctx context.Context, query string, bindings []any) ([]map[string]any, error) {
	result, err := c.run(ctx, query, bindings, []map[string]any{}, func(ctx context.Context, query string, bindings []any) (any, error) {
		drv, err := c.Driver(ctx)
		if err != nil {
			return nil, err
		}
		stmt, err := drv.Prepare(ctx, query)
		if err != nil {
			return nil, err
		}
		defer stmt.Close()
		if err := bindAll(stmt, bindings); err != nil {
			return nil, err
		}
		if _, err := stmt.Execute(ctx); err != nil {
			return nil, err
		}
		return stmt.FetchAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	rows, _ := result.([]map[string]any)
	return rows, nil
}

// SelectOne runs a SELECT and returns its first row, or nil if the
// result set is empty.
func (c *Connection) SelectOne(ctx context.Context, query string, bindings []any) (map[string]any, error) {
	rows, err := c.Select(ctx, query, bindings)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Scalar runs a SELECT and returns the single column of its first
// row. It fails with *sqlerr.MultipleColumnsSelectedError if the row
// carries more than one column.
func (c *Connection) Scalar(ctx context.Context, query string, bindings []any) (any, error) {
	row, err := c.SelectOne(ctx, query, bindings)
	if err != nil || row == nil {
		return nil, err
	}
	if len(row) > 1 {
		return nil, sqlerr.NewMultipleColumnsSelected(len(row))
	}
	for _, v := range row {
		return v, nil
	}
	return nil, nil
}

// SelectResultSets runs query and collects every rowset a multi-
// statement/multi-result-set query may produce (driver.Stmt.NextRowset).
func (c *Connection) SelectResultSets(ctx context.Context, query string, bindings []any) ([][]map[string]any, error) {
	result, err := c.run(ctx, query, bindings, [][]map[string]any{}, func(ctx context.Context, query string, bindings []any) (any, error) {
		drv, err := c.Driver(ctx)
		if err != nil {
			return nil, err
		}
		stmt, err := drv.Prepare(ctx, query)
		if err != nil {
			return nil, err
		}
		defer stmt.Close()
		if err := bindAll(stmt, bindings); err != nil {
			return nil, err
		}
		if _, err := stmt.Execute(ctx); err != nil {
			return nil, err
		}
		var sets [][]map[string]any
		for {
			rows, err := stmt.FetchAll(ctx)
			if err != nil {
				return nil, err
			}
			sets = append(sets, rows)
			more, err := stmt.NextRowset(ctx)
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
		}
		return sets, nil
	})
	if err != nil {
		return nil, err
	}
	sets, _ := result.([][]map[string]any)
	return sets, nil
}

// Cursor runs query and returns a lazily-fetched Rows iterator
// instead of materializing every row up front.
func (c *Connection) Cursor(ctx context.Context, query string, bindings []any) (*Cursor, error) {
	result, err := c.run(ctx, query, bindings, (*Cursor)(nil), func(ctx context.Context, query string, bindings []any) (any, error) {
		drv, err := c.Driver(ctx)
		if err != nil {
			return nil, err
		}
		stmt, err := drv.Prepare(ctx, query)
		if err != nil {
			return nil, err
		}
		if err := bindAll(stmt, bindings); err != nil {
			stmt.Close()
			return nil, err
		}
		if _, err := stmt.Execute(ctx); err != nil {
			stmt.Close()
			return nil, err
		}
		return &Cursor{stmt: stmt}, nil
	})
	if err != nil {
		return nil, err
	}
	cur, _ := result.(*Cursor)
	return cur, nil
}

// Insert runs an INSERT, reporting whether the driver accepted it.
func (c *Connection) Insert(ctx context.Context, query string, bindings []any) (bool, error) {
	_, err := c.affecting(ctx, query, bindings, true)
	return err == nil, err
}

// Update runs an UPDATE, returning the number of affected rows.
func (c *Connection) Update(ctx context.Context, query string, bindings []any) (int64, error) {
	return c.affecting(ctx, query, bindings, false)
}

// Delete runs a DELETE, returning the number of affected rows.
func (c *Connection) Delete(ctx context.Context, query string, bindings []any) (int64, error) {
	return c.affecting(ctx, query, bindings, false)
}

// AffectingStatement runs any mutating statement and returns the
// affected row count.
func (c *Connection) AffectingStatement(ctx context.Context, query string, bindings []any) (int64, error) {
	return c.affecting(ctx, query, bindings, false)
}

func (c *Connection) affecting(ctx context.Context, query string, bindings []any, insert bool) (int64, error) {
	result, err := c.run(ctx, query, bindings, int64(0), func(ctx context.Context, query string, bindings []any) (any, error) {
		drv, err := c.Driver(ctx)
		if err != nil {
			return nil, err
		}
		n, err := drv.Exec(ctx, query, bindings)
		if err != nil {
			return nil, err
		}
		if n > 0 || insert {
			c.recordsModified = true
		}
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	n, _ := result.(int64)
	return n, nil
}

// Statement runs a DDL or otherwise non-row-returning statement,
// reporting whether the driver accepted it.
func (c *Connection) Statement(ctx context.Context, query string, bindings []any) (bool, error) {
	result, err := c.run(ctx, query, bindings, true, func(ctx context.Context, query string, bindings []any) (any, error) {
		drv, err := c.Driver(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := drv.Exec(ctx, query, bindings); err != nil {
			return nil, err
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}
	ok, _ := result.(bool)
	return ok, nil
}

// Unprepared runs query directly, with no bindings and no prepared
// statement, for DDL or session statements a driver can't parameterize.
func (c *Connection) Unprepared(ctx context.Context, query string) (bool, error) {
	return c.Statement(ctx, query, nil)
}

func bindAll(stmt interface {
	BindValue(key any, value any) error
}, bindings []any) error {
	for i, v := range bindings {
		if err := stmt.BindValue(i+1, v); err != nil {
			return err
		}
	}
	return nil
}

// Cursor lazily fetches rows one at a time from an already-executed
// Stmt. The caller must Close it; abandoning it without closing leaves
// the underlying statement open, per spec.md §5.
type Cursor struct {
	stmt interface {
		Fetch(ctx context.Context) (map[string]any, error)
		Close() error
	}
}

// Next fetches the next row, or (nil, nil) when the result set is
// exhausted.
func (cur *Cursor) Next(ctx context.Context) (map[string]any, error) {
	if cur == nil {
		return nil, nil
	}
	return cur.stmt.Fetch(ctx)
}

// Close releases the underlying statement.
func (cur *Cursor) Close() error {
	if cur == nil {
		return nil
	}
	return cur.stmt.Close()
}
