package factory

import (
	"context"
	"strings"
	"sync"

	"github.com/aagamezl/lihtne-go/dialect"
)

// splitDriver implements dialect.Driver by routing prepared SELECT
// statements to a lazily-opened read-side driver, and every mutating
// statement (Exec, or a prepared statement that is not a SELECT, such
// as Postgres's insert ... returning) and attribute call to the write
// driver — spec.md §4.7 step 2's "writes
// go through the write driver, reads through a lazy factory returning
// a read-side driver", applied to the single dialect.Driver contract
// the core consumes rather than two parallel Connection instances.
type splitDriver struct {
	write dialect.Driver

	openRead func(ctx context.Context) (dialect.Driver, error)
	mu       sync.Mutex
	read     dialect.Driver
}

var _ dialect.Driver = (*splitDriver)(nil)

func (d *splitDriver) readDriver(ctx context.Context) (dialect.Driver, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.read != nil {
		return d.read, nil
	}
	drv, err := d.openRead(ctx)
	if err != nil {
		return nil, err
	}
	d.read = drv
	return drv, nil
}

func (d *splitDriver) Prepare(ctx context.Context, query string) (dialect.Stmt, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(query)), "select") {
		return d.write.Prepare(ctx, query)
	}
	drv, err := d.readDriver(ctx)
	if err != nil {
		return nil, err
	}
	return drv.Prepare(ctx, query)
}

func (d *splitDriver) Exec(ctx context.Context, query string, args []any) (int64, error) {
	return d.write.Exec(ctx, query, args)
}

func (d *splitDriver) GetAttribute(ctx context.Context, attr dialect.Attribute) (string, error) {
	return d.write.GetAttribute(ctx, attr)
}

func (d *splitDriver) Close() error {
	d.mu.Lock()
	read := d.read
	d.mu.Unlock()
	if read != nil {
		if err := read.Close(); err != nil {
			return err
		}
	}
	return d.write.Close()
}
