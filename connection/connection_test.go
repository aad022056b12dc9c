package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql"
)

// fakeDriver is a minimal dialect.Driver test double: Exec/Prepare
// calls are recorded, and ExecFn/PrepareFn (when set) let a test script
// per-call behavior, such as failing once then succeeding.
type fakeDriver struct {
	execCalls    int
	prepareCalls int

	ExecFn    func(call int, query string, args []any) (int64, error)
	PrepareFn func(call int, query string) (dialect.Stmt, error)

	closed bool
}

func (d *fakeDriver) Exec(ctx context.Context, query string, args []any) (int64, error) {
	d.execCalls++
	if d.ExecFn != nil {
		return d.ExecFn(d.execCalls, query, args)
	}
	return 0, nil
}

func (d *fakeDriver) Prepare(ctx context.Context, query string) (dialect.Stmt, error) {
	d.prepareCalls++
	if d.PrepareFn != nil {
		return d.PrepareFn(d.prepareCalls, query)
	}
	return &fakeStmt{}, nil
}

func (d *fakeDriver) GetAttribute(ctx context.Context, attr dialect.Attribute) (string, error) {
	return "", nil
}

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}

// fakeStmt is a no-op dialect.Stmt returning a single fixed row.
type fakeStmt struct {
	fetched bool
}

func (s *fakeStmt) BindValue(key any, value any) error           { return nil }
func (s *fakeStmt) SetFetchMode(mode int) error                  { return nil }
func (s *fakeStmt) Execute(ctx context.Context) (bool, error)     { return true, nil }
func (s *fakeStmt) RowCount() (int64, error)                      { return 1, nil }
func (s *fakeStmt) NextRowset(ctx context.Context) (bool, error)  { return false, nil }
func (s *fakeStmt) Close() error                                  { return nil }
func (s *fakeStmt) Fetch(ctx context.Context) (map[string]any, error) {
	if s.fetched {
		return nil, nil
	}
	s.fetched = true
	return map[string]any{"id": int64(1)}, nil
}
func (s *fakeStmt) FetchAll(ctx context.Context) ([]map[string]any, error) {
	return []map[string]any{{"id": int64(1)}}, nil
}

func TestConnectionLostConnectionRetrySucceedsOnce(t *testing.T) {
	drv := &fakeDriver{}
	drv.ExecFn = func(call int, query string, args []any) (int64, error) {
		if call == 1 {
			return 0, errors.New("server has gone away")
		}
		return 1, nil
	}

	reconnects := 0
	conn := New("default", drv, nil, nil, nil)
	conn.SetReconnector(func(ctx context.Context) (dialect.Driver, error) {
		reconnects++
		return drv, nil
	})
	conn.EnableQueryLog()

	var dispatched int
	conn.Listen(func(ev QueryExecuted) { dispatched++ })

	n, err := conn.AffectingStatement(context.Background(), "update users set active = ?", []any{true})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Equal(t, 2, drv.execCalls)
	require.Equal(t, 1, reconnects)
	require.Len(t, conn.QueryLog(), 1)
	require.Equal(t, 1, dispatched)
}

func TestConnectionLostConnectionInsideTransactionPropagates(t *testing.T) {
	drv := &fakeDriver{}
	drv.ExecFn = func(call int, query string, args []any) (int64, error) {
		if query == "begin" {
			return 0, nil
		}
		return 0, errors.New("server has gone away")
	}
	conn := New("default", drv, nil, nil, nil)
	conn.SetReconnector(func(ctx context.Context) (dialect.Driver, error) { return drv, nil })

	require.NoError(t, conn.BeginTransaction(context.Background()))
	_, err := conn.AffectingStatement(context.Background(), "update users set active = 1", nil)
	require.Error(t, err)
	// No retry was attempted inside the transaction: a single Exec call
	// beyond "begin" means tryRun propagated instead of reconnecting.
	require.Equal(t, 2, drv.execCalls)
}

func TestConnectionPretendNeverTouchesDriver(t *testing.T) {
	drv := &fakeDriver{}
	conn := New("default", drv, nil, nil, nil)

	log, err := conn.Pretend(func(c *Connection) error {
		_, err := c.AffectingStatement(context.Background(), "delete from users where id = ?", []any{5})
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 0, drv.execCalls)
	require.Equal(t, 0, drv.prepareCalls)
	require.Len(t, log, 1)
	require.Equal(t, "delete from users where id = ?", log[0].SQL)

	// Pretend mode must not leak: a real call afterward hits the driver.
	_, err = conn.AffectingStatement(context.Background(), "delete from users where id = ?", []any{5})
	require.NoError(t, err)
	require.Equal(t, 1, drv.execCalls)
}

func TestConnectionDurationHandlerFiresAtMostOnce(t *testing.T) {
	drv := &fakeDriver{}
	conn := New("default", drv, nil, nil, nil)

	var fired int
	conn.WhenQueryingForLongerThan(0, func(c *Connection, elapsed time.Duration) { fired++ })

	_, _ = conn.AffectingStatement(context.Background(), "update users set active = 1", nil)
	_, _ = conn.AffectingStatement(context.Background(), "update users set active = 1", nil)
	require.Equal(t, 1, fired)

	conn.AllowQueryDurationHandlersToRunAgain()
	_, _ = conn.AffectingStatement(context.Background(), "update users set active = 1", nil)
	require.Equal(t, 2, fired)
}

// existsStmt scripts a single row carrying one "exists" column, the
// shape Connection.Exists expects back from CompileExists's SQL.
type existsStmt struct {
	value any
	sent  bool
}

func (s *existsStmt) BindValue(key any, value any) error          { return nil }
func (s *existsStmt) SetFetchMode(mode int) error                 { return nil }
func (s *existsStmt) Execute(ctx context.Context) (bool, error)    { return true, nil }
func (s *existsStmt) RowCount() (int64, error)                     { return 1, nil }
func (s *existsStmt) NextRowset(ctx context.Context) (bool, error) { return false, nil }
func (s *existsStmt) Close() error                                 { return nil }
func (s *existsStmt) Fetch(ctx context.Context) (map[string]any, error) {
	if s.sent {
		return nil, nil
	}
	s.sent = true
	return map[string]any{"exists": s.value}, nil
}
func (s *existsStmt) FetchAll(ctx context.Context) ([]map[string]any, error) {
	return []map[string]any{{"exists": s.value}}, nil
}

func TestConnectionExistsCompilesThroughCompileExists(t *testing.T) {
	drv := &fakeDriver{}
	var prepared string
	drv.PrepareFn = func(call int, query string) (dialect.Stmt, error) {
		prepared = query
		return &existsStmt{value: int64(1)}, nil
	}
	qg := sql.NewMySQLQueryGrammar()
	conn := New("default", drv, qg, nil, nil)

	b := sql.Table("users").Where("email", "=", "a@example.com")
	ok, err := conn.Exists(context.Background(), b)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "select exists(select 1 from `users` where `email` = ?) as `exists`", prepared)
}

func TestConnectionWithinTransactionTracksDepth(t *testing.T) {
	drv := &fakeDriver{}
	conn := New("default", drv, nil, nil, nil)
	require.False(t, conn.WithinTransaction())

	require.NoError(t, conn.BeginTransaction(context.Background()))
	require.True(t, conn.WithinTransaction())
	require.Equal(t, 1, conn.TransactionLevel())

	require.NoError(t, conn.Commit(context.Background()))
	require.False(t, conn.WithinTransaction())
}

func TestConnectionTransactionSavepointDepth(t *testing.T) {
	drv := &fakeDriver{}
	var issued []string
	drv.ExecFn = func(call int, query string, args []any) (int64, error) {
		issued = append(issued, query)
		return 0, nil
	}
	conn := New("default", drv, nil, nil, nil)

	require.NoError(t, conn.BeginTransaction(context.Background()))
	require.NoError(t, conn.BeginTransaction(context.Background()))
	require.NoError(t, conn.Commit(context.Background()))
	require.NoError(t, conn.Commit(context.Background()))

	require.Equal(t, []string{"begin", "savepoint trans2", "release savepoint trans2", "commit"}, issued)
}
