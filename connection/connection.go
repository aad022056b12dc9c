// Package connection orchestrates compiling a query or schema
// blueprint into SQL, executing it through a dialect.Driver, and the
// surrounding bookkeeping — transactions, query logging, lost-
// connection recovery, pretend mode — that the compiler itself never
// needs to know about. It mirrors dialect/sql's Grammar/Builder split
// one layer up: Connection is the orchestrator, the driver is the
// executor.
package connection

import (
	"context"
	"time"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/schema"
	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
)

// Reconnector produces a fresh driver handle for a Connection whose
// driver was lost or never connected (lazy connections).
type Reconnector func(ctx context.Context) (dialect.Driver, error)

// Connection is the central runtime object: one per logical database
// name, long-lived, not safe for concurrent use (per spec.md §5's
// single-threaded-cooperative model).
type Connection struct {
	Name        string
	Database    string
	TablePrefix string

	driver      dialect.Driver
	reconnector Reconnector

	QueryGrammar  *sql.QueryGrammar
	SchemaGrammar *schema.SchemaGrammar
	Processor     *sql.Processor

	transactionDepth int
	recordsModified  bool

	pretending bool
	log        []LogEntry

	loggingQueries     bool
	totalQueryDuration time.Duration

	events  *Dispatcher
	before  []func(sql string, bindings []any)
	durations []*durationHandler

	isLostConnection func(err error) bool

	fetchMode           int
	cachedServerVersion string
}

// Fetch mode constants, mirroring spec.md §3's Connection.fetchMode and
// §6's Stmt.setFetchMode: they select the shape Select/Get return rows
// in. FetchAssoc (the default) is the only shape the driver layer
// actually produces today; the others are accepted and recorded for
// forward compatibility with callers migrating fetch-mode-aware code.
const (
	FetchAssoc int = iota
	FetchNum
	FetchBoth
	FetchObj
)

// FetchMode returns the Connection's current default fetch mode.
func (c *Connection) FetchMode() int { return c.fetchMode }

// SetFetchMode records the Connection's default fetch mode, read back
// by FetchMode. The mode is not passed on to the statements the
// Connection prepares.
func (c *Connection) SetFetchMode(mode int) { c.fetchMode = mode }

// LogEntry is one entry of Connection.QueryLog.
type LogEntry struct {
	SQL      string
	Bindings []any
	Time     time.Duration
}

type durationHandler struct {
	threshold time.Duration
	fn        func(conn *Connection, elapsed time.Duration)
	hasRun    bool
}

// New builds a Connection over an already-open driver.
func New(name string, drv dialect.Driver, qg *sql.QueryGrammar, sg *schema.SchemaGrammar, proc *sql.Processor) *Connection {
	return &Connection{
		Name:             name,
		driver:           drv,
		QueryGrammar:     qg,
		SchemaGrammar:    sg,
		Processor:        proc,
		events:           NewDispatcher(),
		isLostConnection: defaultLostConnectionPredicate,
	}
}

// SetReconnector installs the function Connection calls to obtain a
// fresh driver when the current one is nil or after a lost-connection
// retry.
func (c *Connection) SetReconnector(r Reconnector) { c.reconnector = r }

// SetLostConnectionPredicate overrides the default substring-based
// lost-connection detector. No connector in connection/factory calls
// it, so every Connection uses the default until a caller does.
func (c *Connection) SetLostConnectionPredicate(fn func(error) bool) { c.isLostConnection = fn }

// Driver returns the active driver handle, reconnecting first if nil.
func (c *Connection) Driver(ctx context.Context) (dialect.Driver, error) {
	if c.driver != nil {
		return c.driver, nil
	}
	return c.reconnect(ctx)
}

func (c *Connection) reconnect(ctx context.Context) (dialect.Driver, error) {
	if c.reconnector == nil {
		return nil, sqlerr.NewLogicError("reconnect", "connection has no reconnector configured")
	}
	drv, err := c.reconnector(ctx)
	if err != nil {
		return nil, err
	}
	c.driver = drv
	c.cachedServerVersion = ""
	return drv, nil
}

// ServerVersion returns the backend's version string, caching it for
// the life of the current driver handle so callers checking a dialect
// minor-version feature (e.g. SQLite's pre/post-3.35 DROP COLUMN
// support) don't round-trip on every call. The cache is cleared on
// reconnect.
func (c *Connection) ServerVersion(ctx context.Context) (string, error) {
	if c.cachedServerVersion != "" {
		return c.cachedServerVersion, nil
	}
	drv, err := c.Driver(ctx)
	if err != nil {
		return "", err
	}
	version, err := drv.GetAttribute(ctx, dialect.ServerVersion)
	if err != nil {
		return "", err
	}
	c.cachedServerVersion = version
	return version, nil
}

// BeforeExecuting registers a callback run, in registration order,
// before every statement this Connection executes.
func (c *Connection) BeforeExecuting(fn func(sql string, bindings []any)) {
	c.before = append(c.before, fn)
}

// WhenQueryingForLongerThan registers fn to run at most once, the
// first time the Connection's accumulated query duration exceeds
// threshold. AllowQueryDurationHandlersToRunAgain resets every
// handler's fired flag.
func (c *Connection) WhenQueryingForLongerThan(threshold time.Duration, fn func(conn *Connection, elapsed time.Duration)) {
	c.durations = append(c.durations, &durationHandler{threshold: threshold, fn: fn})
}

// AllowQueryDurationHandlersToRunAgain clears every duration handler's
// fired flag.
func (c *Connection) AllowQueryDurationHandlersToRunAgain() {
	for _, h := range c.durations {
		h.hasRun = false
	}
}

// EnableQueryLog turns on query-log accumulation (off by default, per
// the teacher's pattern of opt-in debug logging).
func (c *Connection) EnableQueryLog()  { c.loggingQueries = true }
func (c *Connection) DisableQueryLog() { c.loggingQueries = false }

// QueryLog returns the accumulated log entries.
func (c *Connection) QueryLog() []LogEntry { return c.log }

// FlushQueryLog clears the accumulated log without disabling logging.
func (c *Connection) FlushQueryLog() { c.log = nil }

// TotalQueryDuration returns the Connection's running sum of query
// execution time, used against WhenQueryingForLongerThan thresholds.
func (c *Connection) TotalQueryDuration() time.Duration { return c.totalQueryDuration }

// Listen registers fn on the "query-executed" event.
func (c *Connection) Listen(fn func(QueryExecuted)) { c.events.Listen(fn) }

// run is the single choke point spec.md §4.5 requires every data
// operation to pass through: before-executing callbacks, lazy
// reconnect, timed execution with at-most-one lost-connection retry,
// and query-executed dispatch/logging. pretendDefault is returned,
// without ever calling body, while the Connection is in pretend mode.
func (c *Connection) run(ctx context.Context, query string, bindings []any, pretendDefault any, body func(ctx context.Context, query string, bindings []any) (any, error)) (any, error) {
	for _, cb := range c.before {
		cb(query, bindings)
	}

	if c.pretending {
		c.recordPretend(query, bindings)
		return pretendDefault, nil
	}

	if _, err := c.Driver(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := c.tryRun(ctx, query, bindings, body)
	elapsed := time.Since(start)

	c.totalQueryDuration += elapsed
	c.events.Dispatch(QueryExecuted{Connection: c.Name, SQL: query, Bindings: bindings, Duration: elapsed})
	if c.loggingQueries {
		c.log = append(c.log, LogEntry{SQL: query, Bindings: bindings, Time: elapsed})
	}
	for _, h := range c.durations {
		if !h.hasRun && c.totalQueryDuration > h.threshold {
			h.hasRun = true
			h.fn(c, c.totalQueryDuration)
		}
	}
	return result, err
}

func (c *Connection) tryRun(ctx context.Context, query string, bindings []any, body func(ctx context.Context, query string, bindings []any) (any, error)) (any, error) {
	result, err := body(ctx, query, bindings)
	if err == nil {
		return result, nil
	}
	if c.transactionDepth == 0 && c.isLostConnection(err) {
		if _, rerr := c.reconnect(ctx); rerr == nil {
			result, err = body(ctx, query, bindings)
			if err == nil {
				return result, nil
			}
		}
		return nil, sqlerr.NewLostConnection(&sqlerr.QueryException{Connection: c.Name, SQL: query, Bindings: bindings, Err: err})
	}
	return nil, sqlerr.NewQueryException(c.Name, query, bindings, err)
}
