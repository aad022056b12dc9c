package factory

import (
	"context"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/schema"
	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
	"golang.org/x/sync/singleflight"
)

// Connector opens a dialect.Driver for a resolved Config and returns
// the QueryGrammar/SchemaGrammar pair the dialect requires.
type Connector func(ctx context.Context, cfg *Config) (dialect.Driver, *sql.QueryGrammar, *schema.SchemaGrammar, error)

// DriverRegistry maps a canonical driver name to its Connector. The
// teacher's ent equivalent keeps a process-wide mutable map
// (Connection.resolvers in the source this module is built from);
// spec.md §9 flags that global as something to lift into an explicit
// value so tests can inject their own, so DriverRegistry is always
// constructed and passed explicitly rather than read off a package
// global — DefaultRegistry below exists only for caller convenience.
type DriverRegistry struct {
	connectors map[string]Connector
	group      singleflight.Group
}

// NewRegistry returns a DriverRegistry pre-populated with the four
// built-in connectors (mysql, postgres, sqlite, sqlserver).
func NewRegistry() *DriverRegistry {
	r := &DriverRegistry{connectors: map[string]Connector{}}
	r.Register(dialect.MySQL, MySQLConnector)
	r.Register(dialect.Postgres, PostgresConnector)
	r.Register(dialect.SQLite, SQLiteConnector)
	r.Register(dialect.SQLServer, SQLServerConnector)
	return r
}

// Register adds or replaces the Connector for name (spec.md §4.7's
// resolverFor(name, factory)).
func (r *DriverRegistry) Register(name string, c Connector) {
	r.connectors[name] = c
}

// Resolve looks up the Connector for name, returning
// *sqlerr.InvalidArgumentError if none is registered.
func (r *DriverRegistry) Resolve(name string) (Connector, error) {
	c, ok := r.connectors[name]
	if !ok {
		return nil, sqlerr.NewInvalidArgument("driver", "no connector registered for driver "+name)
	}
	return c, nil
}

// Connect opens a driver for cfg via the registered connector,
// deduplicating concurrent calls that share the same (driver, dsn)
// key through golang.org/x/sync/singleflight — the teacher's dep for
// collapsing duplicate concurrent work, here applied to avoid opening
// redundant *sql.DB pools when multiple goroutines race to build the
// same named connection during startup.
func (r *DriverRegistry) Connect(ctx context.Context, canonicalDriver string, cfg *Config) (dialect.Driver, *sql.QueryGrammar, *schema.SchemaGrammar, error) {
	connector, err := r.Resolve(canonicalDriver)
	if err != nil {
		return nil, nil, nil, err
	}

	type result struct {
		drv dialect.Driver
		qg  *sql.QueryGrammar
		sg  *schema.SchemaGrammar
	}
	key := canonicalDriver + "|" + dsnKey(cfg)
	v, err, _ := r.group.Do(key, func() (any, error) {
		drv, qg, sg, err := connector(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return result{drv, qg, sg}, nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	res := v.(result)
	return res.drv, res.qg, res.sg, nil
}

func dsnKey(cfg *Config) string {
	host, _ := cfg.Hosts()
	h := ""
	if len(host) > 0 {
		h = host[0]
	}
	return h + "/" + cfg.Database + "/" + cfg.Username
}

// DefaultRegistry is a process-wide DriverRegistry offered purely for
// caller convenience, per spec.md §9's note that a process-wide
// instance may exist alongside the explicit one tests construct.
var DefaultRegistry = NewRegistry()
