package factory

import (
	"context"

	"github.com/aagamezl/lihtne-go/connection"
	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/schema"
)

// ConnectionFactory turns a Config into a ready-to-use
// connection.Connection, per spec.md §4.7. It is the module's
// top-level entry point for opening a real, driver-backed connection;
// everything else in this package (Config, DriverRegistry, the
// per-dialect connectors) exists to serve this one operation.
type ConnectionFactory struct {
	registry *DriverRegistry
}

// NewConnectionFactory returns a ConnectionFactory backed by registry.
// Pass factory.NewRegistry() for production use, or a test-local
// DriverRegistry with a fake Connector registered under a dialect name
// — spec.md §9 flags the teacher's process-wide resolver map as
// something callers must be able to override per test.
func NewConnectionFactory(registry *DriverRegistry) *ConnectionFactory {
	return &ConnectionFactory{registry: registry}
}

// Make builds a Connection named name from cfg. It resolves cfg.URL
// (if present) into the top-level fields, then either opens a single
// driver or, when cfg.Read/Write are both present, a write driver plus
// a lazily-opened read driver shared by one Connection.
func (f *ConnectionFactory) Make(ctx context.Context, name string, cfg *Config) (*connection.Connection, error) {
	if err := cfg.ApplyURL(); err != nil {
		return nil, err
	}
	canon, err := CanonicalDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	cfg.Driver = canon

	if cfg.Read != nil && cfg.Write != nil {
		return f.makeSplit(ctx, name, cfg)
	}
	return f.makeSingle(ctx, name, cfg)
}

func (f *ConnectionFactory) makeSingle(ctx context.Context, name string, cfg *Config) (*connection.Connection, error) {
	drv, qg, sg, err := f.registry.Connect(ctx, cfg.Driver, cfg)
	if err != nil {
		return nil, err
	}
	return f.wire(name, cfg, drv, qg, sg), nil
}

func (f *ConnectionFactory) makeSplit(ctx context.Context, name string, cfg *Config) (*connection.Connection, error) {
	writeCfg := mergeSubConfig(cfg, cfg.Write)
	if err := writeCfg.ApplyURL(); err != nil {
		return nil, err
	}
	writeCanon, err := CanonicalDriver(writeCfg.Driver)
	if err != nil {
		return nil, err
	}
	writeCfg.Driver = writeCanon

	readCfg := mergeSubConfig(cfg, cfg.Read)
	if err := readCfg.ApplyURL(); err != nil {
		return nil, err
	}
	readCanon, err := CanonicalDriver(readCfg.Driver)
	if err != nil {
		return nil, err
	}
	readCfg.Driver = readCanon

	writeDrv, qg, sg, err := f.registry.Connect(ctx, writeCanon, writeCfg)
	if err != nil {
		return nil, err
	}

	split := &splitDriver{
		write: writeDrv,
		openRead: func(ctx context.Context) (dialect.Driver, error) {
			drv, _, _, err := f.registry.Connect(ctx, readCanon, readCfg)
			return drv, err
		},
	}
	return f.wire(name, cfg, split, qg, sg), nil
}

// mergeSubConfig layers sub (cfg.Read or cfg.Write) over a copy of
// base's shared fields (driver, database, credentials, prefix), the
// way spec.md §4.7 describes read/write sub-configs as inheriting the
// parent's connection details unless they override them.
func mergeSubConfig(base, sub *Config) *Config {
	merged := *base
	merged.Read, merged.Write = nil, nil
	if sub.Driver != "" {
		merged.Driver = sub.Driver
	}
	if sub.URL != "" {
		merged.URL = sub.URL
	}
	if sub.Host != nil {
		merged.Host = sub.Host
	}
	if sub.Port != 0 {
		merged.Port = sub.Port
	}
	if sub.Database != "" {
		merged.Database = sub.Database
	}
	if sub.Username != "" {
		merged.Username = sub.Username
	}
	if sub.Password != "" {
		merged.Password = sub.Password
	}
	return &merged
}

func (f *ConnectionFactory) wire(name string, cfg *Config, drv dialect.Driver, qg *sql.QueryGrammar, sg *schema.SchemaGrammar) *connection.Connection {
	proc := sql.NewProcessor(cfg.Driver)
	conn := connection.New(name, drv, qg, sg, proc)
	conn.Database = cfg.Database
	conn.TablePrefix = cfg.Prefix
	return conn
}
