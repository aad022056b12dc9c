package factory

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/aagamezl/lihtne-go/dialect"
	lsql "github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/schema"
)

// sqlserverDSN builds a go-mssqldb URL-form DSN from cfg. The driver
// this registers under is "sqlserver" — the pack's sqldef-sqldef repo
// is the grounding source for targeting SQL Server at all, since the
// teacher never does.
func sqlserverDSN(cfg *Config, host string) string {
	port := cfg.Port
	if port == 0 {
		port = 1433
	}
	u := &url.URL{
		Scheme: "sqlserver",
		Host:   fmt.Sprintf("%s:%d", host, port),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	q := url.Values{}
	q.Set("database", cfg.Database)
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// SQLServerConnector opens a denisenkom/go-mssqldb connection for cfg.
func SQLServerConnector(ctx context.Context, cfg *Config) (dialect.Driver, *lsql.QueryGrammar, *schema.SchemaGrammar, error) {
	hosts, err := cfg.Hosts()
	if err != nil {
		return nil, nil, nil, err
	}
	return dialOverHosts(ctx, cfg, hosts, func(host string) (*sql.DB, error) {
		return sql.Open("sqlserver", sqlserverDSN(cfg, host))
	}, dialect.SQLServer, nil, func() (*lsql.QueryGrammar, *schema.SchemaGrammar) {
		return lsql.NewSQLServerQueryGrammar(), schema.NewSQLServerSchemaGrammar()
	})
}
