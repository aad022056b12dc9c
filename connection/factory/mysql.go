package factory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/aagamezl/lihtne-go/dialect"
	lsql "github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/schema"
)

// mysqlDSN builds a go-sql-driver/mysql DSN from cfg. Grounded on the
// teacher's go.mod direct dependency on github.com/go-sql-driver/mysql
// (already wired for the query grammar's dialect name, here given an
// actual connector).
func mysqlDSN(cfg *Config, host string) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	var b strings.Builder
	b.WriteString(cfg.Username)
	if cfg.Password != "" {
		b.WriteByte(':')
		b.WriteString(cfg.Password)
	}
	fmt.Fprintf(&b, "@tcp(%s:%d)/%s", host, port, cfg.Database)

	params := map[string]string{"parseTime": "true"}
	if cfg.Charset != "" {
		params["charset"] = cfg.Charset
	}
	if cfg.Collation != "" {
		params["collation"] = cfg.Collation
	}
	for k, v := range cfg.Options {
		params[k] = v
	}
	if len(params) > 0 {
		b.WriteByte('?')
		first := true
		for k, v := range params {
			if !first {
				b.WriteByte('&')
			}
			first = false
			fmt.Fprintf(&b, "%s=%s", k, v)
		}
	}
	return b.String()
}

// MySQLConnector opens a go-sql-driver/mysql connection for cfg. MySQL
// needs no post-connect session SET statements beyond what the DSN's
// charset/collation parameters already cover.
func MySQLConnector(ctx context.Context, cfg *Config) (dialect.Driver, *lsql.QueryGrammar, *schema.SchemaGrammar, error) {
	hosts, err := cfg.Hosts()
	if err != nil {
		return nil, nil, nil, err
	}
	return dialOverHosts(ctx, cfg, hosts, func(host string) (*sql.DB, error) {
		return sql.Open("mysql", mysqlDSN(cfg, host))
	}, dialect.MySQL, nil, func() (*lsql.QueryGrammar, *schema.SchemaGrammar) {
		return lsql.NewMySQLQueryGrammar(), schema.NewMySQLSchemaGrammar()
	})
}
