package factory

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/aagamezl/lihtne-go/dialect"
	lsql "github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/schema"
)

// postgresDSN builds a lib/pq keyword/value DSN from cfg. Per
// spec.md §9's flagged REDESIGN note, the port is always written
// explicitly (defaulting to 5432) instead of reproducing the
// original's `;port={port}` template bug that silently dropped it.
func postgresDSN(cfg *Config, host string) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s sslmode=disable", host, port, cfg.Database, cfg.Username)
	if cfg.Password != "" {
		dsn += " password=" + cfg.Password
	}
	for k, v := range cfg.Options {
		dsn += fmt.Sprintf(" %s=%s", k, v)
	}
	return dsn
}

// postgresSessionSetup issues the session SET statements spec.md
// §4.7 step 5 lists for Postgres: charset, timezone, search_path,
// application_name, synchronous_commit — each only when cfg supplies
// the corresponding value.
func postgresSessionSetup(ctx context.Context, db *sql.DB, cfg *Config) error {
	var stmts []string
	if cfg.Charset != "" {
		stmts = append(stmts, fmt.Sprintf("set names '%s'", cfg.Charset))
	}
	if cfg.Timezone != "" {
		stmts = append(stmts, fmt.Sprintf("set time zone '%s'", cfg.Timezone))
	}
	if cfg.Schema != "" {
		stmts = append(stmts, fmt.Sprintf("set search_path to %s", cfg.Schema))
	}
	if cfg.ApplicationName != "" {
		stmts = append(stmts, fmt.Sprintf("set application_name to '%s'", cfg.ApplicationName))
	}
	if cfg.SynchronousCommit != "" {
		stmts = append(stmts, fmt.Sprintf("set synchronous_commit to %s", cfg.SynchronousCommit))
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("lihtne: postgres session setup: %w", err)
		}
	}
	return nil
}

// PostgresConnector opens a lib/pq connection for cfg, running the
// dialect's post-connect session setup before returning.
func PostgresConnector(ctx context.Context, cfg *Config) (dialect.Driver, *lsql.QueryGrammar, *schema.SchemaGrammar, error) {
	hosts, err := cfg.Hosts()
	if err != nil {
		return nil, nil, nil, err
	}
	return dialOverHosts(ctx, cfg, hosts, func(host string) (*sql.DB, error) {
		return sql.Open("postgres", postgresDSN(cfg, host))
	}, dialect.Postgres, postgresSessionSetup, func() (*lsql.QueryGrammar, *schema.SchemaGrammar) {
		return lsql.NewPostgresQueryGrammar(), schema.NewPostgresSchemaGrammar()
	})
}
