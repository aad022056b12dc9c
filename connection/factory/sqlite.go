package factory

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/aagamezl/lihtne-go/dialect"
	lsql "github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/schema"
)

// sqliteDSN passes cfg.Database straight through as modernc.org/sqlite's
// file path — SQLite has no host/port/credentials.
func sqliteDSN(cfg *Config) string {
	return cfg.Database
}

// sqliteSessionSetup issues PRAGMA foreign_keys per cfg's
// foreign_key_constraints flag (spec.md §4.7 step 5 / §6).
func sqliteSessionSetup(ctx context.Context, db *sql.DB, cfg *Config) error {
	state := "OFF"
	if cfg.ForeignKeyConstraints {
		state = "ON"
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA foreign_keys = %s", state)); err != nil {
		return fmt.Errorf("lihtne: sqlite session setup: %w", err)
	}
	return nil
}

// SQLiteConnector opens a modernc.org/sqlite connection for cfg. There
// is no host list to fail over: SQLite is file- or memory-backed, so
// dialOverHosts is called with a single empty host.
func SQLiteConnector(ctx context.Context, cfg *Config) (dialect.Driver, *lsql.QueryGrammar, *schema.SchemaGrammar, error) {
	return dialOverHosts(ctx, cfg, nil, func(host string) (*sql.DB, error) {
		return sql.Open("sqlite", sqliteDSN(cfg))
	}, dialect.SQLite, sqliteSessionSetup, func() (*lsql.QueryGrammar, *schema.SchemaGrammar) {
		return lsql.NewSQLiteQueryGrammar(), schema.NewSQLiteSchemaGrammar()
	})
}
