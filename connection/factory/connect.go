package factory

import (
	"context"
	"database/sql"
	"math/rand/v2"

	"github.com/aagamezl/lihtne-go/dialect"
	lsql "github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/schema"
	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
)

// openFunc opens a *sql.DB against a single host.
type openFunc func(host string) (*sql.DB, error)

// sessionSetupFunc issues the dialect's post-connect session
// statements (spec.md §4.7 step 5) against an already-opened db.
type sessionSetupFunc func(ctx context.Context, db *sql.DB, cfg *Config) error

// dialOverHosts implements spec.md §4.7 step 4: a single host is
// tried directly; a host list is shuffled and tried in order until
// one connects, failing with *sqlerr.DSNExhaustedError if every host
// does. hosts may be empty, in which case open is called once with an
// empty host (local/file-based dialects like SQLite ignore it).
func dialOverHosts(ctx context.Context, cfg *Config, hosts []string, open openFunc, dialectName string, setup sessionSetupFunc, grammars func() (*lsql.QueryGrammar, *schema.SchemaGrammar)) (dialect.Driver, *lsql.QueryGrammar, *schema.SchemaGrammar, error) {
	candidates := hosts
	if len(candidates) == 0 {
		candidates = []string{""}
	}
	if len(candidates) > 1 {
		shuffled := make([]string, len(candidates))
		copy(shuffled, candidates)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		candidates = shuffled
	}

	var errs []error
	for _, host := range candidates {
		db, err := open(host)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			errs = append(errs, err)
			continue
		}
		if setup != nil {
			if err := setup(ctx, db, cfg); err != nil {
				_ = db.Close()
				errs = append(errs, err)
				continue
			}
		}
		qg, sg := grammars()
		return newSQLDriver(dialectName, db), qg, sg, nil
	}
	return nil, nil, nil, sqlerr.NewDSNExhausted(candidates, errs)
}
