package lihtne

import (
	"context"

	"github.com/aagamezl/lihtne-go/connection"
	"github.com/aagamezl/lihtne-go/connection/factory"
)

// Open builds a single named Connection from cfg using the package-
// wide default DriverRegistry, mirroring the teacher's
// sql.Open(dialect.Postgres, source) convenience call but over this
// module's declarative Config instead of a bare dialect+DSN pair.
func Open(ctx context.Context, name string, cfg *factory.Config) (*connection.Connection, error) {
	return factory.NewConnectionFactory(factory.DefaultRegistry).Make(ctx, name, cfg)
}
