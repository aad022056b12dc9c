package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aagamezl/lihtne-go/dialect"
	lsql "github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/schema"
)

func TestRegistryResolveUnknownDriver(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("oracle")
	require.Error(t, err)
}

func TestRegistryRegisterOverridesConnector(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register(dialect.MySQL, func(ctx context.Context, cfg *Config) (dialect.Driver, *lsql.QueryGrammar, *schema.SchemaGrammar, error) {
		calls++
		return nil, lsql.NewMySQLQueryGrammar(), schema.NewMySQLSchemaGrammar(), nil
	})

	_, qg, sg, err := r.Connect(context.Background(), dialect.MySQL, &Config{Database: "app", Username: "scott"})
	require.NoError(t, err)
	require.NotNil(t, qg)
	require.NotNil(t, sg)
	require.Equal(t, 1, calls)
}
