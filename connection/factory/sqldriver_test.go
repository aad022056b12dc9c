package factory

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/aagamezl/lihtne-go/dialect"
)

func TestSQLDriverExecReturnsRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := newSQLDriver(dialect.MySQL, db)

	mock.ExpectExec("insert into users").WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := drv.Exec(context.Background(), "insert into users (name) values (?)", []any{"ringo"})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDriverPrepareFetchAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := newSQLDriver(dialect.MySQL, db)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "ringo").
		AddRow(int64(2), "george")
	mock.ExpectQuery("select id, name from users").WillReturnRows(rows)

	stmt, err := drv.Prepare(context.Background(), "select id, name from users")
	require.NoError(t, err)
	defer stmt.Close()

	ok, err := stmt.Execute(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	all, err := stmt.FetchAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []map[string]any{
		{"id": int64(1), "name": "ringo"},
		{"id": int64(2), "name": "george"},
	}, all)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestSQLDriverPinsConnectionAcrossTransaction asserts every statement
// between "begin" and "commit" lands on the same physical connection,
// the correctness property sqlDriver's pin/release logic exists for.
func TestSQLDriverPinsConnectionAcrossTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(false))
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	drv := newSQLDriver(dialect.MySQL, db)

	mock.ExpectExec("begin").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("insert into users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("commit").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = drv.Exec(context.Background(), "begin", nil)
	require.NoError(t, err)

	n, err := drv.Exec(context.Background(), "insert into users (name) values (?)", []any{"ringo"})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = drv.Exec(context.Background(), "commit", nil)
	require.NoError(t, err)

	require.Nil(t, drv.txConn, "pinned connection must be released after commit")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDriverGetAttributeServerVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := newSQLDriver(dialect.MySQL, db)

	mock.ExpectQuery("select version\\(\\)").WillReturnRows(
		sqlmock.NewRows([]string{"version"}).AddRow("8.0.35"),
	)

	version, err := drv.GetAttribute(context.Background(), dialect.ServerVersion)
	require.NoError(t, err)
	require.Equal(t, "8.0.35", version)
	require.NoError(t, mock.ExpectationsWereMet())
}
