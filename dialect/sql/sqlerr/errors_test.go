package sqlerr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePQError struct{ code string }

func (e fakePQError) Error() string  { return "pq: duplicate key value violates unique constraint" }
func (e fakePQError) SQLState() string { return e.code }

type fakeMySQLError struct{ number uint16 }

func (e fakeMySQLError) Error() string   { return "Error 1062: Duplicate entry" }
func (e fakeMySQLError) Number() uint16  { return e.number }

func TestIsUniqueConstraintError(t *testing.T) {
	require.True(t, IsUniqueConstraintError(fakePQError{code: pgUniqueViolation}))
	require.True(t, IsUniqueConstraintError(fakeMySQLError{number: mysqlDuplicateEntry}))
	require.True(t, IsUniqueConstraintError(fmt.Errorf("UNIQUE constraint failed: users.email")))
	require.False(t, IsUniqueConstraintError(fakePQError{code: "23503"}))
	require.False(t, IsUniqueConstraintError(nil))
}

func TestQueryExceptionUnwrap(t *testing.T) {
	inner := fmt.Errorf("connection reset by peer")
	err := NewQueryException("default", "select * from `users`", []any{1}, inner)
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "Connection: default")
	require.Contains(t, err.Error(), "select * from `users`")
}

func TestLostConnectionWraps(t *testing.T) {
	qe := NewQueryException("default", "select 1", nil, fmt.Errorf("lost connection")).(*QueryException)
	err := NewLostConnection(qe)
	require.True(t, IsLostConnection(err))
	require.True(t, IsQueryException(err))
	require.ErrorIs(t, err, qe)
}
