package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileSelectBasicMySQL(t *testing.T) {
	g := NewMySQLQueryGrammar()
	b := Table("users").Select("id", "name").Where("active", "=", true).OrderBy("id", Asc).Limit(10)

	sql, bindings, err := g.CompileSelect(b)
	require.NoError(t, err)
	require.Equal(t, "select `id`, `name` from `users` where `active` = ? order by `id` asc limit 10", sql)
	require.Equal(t, []any{true}, bindings)
}

func TestCompileSelectDistinctOnPostgres(t *testing.T) {
	g := NewPostgresQueryGrammar()
	b := Table("events").DistinctOn("user_id").Select("user_id", "created_at").OrderBy("user_id", Asc)

	sql, _, err := g.CompileSelect(b)
	require.NoError(t, err)
	require.Equal(t, `select distinct on ("user_id") "user_id", "created_at" from "events" order by "user_id" asc`, sql)
}

func TestCompileSelectDistinctOnRejectedOnMySQL(t *testing.T) {
	g := NewMySQLQueryGrammar()
	b := Table("events").DistinctOn("user_id")

	_, _, err := g.CompileSelect(b)
	require.Error(t, err)
}

func TestCompileSelectUnionKeepsOrderAfterUnion(t *testing.T) {
	g := NewMySQLQueryGrammar()
	first := Table("users").Select("id")
	second := Table("admins").Select("id")
	first.Union(second, false)
	first.OrderBy("id", Asc)
	first.Limit(5)

	sql, _, err := g.CompileSelect(first)
	require.NoError(t, err)
	require.Equal(t,
		"select `id` from `users` union select `id` from `admins` order by `id` asc limit 5",
		sql,
	)
}

func TestCompileInsertMySQL(t *testing.T) {
	g := NewMySQLQueryGrammar()
	b := Table("users").Insert(map[string]any{"email": "a@example.com", "name": "Ann"})

	sql, bindings, err := g.CompileInsert(b)
	require.NoError(t, err)
	require.Equal(t, "insert into `users` (`email`, `name`) values (?, ?)", sql)
	require.Equal(t, []any{"a@example.com", "Ann"}, bindings)
}

func TestCompileUpsertMySQL(t *testing.T) {
	g := NewMySQLQueryGrammar()
	b := Table("users").Upsert(
		[]map[string]any{{"id": 1, "email": "a@example.com"}},
		[]string{"id"},
		[]string{"email"},
	)

	sql, _, err := g.CompileUpsert(b)
	require.NoError(t, err)
	require.Equal(t, "insert into `users` (`email`, `id`) values (?, ?) on duplicate key update `email` = values(`email`)", sql)
}

func TestCompileUpsertPostgresRequiresConflictTarget(t *testing.T) {
	g := NewPostgresQueryGrammar()
	b := Table("users").Upsert([]map[string]any{{"id": 1}}, nil, nil)

	_, _, err := g.CompileUpsert(b)
	require.Error(t, err)
}

func TestCompileWhereJSONContainsMySQL(t *testing.T) {
	g := NewMySQLQueryGrammar()
	b := Table("users").WhereJSONContains("preferences", []string{"locale"}, "en", And, false)

	sql, bindings, err := g.CompileSelect(b)
	require.NoError(t, err)
	require.Equal(t, "select * from `users` where json_contains(`preferences`, ?, '$.\"locale\"')", sql)
	require.Equal(t, []any{"en"}, bindings)
}

func TestCompileDeleteWithWhere(t *testing.T) {
	g := NewSQLiteQueryGrammar()
	b := Table("sessions").Where("expired", "=", true)
	b.Delete()

	sql, bindings, err := g.CompileDelete(b)
	require.NoError(t, err)
	require.Equal(t, `delete from "sessions" where "expired" = ?`, sql)
	require.Equal(t, []any{true}, bindings)
}

func TestCompileUpdateSQLiteRewriteWithLimit(t *testing.T) {
	g := NewSQLiteQueryGrammar()
	b := Table("users").Where("active", "=", false)
	b.Limit(1)
	b.Update(map[string]any{"active": true})

	sql, bindings, err := g.CompileUpdate(b)
	require.NoError(t, err)
	require.Contains(t, sql, "where rowid in (")
	require.Equal(t, []any{true, false}, bindings)
}

func TestCompileExistsMySQL(t *testing.T) {
	g := NewMySQLQueryGrammar()
	b := Table("users").Where("email", "=", "a@example.com")

	sql, bindings, err := g.CompileExists(b)
	require.NoError(t, err)
	require.Equal(t, "select exists(select 1 from `users` where `email` = ?) as `exists`", sql)
	require.Equal(t, []any{"a@example.com"}, bindings)
}

func TestSelectRawAddsBindings(t *testing.T) {
	g := NewMySQLQueryGrammar()
	b := Table("users").SelectRaw("count(*) filter (where active = ?)", true).Where("id", ">", 1)

	sql, bindings, err := g.CompileSelect(b)
	require.NoError(t, err)
	require.Equal(t, "select count(*) filter (where active = ?) from `users` where `id` > ?", sql)
	require.Equal(t, []any{true, 1}, bindings)
}

func TestSQLServerOffsetFetchRequiresOrderBy(t *testing.T) {
	g := NewSQLServerQueryGrammar()
	b := Table("users").OrderBy("id", Asc).Limit(10).Offset(20)

	sql, _, err := g.CompileSelect(b)
	require.NoError(t, err)
	require.Equal(t, "select * from [users] order by [id] asc offset 20 rows fetch next 10 rows only", sql)
}
