package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrammarWrapIdentifier(t *testing.T) {
	g := newGrammar('"', '"', "2006-01-02 15:04:05")

	require.Equal(t, `"users"`, g.Wrap("users", true))
	require.Equal(t, `"users"."name"`, g.Wrap("users.name", true))
	require.Equal(t, "*", g.Wrap("*", true))
}

func TestGrammarWrapAlias(t *testing.T) {
	g := newGrammar('"', '"', "2006-01-02 15:04:05")

	require.Equal(t, `"users"."name" as "n"`, g.Wrap("users.name as n", true))
	require.Equal(t, `"users"."name" as "n"`, g.Wrap("users.name AS n", true))
}

func TestGrammarWrapTablePrefix(t *testing.T) {
	g := newGrammar('"', '"', "2006-01-02 15:04:05")
	g.SetTablePrefix("wp_")

	require.Equal(t, `"wp_users"`, g.WrapTable("users"))
	require.Equal(t, `"public"."wp_users"`, g.WrapTable("public.users"))
}

func TestGrammarMySQLQuoting(t *testing.T) {
	g := newGrammar('`', '`', "2006-01-02 15:04:05")
	require.Equal(t, "`users`", g.Wrap("users", true))
}

func TestGrammarParameterInlinesExpression(t *testing.T) {
	g := newGrammar('"', '"', "2006-01-02 15:04:05")
	require.Equal(t, "?", g.Parameter(42))
	require.Equal(t, "now()", g.Parameter(Raw("now()")))
}

func TestGrammarQuoteString(t *testing.T) {
	g := newGrammar('"', '"', "2006-01-02 15:04:05")
	require.Equal(t, `'it''s'`, g.QuoteString("it's"))
}

func TestSubstituteBindingsIntoRawSql(t *testing.T) {
	g := newGrammar('"', '"', "2006-01-02 15:04:05")

	got := g.SubstituteBindingsIntoRawSql("select * from users where id = ? and name = ?", []any{1, "bob"})
	require.Equal(t, `select * from users where id = 1 and name = 'bob'`, got)
}

func TestSubstituteBindingsIntoRawSqlSkipsQuotedPlaceholders(t *testing.T) {
	g := newGrammar('"', '"', "2006-01-02 15:04:05")

	got := g.SubstituteBindingsIntoRawSql("select '?' as literal, name from users where id = ?", []any{7})
	require.Equal(t, `select '?' as literal, name from users where id = 7`, got)
}

func TestSubstituteBindingsIntoRawSqlUnescapesDoubleQuestionMark(t *testing.T) {
	g := newGrammar('"', '"', "2006-01-02 15:04:05")

	got := g.SubstituteBindingsIntoRawSql("data ??| ? and col = ??", []any{"x"})
	require.Equal(t, "data ?| 'x' and col = ?", got)
}

func TestSubstituteBindingsIntoRawSqlNullAndBool(t *testing.T) {
	g := newGrammar('"', '"', "2006-01-02 15:04:05")

	got := g.SubstituteBindingsIntoRawSql("a = ? and b = ?", []any{nil, true})
	require.Equal(t, "a = null and b = true", got)
}
