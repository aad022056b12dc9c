package sql

import (
	"fmt"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect"
)

var sqliteOperators = []string{
	"=", "<", ">", "<=", ">=", "<>", "!=",
	"like", "not like", "ilike",
	"&", "|", "<<", ">>",
}

// NewSQLiteQueryGrammar returns a QueryGrammar compiling for SQLite.
func NewSQLiteQueryGrammar() *QueryGrammar {
	g := &QueryGrammar{
		Grammar:     newGrammar('"', '"', "2006-01-02 15:04:05"),
		dialectName: dialect.SQLite,
		operators:   operatorSet(sqliteOperators),
	}
	g.wrapJSONPath = sqliteWrapJSONPath
	g.compileJSONContains = sqliteJSONContains
	g.compileJSONContainsKey = sqliteJSONContainsKey
	g.compileJSONLength = sqliteJSONLength
	g.compileLimitOffset = sqliteLimitOffset
	g.insertVerb = func(ignore bool) string {
		if ignore {
			return "insert or ignore into"
		}
		return "insert into"
	}
	g.compileUpsert = sqliteUpsert
	g.updateRewrite = sqliteUpdateRewrite
	g.Grammar.boolLiteral = func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}
	return g
}

func sqliteWrapJSONPath(column string, path []string) string {
	return fmt.Sprintf("json_extract(%s, '%s')", column, jsonPathLiteral(path))
}

func sqliteJSONContains(g *QueryGrammar, column string, path []string, not bool) (string, []any) {
	clause := fmt.Sprintf("exists (select 1 from json_each(%s, '%s') where json_each.value = ?)",
		g.Wrap(column, true), jsonPathLiteral(path))
	if not {
		clause = "not " + clause
	}
	return clause, nil
}

func sqliteJSONContainsKey(g *QueryGrammar, column string, path []string, not bool) string {
	clause := fmt.Sprintf("json_extract(%s, '%s') is not null", g.Wrap(column, true), jsonPathLiteral(path))
	if not {
		clause = fmt.Sprintf("json_extract(%s, '%s') is null", g.Wrap(column, true), jsonPathLiteral(path))
	}
	return clause
}

func sqliteJSONLength(g *QueryGrammar, column string, path []string, op string, value any) (string, []any) {
	return fmt.Sprintf("json_array_length(%s, '%s') %s ?", g.Wrap(column, true), jsonPathLiteral(path), op), []any{value}
}

// sqliteLimitOffset requires an explicit LIMIT whenever an OFFSET is
// present; SQLite has no OFFSET-without-LIMIT syntax, so an
// unconstrained limit is emitted as -1.
func sqliteLimitOffset(limit, offset *int) string {
	if limit == nil && offset == nil {
		return ""
	}
	if limit == nil {
		return fmt.Sprintf("limit -1 offset %d", *offset)
	}
	if offset == nil {
		return fmt.Sprintf("limit %d", *limit)
	}
	return fmt.Sprintf("limit %d offset %d", *limit, *offset)
}

func sqliteUpsert(g *QueryGrammar, b *Builder) (string, []any, error) {
	sql, bindings, err := g.CompileInsert(b)
	if err != nil {
		return "", nil, err
	}
	update := b.upsertUpdate
	if len(update) == 0 && len(b.insertRows) > 0 {
		update = sortedKeys(b.insertRows[0])
	}
	var sets []string
	for _, c := range update {
		sets = append(sets, g.Wrap(c, true)+" = excluded."+g.Wrap(c, true))
	}
	conflict := "on conflict"
	if len(b.upsertUnique) > 0 {
		uniqueCols := make([]any, len(b.upsertUnique))
		for i, c := range b.upsertUnique {
			uniqueCols[i] = c
		}
		conflict = fmt.Sprintf("on conflict (%s)", g.Columnize(uniqueCols))
	}
	sql += fmt.Sprintf(" %s do update set %s", conflict, strings.Join(sets, ", "))
	return sql, bindings, nil
}

// sqliteUpdateRewrite implements the rowid-based rewrite for UPDATE
// statements carrying joins or a LIMIT, spec.md §4.2.
func sqliteUpdateRewrite(g *QueryGrammar, b *Builder) (string, []any, error) {
	cols := sortedKeys(b.updateValues)
	var sets []string
	var bindings []any
	for _, c := range cols {
		v := b.updateValues[c]
		sets = append(sets, g.Wrap(c, true)+" = "+g.Parameter(v))
		if _, ok := isExpression(v); !ok {
			bindings = append(bindings, v)
		}
	}

	selector := NewBuilder().From(b.from, "")
	selector.columns = []any{Raw(g.Wrap(b.from, true) + ".rowid")}
	selector.joins = b.joins
	selector.wheres = b.wheres
	selector.bindings.Where = b.bindings.Where
	selector.limit = b.limit

	sub, subBindings, err := g.CompileSelect(selector)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("update %s set %s where rowid in (%s)", g.WrapTable(b.from), strings.Join(sets, ", "), sub)
	bindings = append(bindings, subBindings...)
	return sql, bindings, nil
}
