package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect"
)

var mysqlOperators = []string{
	"=", "<", ">", "<=", ">=", "<>", "!=", "<=>",
	"like", "like binary", "not like", "ilike",
	"&", "|", "^", "<<", ">>", "&~",
	"rlike", "not rlike", "regexp", "not regexp",
	"sounds like",
}

// NewMySQLQueryGrammar returns a QueryGrammar compiling for MySQL and
// MariaDB.
func NewMySQLQueryGrammar() *QueryGrammar {
	g := &QueryGrammar{
		Grammar:     newGrammar('`', '`', "2006-01-02 15:04:05"),
		dialectName: dialect.MySQL,
		operators:   operatorSet(mysqlOperators),
	}
	g.wrapJSONPath = mysqlWrapJSONPath
	g.compileJSONContains = mysqlJSONContains
	g.compileJSONContainsKey = mysqlJSONContainsKey
	g.compileJSONLength = mysqlJSONLength
	g.compileFulltext = mysqlFulltext
	g.compileLock = mysqlLock
	g.compileLimitOffset = standardLimitOffset
	g.insertVerb = func(ignore bool) string {
		if ignore {
			return "insert ignore into"
		}
		return "insert into"
	}
	g.compileUpsert = mysqlUpsert
	g.Grammar.boolLiteral = func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}
	return g
}

func operatorSet(ops []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ops))
	for _, o := range ops {
		m[strings.ToLower(o)] = struct{}{}
	}
	return m
}

// mysqlWrapJSONPath renders `col`->>'$."a"."b"' style extraction as
// json_unquote(json_extract(col, '$."a"."b"')), per spec.md §4.2.
func mysqlWrapJSONPath(column string, path []string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, p := range path {
		b.WriteString(`."`)
		b.WriteString(p)
		b.WriteString(`"`)
	}
	return fmt.Sprintf("json_unquote(json_extract(%s, '%s'))", column, b.String())
}

func jsonPathLiteral(path []string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, p := range path {
		b.WriteString(`."`)
		b.WriteString(p)
		b.WriteString(`"`)
	}
	return b.String()
}

func mysqlJSONContains(g *QueryGrammar, column string, path []string, not bool) (string, []any) {
	clause := fmt.Sprintf("json_contains(%s, ?, '%s')", g.Wrap(column, true), jsonPathLiteral(path))
	if not {
		clause = "not " + clause
	}
	return clause, nil
}

func mysqlJSONContainsKey(g *QueryGrammar, column string, path []string, not bool) string {
	clause := fmt.Sprintf("json_contains_path(%s, 'one', '%s')", g.Wrap(column, true), jsonPathLiteral(path))
	if not {
		clause = "not " + clause
	}
	return clause
}

func mysqlJSONLength(g *QueryGrammar, column string, path []string, op string, value any) (string, []any) {
	return fmt.Sprintf("json_length(%s, '%s') %s ?", g.Wrap(column, true), jsonPathLiteral(path), op), []any{value}
}

func mysqlFulltext(g *QueryGrammar, columns, language string, mode FulltextMode, value any) (string, []any) {
	cols := g.Columnize(splitAny(columns))
	modeSQL := "in boolean mode"
	if mode == FulltextNatural {
		modeSQL = "in natural language mode"
	}
	return fmt.Sprintf("match (%s) against (? %s)", cols, modeSQL), []any{value}
}

func mysqlLock(strength LockStrength) string {
	switch strength {
	case LockForUpdate:
		return "for update"
	case LockForShare:
		return "lock in share mode"
	default:
		return ""
	}
}

func mysqlUpsert(g *QueryGrammar, b *Builder) (string, []any, error) {
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
		sets = append(sets, g.Wrap(c, true)+" = values("+g.Wrap(c, true)+")")
	}
	sql += " on duplicate key update " + strings.Join(sets, ", ")
	return sql, bindings, nil
}

func standardLimitOffset(limit, offset *int) string {
	var parts []string
	if limit != nil {
		parts = append(parts, "limit "+strconv.Itoa(*limit))
	}
	if offset != nil {
		parts = append(parts, "offset "+strconv.Itoa(*offset))
	}
	return strings.Join(parts, " ")
}

func splitAny(commaList string) []any {
	fields := strings.Split(commaList, ",")
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = f
	}
	return out
}
