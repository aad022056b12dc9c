package sql

import (
	"fmt"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
	"golang.org/x/text/language"
)

var postgresOperators = []string{
	"=", "<", ">", "<=", ">=", "<>", "!=",
	"like", "not like", "ilike", "not ilike",
	"~", "&", "|", "#", "<<", ">>", "<<=", ">>=",
	"&&", "@>", "<@", "?", "?|", "?&", "#-",
	"is distinct from", "is not distinct from",
}

// NewPostgresQueryGrammar returns a QueryGrammar compiling for
// PostgreSQL.
func NewPostgresQueryGrammar() *QueryGrammar {
	g := &QueryGrammar{
		Grammar:     newGrammar('"', '"', "2006-01-02 15:04:05-07"),
		dialectName: dialect.Postgres,
		operators:   operatorSet(postgresOperators),
	}
	g.wrapJSONPath = postgresWrapJSONPath
	g.compileJSONContains = postgresJSONContains
	g.compileJSONContainsKey = postgresJSONContainsKey
	g.compileJSONLength = postgresJSONLength
	g.compileFulltext = postgresFulltext
	g.compileLock = postgresLock
	g.compileLimitOffset = standardLimitOffset
	g.insertVerb = func(ignore bool) string { return "insert into" }
	g.insertSuffix = func(ignore bool) string {
		if ignore {
			return "on conflict do nothing"
		}
		return ""
	}
	g.compileUpsert = postgresUpsert
	g.insertGetIDSuffix = "id"
	g.updateRewrite = postgresUpdateRewrite
	return g
}

// postgresWrapJSONPath renders col->'a'->>'b' per spec.md §4.2: every
// intermediate segment uses "->", the final segment uses "->>" to
// unwrap to text.
func postgresWrapJSONPath(column string, path []string) string {
	var b strings.Builder
	b.WriteString(column)
	for i, p := range path {
		if i == len(path)-1 {
			b.WriteString("->>'")
		} else {
			b.WriteString("->'")
		}
		b.WriteString(p)
		b.WriteString("'")
	}
	return b.String()
}

func postgresJSONContains(g *QueryGrammar, column string, path []string, not bool) (string, []any) {
	target := column
	if len(path) > 0 {
		target = postgresJSONPathOperand(column, path)
	}
	clause := fmt.Sprintf("%s::jsonb @> ?", g.Wrap(target, true))
	if not {
		clause = "not " + clause
	}
	return clause, nil
}

func postgresJSONPathOperand(column string, path []string) string {
	var b strings.Builder
	b.WriteString(column)
	for _, p := range path {
		b.WriteString("->'")
		b.WriteString(p)
		b.WriteString("'")
	}
	return b.String()
}

func postgresJSONContainsKey(g *QueryGrammar, column string, path []string, not bool) string {
	operand := postgresJSONPathOperand(column, path)
	clause := fmt.Sprintf("%s is not null", g.Wrap(operand, true))
	if not {
		clause = fmt.Sprintf("%s is null", g.Wrap(operand, true))
	}
	return clause
}

func postgresJSONLength(g *QueryGrammar, column string, path []string, op string, value any) (string, []any) {
	operand := column
	if len(path) > 0 {
		operand = postgresJSONPathOperand(column, path)
	}
	return fmt.Sprintf("jsonb_array_length((%s)::jsonb) %s ?", operand, op), []any{value}
}

// postgresFulltext implements spec.md §4.2's to_tsvector/plainto_tsquery
// family, with mode selecting phraseto_tsquery or websearch_to_tsquery,
// and an unrecognized BCP-47 language tag falling back to "english".
func postgresFulltext(g *QueryGrammar, columns, lang string, mode FulltextMode, value any) (string, []any) {
	cols := splitAny(columns)
	wrapped := make([]string, len(cols))
	for i, c := range cols {
		wrapped[i] = g.Wrap(c, true)
	}
	langConfig := normalizeTSLanguage(lang)
	tsCol := "to_tsvector(" + g.QuoteString(langConfig) + ", " + strings.Join(wrapped, " || ' ' || ") + ")"
	fn := "plainto_tsquery"
	switch mode {
	case FulltextPhrase:
		fn = "phraseto_tsquery"
	case FulltextWebSearch:
		fn = "websearch_to_tsquery"
	}
	return fmt.Sprintf("%s @@ %s(%s, ?)", tsCol, fn, g.QuoteString(langConfig)), []any{value}
}

// normalizeTSLanguage validates lang as a BCP-47 tag and falls back to
// "english" when it cannot be parsed, per spec.md §4.2.
func normalizeTSLanguage(lang string) string {
	if lang == "" {
		return "english"
	}
	if _, err := language.Parse(lang); err != nil {
		return "english"
	}
	return lang
}

func postgresLock(strength LockStrength) string {
	switch strength {
	case LockForUpdate:
		return "for update"
	case LockForShare:
		return "for share"
	default:
		return ""
	}
}

func postgresUpsert(g *QueryGrammar, b *Builder) (string, []any, error) {
	if len(b.upsertUnique) == 0 {
		return "", nil, sqlerr.NewInvalidArgument("upsert", "postgres upsert requires a conflict target")
	}
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
	uniqueCols := make([]any, len(b.upsertUnique))
	for i, c := range b.upsertUnique {
		uniqueCols[i] = c
	}
	sql += fmt.Sprintf(" on conflict (%s) do update set %s", g.Columnize(uniqueCols), strings.Join(sets, ", "))
	return sql, bindings, nil
}

// postgresUpdateRewrite implements spec.md §4.2's ctid-based rewrite
// for UPDATE statements carrying joins or a LIMIT, which Postgres has
// no native syntax for.
func postgresUpdateRewrite(g *QueryGrammar, b *Builder) (string, []any, error) {
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
	selector.columns = []any{Raw(g.Wrap(b.from, true) + ".ctid")}
	selector.joins = b.joins
	selector.wheres = b.wheres
	selector.bindings.Where = b.bindings.Where
	selector.limit = b.limit

	sub, subBindings, err := g.CompileSelect(selector)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("update %s set %s where ctid in (%s)", g.WrapTable(b.from), strings.Join(sets, ", "), sub)
	bindings = append(bindings, subBindings...)
	return sql, bindings, nil
}
