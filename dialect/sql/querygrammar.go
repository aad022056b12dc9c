package sql

import (
	"fmt"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
)

// QueryGrammar compiles a Builder into dialect SQL. Rather than one
// type per dialect overriding virtual methods (which Go has no
// mechanism for via embedding), QueryGrammar is a single compiler
// whose dialect-specific behavior is supplied as a small, closed set
// of function fields — a static dispatch table, per spec.md §9's
// redesign note against reflection-based "compile{Name}" lookups. Each
// dialect's constructor (NewMySQLQueryGrammar, etc.) fills in exactly
// these fields; the clause-ordering algorithm itself lives once, here.
type QueryGrammar struct {
	Grammar
	dialectName string
	operators   map[string]struct{}

	compileJSONContains    func(g *QueryGrammar, column string, path []string, not bool) (string, []any)
	compileJSONContainsKey func(g *QueryGrammar, column string, path []string, not bool) string
	compileJSONLength      func(g *QueryGrammar, column string, path []string, op string, value any) (string, []any)
	compileFulltext        func(g *QueryGrammar, columns, language string, mode FulltextMode, value any) (string, []any)
	compileLock            func(strength LockStrength) string
	compileLimitOffset     func(limit, offset *int) string
	insertVerb             func(ignore bool) string
	insertSuffix           func(ignore bool) string
	compileUpsert          func(g *QueryGrammar, b *Builder) (string, []any, error)
	insertGetIDSuffix      string
	updateRewrite          func(g *QueryGrammar, b *Builder) (string, []any, error)
}

// Dialect returns the dialect name this grammar compiles for.
func (g *QueryGrammar) Dialect() string { return g.dialectName }

func (g *QueryGrammar) validateOperator(op string) error {
	if _, ok := g.operators[strings.ToLower(op)]; !ok {
		return sqlerr.NewInvalidArgument("operator", fmt.Sprintf("%q is not supported by %s", op, g.dialectName))
	}
	return nil
}

// CompileSelect compiles b as a SELECT, returning SQL and its
// flattened bindings in spec.md §3's fixed order.
func (g *QueryGrammar) CompileSelect(b *Builder) (string, []any, error) {
	var parts []string

	cols, err := g.compileColumns(b)
	if err != nil {
		return "", nil, err
	}
	parts = append(parts, cols)

	from, err := g.compileFrom(b)
	if err != nil {
		return "", nil, err
	}
	parts = append(parts, from)

	for _, j := range b.joins {
		if j.Lateral && (g.dialectName == dialect.SQLServer || g.dialectName == dialect.SQLite) {
			return "", nil, sqlerr.NewLogicError("join-lateral", g.dialectName+" does not support lateral joins")
		}
	}
	if j := g.compileJoins(b); j != "" {
		parts = append(parts, j)
	}
	if w, err := g.compileWheres(b.wheres); err != nil {
		return "", nil, err
	} else if w != "" {
		parts = append(parts, "where "+w)
	}
	if len(b.groups) > 0 {
		parts = append(parts, "group by "+g.Columnize(b.groups))
	}
	if h, err := g.compileWheres(b.havings); err != nil {
		return "", nil, err
	} else if h != "" {
		parts = append(parts, "having "+h)
	}

	// When a union is present, the trailing order/limit/offset apply
	// to the combined result, not this base select — they are appended
	// after the union clauses below instead. No lock clause is emitted
	// for a select that has unions.
	if len(b.unions) == 0 {
		if o := g.compileOrders(b.orders); o != "" {
			parts = append(parts, "order by "+o)
		}
		if lo := g.compileLimitOffset(b.limit, b.offset); lo != "" {
			parts = append(parts, lo)
		}
		if g.compileLock != nil && b.lock != LockNone {
			if l := g.compileLock(b.lock); l != "" {
				parts = append(parts, l)
			}
		}
	}

	sql := strings.Join(parts, " ")

	if len(b.unions) > 0 {
		sql, err = g.compileUnions(sql, b)
		if err != nil {
			return "", nil, err
		}
		var trailing []string
		if o := g.compileOrders(b.orders); o != "" {
			trailing = append(trailing, "order by "+o)
		}
		if lo := g.compileLimitOffset(b.limit, b.offset); lo != "" {
			trailing = append(trailing, lo)
		}
		if len(trailing) > 0 {
			sql += " " + strings.Join(trailing, " ")
		}
	}

	return sql, b.bindings.Flatten(), nil
}

func (g *QueryGrammar) compileColumns(b *Builder) (string, error) {
	if b.aggregate != nil {
		distinct := ""
		if b.distinct {
			distinct = "distinct "
		}
		return fmt.Sprintf("select %s%s(%s) as aggregate", distinct, b.aggregate.Func, g.aggregateColumn(b)), nil
	}
	cols := b.columns
	if len(cols) == 0 {
		cols = []any{"*"}
	}
	prefix := "select "
	if b.distinctOn != nil {
		if g.dialectName != dialect.Postgres {
			return "", sqlerr.NewLogicError("distinct-on", g.dialectName+" does not support DISTINCT ON")
		}
		if len(b.distinctOn) > 0 {
			prefix += "distinct on (" + g.Columnize(b.distinctOn) + ") "
		} else {
			prefix += "distinct "
		}
	} else if b.distinct {
		prefix += "distinct "
	}
	return prefix + g.Columnize(cols), nil
}

func (g *QueryGrammar) aggregateColumn(b *Builder) string {
	if b.aggregate.Column == "*" {
		return "*"
	}
	return g.Wrap(b.aggregate.Column, true)
}

func (g *QueryGrammar) compileFrom(b *Builder) (string, error) {
	if b.fromSub != nil {
		sub, _, err := g.CompileSelect(b.fromSub)
		if err != nil {
			return "", err
		}
		alias := b.fromAlias
		if alias == "" {
			alias = "t"
		}
		return fmt.Sprintf("from (%s) as %s", sub, g.quoteIdent(alias)), nil
	}
	value := b.from
	if b.fromAlias != "" {
		value = value + " as " + b.fromAlias
	}
	return "from " + g.WrapTable(value), nil
}

func (g *QueryGrammar) compileJoins(b *Builder) string {
	if len(b.joins) == 0 {
		return ""
	}
	var parts []string
	for _, j := range b.joins {
		kw := map[JoinType]string{
			JoinInner: "inner join", JoinLeft: "left join", JoinRight: "right join",
			JoinCross: "cross join", JoinLateral: "left join lateral", JoinNatural: "natural join",
		}[j.Type]
		if j.Lateral && j.Type != JoinCross {
			kw = strings.Replace(kw, "join", "join lateral", 1)
		}
		table := j.Table
		if j.Sub != nil {
			sub, _, _ := g.CompileSelect(j.Sub)
			table = "(" + sub + ") as " + g.quoteIdent(j.Table)
		} else {
			table = g.WrapTable(table)
		}
		stmt := kw + " " + table
		if on, err := g.compileWheres(j.On); err == nil && on != "" {
			stmt += " on " + on
		}
		parts = append(parts, stmt)
	}
	return strings.Join(parts, " ")
}

// compileWheres compiles a tagged where/having list, stripping the
// leading boolean of the first clause per spec.md §4.2.
func (g *QueryGrammar) compileWheres(wheres []Where) (string, error) {
	var parts []string
	for _, w := range wheres {
		clause, err := g.compileWhere(w)
		if err != nil {
			return "", err
		}
		if clause == "" {
			continue
		}
		parts = append(parts, string(w.Boolean)+" "+clause)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return removeLeadingBoolean(strings.Join(parts, " ")), nil
}

func removeLeadingBoolean(s string) string {
	for _, kw := range []string{"and ", "or "} {
		if strings.HasPrefix(s, kw) {
			return s[len(kw):]
		}
	}
	return s
}

func (g *QueryGrammar) compileWhere(w Where) (string, error) {
	switch w.Type {
	case WhereBasic, WhereDate, WhereTime, WhereYear, WhereMonth, WhereDay, WhereBitwise:
		if err := g.validateOperator(w.Operator); err != nil {
			return "", err
		}
		col := g.wrapWhereColumn(w)
		return col + " " + w.Operator + " " + g.Parameter(w.Value), nil
	case WhereIn:
		if len(w.Values) == 0 {
			return "0 = 1", nil
		}
		return g.Wrap(w.Column, true) + " in (" + g.Parameterize(w.Values) + ")", nil
	case WhereNotIn:
		if len(w.Values) == 0 {
			return "1 = 1", nil
		}
		return g.Wrap(w.Column, true) + " not in (" + g.Parameterize(w.Values) + ")", nil
	case WhereNull:
		return g.Wrap(w.Column, true) + " is null", nil
	case WhereNotNull:
		return g.Wrap(w.Column, true) + " is not null", nil
	case WhereBetween:
		kw := "between"
		if w.Not {
			kw = "not between"
		}
		return g.Wrap(w.Column, true) + " " + kw + " " + g.Parameter(w.Values[0]) + " and " + g.Parameter(w.Values[1]), nil
	case WhereColumn:
		if err := g.validateOperator(w.Operator); err != nil {
			return "", err
		}
		return g.Wrap(w.Column, true) + " " + w.Operator + " " + g.Wrap(w.Column2, true), nil
	case WhereNested:
		inner, err := g.compileWheres(w.Builder.wheres)
		if err != nil {
			return "", err
		}
		if inner == "" {
			return "", nil
		}
		return "(" + inner + ")", nil
	case WhereSub:
		if err := g.validateOperator(w.Operator); err != nil {
			return "", err
		}
		sub, _, err := g.CompileSelect(w.Builder)
		if err != nil {
			return "", err
		}
		return "(" + sub + ") " + w.Operator + " " + g.Parameter(w.Value), nil
	case WhereExists:
		sub, _, err := g.CompileSelect(w.Builder)
		if err != nil {
			return "", err
		}
		kw := "exists"
		if w.Not {
			kw = "not exists"
		}
		return kw + " (" + sub + ")", nil
	case WhereJSONContains:
		if g.compileJSONContains == nil {
			return "", sqlerr.NewLogicError("json-contains", g.dialectName+" does not support JSON containment predicates")
		}
		clause, _ := g.compileJSONContains(g, w.Column, w.Path, w.Not)
		return clause, nil
	case WhereJSONContainsKey:
		if g.compileJSONContainsKey == nil {
			return "", sqlerr.NewLogicError("json-contains-key", g.dialectName+" does not support JSON key predicates")
		}
		return g.compileJSONContainsKey(g, w.Column, w.Path, w.Not), nil
	case WhereJSONLength:
		if g.compileJSONLength == nil {
			return "", sqlerr.NewLogicError("json-length", g.dialectName+" does not support JSON length predicates")
		}
		clause, _ := g.compileJSONLength(g, w.Column, w.Path, w.Operator, w.Value)
		return clause, nil
	case WhereFulltext:
		if g.compileFulltext == nil {
			return "", sqlerr.NewLogicError("fulltext", g.dialectName+" does not support fulltext search")
		}
		clause, _ := g.compileFulltext(g, w.Column, w.Language, w.Mode, w.Value)
		return clause, nil
	case WhereRaw:
		return w.Raw, nil
	default:
		return "", sqlerr.NewInvalidArgument("where", "unknown where clause type")
	}
}

// wrapWhereColumn wraps a column reference, dispatching through the
// JSON-path wrapper when the column is itself a JSON selector so
// json_unquote/->> compilation composes with ordinary comparisons.
func (g *QueryGrammar) wrapWhereColumn(w Where) string {
	return g.Wrap(w.Column, true)
}

func (g *QueryGrammar) compileOrders(orders []Order) string {
	if len(orders) == 0 {
		return ""
	}
	parts := make([]string, len(orders))
	for i, o := range orders {
		if o.Raw != "" {
			parts[i] = o.Raw
			continue
		}
		dir := o.Direction
		if dir == "" {
			dir = Asc
		}
		parts[i] = g.Wrap(o.Column, true) + " " + string(dir)
	}
	return strings.Join(parts, ", ")
}

func (g *QueryGrammar) compileUnions(sql string, b *Builder) (string, error) {
	var parts []string
	parts = append(parts, sql)
	for _, u := range b.unions {
		inner, _, err := g.CompileSelect(u.Builder)
		if err != nil {
			return "", err
		}
		kw := "union"
		if u.All {
			kw = "union all"
		}
		parts = append(parts, kw+" "+inner)
	}
	// Order terms attached once a union exists are tracked in the
	// unionOrder binding family by Builder.OrderByRaw; CompileSelect
	// renders them through compileOrders into the trailing "order by"
	// clause after this function returns.
	return strings.Join(parts, " "), nil
}

// CompileExists wraps b in "select exists(select 1 from ...) as
// \"exists\"", backing Builder-level Exists() helpers.
func (g *QueryGrammar) CompileExists(b *Builder) (string, []any, error) {
	inner := *b
	inner.columns = []any{Raw("1")}
	inner.aggregate = nil
	sub, bindings, err := g.CompileSelect(&inner)
	if err != nil {
		return "", nil, err
	}
	return "select exists(" + sub + ") as " + g.quoteIdent("exists"), bindings, nil
}

// CompileInsert compiles a (possibly multi-row) INSERT.
func (g *QueryGrammar) CompileInsert(b *Builder) (string, []any, error) {
	if len(b.insertRows) == 0 {
		return "", nil, sqlerr.NewInvalidArgument("insert", "no rows to insert")
	}
	cols := sortedKeys(b.insertRows[0])
	var bindings []any
	var rowSQL []string
	for _, row := range b.insertRows {
		vals := make([]any, len(cols))
		for i, c := range cols {
			vals[i] = row[c]
		}
		rowSQL = append(rowSQL, "("+g.Parameterize(vals)+")")
		for _, v := range vals {
			if _, ok := isExpression(v); !ok {
				bindings = append(bindings, v)
			}
		}
	}
	verb := "insert into"
	if g.insertVerb != nil {
		verb = g.insertVerb(b.insertIgnore)
	}
	sql := fmt.Sprintf("%s %s (%s) values %s", verb, g.WrapTable(b.from), g.columnizeNames(cols), strings.Join(rowSQL, ", "))
	if g.insertSuffix != nil {
		if suf := g.insertSuffix(b.insertIgnore); suf != "" {
			sql += " " + suf
		}
	}
	return sql, bindings, nil
}

// CompileInsertGetID compiles an insert that also returns the
// generated primary key (dialect-specific: Postgres appends RETURNING,
// others rely on Processor.ProcessInsertGetID after CompileInsert).
func (g *QueryGrammar) CompileInsertGetID(b *Builder, keyName string) (string, []any, error) {
	sql, bindings, err := g.CompileInsert(b)
	if err != nil {
		return "", nil, err
	}
	if g.insertGetIDSuffix != "" {
		col := keyName
		if col == "" {
			col = "id"
		}
		sql += " returning " + g.quoteIdent(col)
	}
	return sql, bindings, nil
}

// CompileUpsert compiles an INSERT ... ON CONFLICT/DUPLICATE KEY style
// upsert using the dialect's configured strategy.
func (g *QueryGrammar) CompileUpsert(b *Builder) (string, []any, error) {
	if g.compileUpsert == nil {
		return "", nil, sqlerr.NewLogicError("upsert", g.dialectName+" does not support upsert")
	}
	return g.compileUpsert(g, b)
}

// CompileUpdate compiles an UPDATE. When the builder carries joins or
// a limit and the dialect needs a rewrite (Postgres ctid/SQLite
// rowid), updateRewrite is consulted first.
func (g *QueryGrammar) CompileUpdate(b *Builder) (string, []any, error) {
	if g.updateRewrite != nil && (len(b.joins) > 0 || b.limit != nil) {
		return g.updateRewrite(g, b)
	}
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
	sql := "update " + g.WrapTable(b.from) + " set " + strings.Join(sets, ", ")
	if j := g.compileJoins(b); j != "" {
		sql += " " + j
	}
	if w, err := g.compileWheres(b.wheres); err != nil {
		return "", nil, err
	} else if w != "" {
		sql += " where " + w
	}
	bindings = append(bindings, b.bindings.Where...)
	return sql, bindings, nil
}

// CompileDelete compiles a DELETE.
func (g *QueryGrammar) CompileDelete(b *Builder) (string, []any, error) {
	sql := "delete from " + g.WrapTable(b.from)
	w, err := g.compileWheres(b.wheres)
	if err != nil {
		return "", nil, err
	}
	if w != "" {
		sql += " where " + w
	}
	return sql, b.bindings.Where, nil
}

func (g *QueryGrammar) columnizeNames(cols []string) string {
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = c
	}
	return g.Columnize(vals)
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

