package sql

// OrderDirection is either ascending or descending.
type OrderDirection string

const (
	Asc  OrderDirection = "asc"
	Desc OrderDirection = "desc"
)

// Order is a single ORDER BY term.
type Order struct {
	Column    string
	Direction OrderDirection
	Raw       string
	RawArgs   []any
}

// UnionClause pairs a unioned query with whether it is a UNION ALL.
type UnionClause struct {
	Builder *Builder
	All     bool
}

// Aggregate captures a pending aggregate projection (count/min/max/…).
type Aggregate struct {
	Func   string
	Column string
}

// LockStrength selects row-locking behavior for SELECT ... FOR UPDATE
// style clauses.
type LockStrength int

const (
	LockNone LockStrength = iota
	LockForUpdate
	LockForShare
)

// Op identifies which statement family a Builder currently represents.
// A single Builder value is reused across Select/Insert/Update/Delete
// because they share the same from/joins/wheres machinery.
type Op int

const (
	OpSelect Op = iota
	OpInsert
	OpUpdate
	OpDelete
)

// Builder is the fluent AST capturing a SELECT, INSERT, UPDATE, or
// DELETE intention and its bindings. It is constructed fresh per
// operation and is not safe for concurrent mutation (spec.md §5).
type Builder struct {
	op Op

	from      string
	fromAlias string
	fromSub   *Builder

	columns  []any
	distinct bool
	// distinctOn holds the column list for Postgres's DISTINCT ON (…);
	// non-nil marks a DistinctOn call. An empty non-nil list compiles
	// to a plain DISTINCT.
	distinctOn []any

	joins   []Join
	wheres  []Where
	groups  []any
	havings []Where
	orders  []Order
	limit   *int
	offset  *int
	unions  []UnionClause
	lock    LockStrength

	aggregate *Aggregate

	// insert/update/delete payload
	insertRows   []map[string]any
	insertIgnore bool
	upsertUnique []string
	upsertUpdate []string
	updateValues map[string]any

	bindings Bindings
}

// NewBuilder returns an empty Builder for a SELECT.
func NewBuilder() *Builder { return &Builder{op: OpSelect} }

// Table starts a new Builder rooted at table (equivalent to From).
func Table(table string) *Builder { return NewBuilder().From(table, "") }

// From sets the target table and optional alias.
func (b *Builder) From(table string, alias string) *Builder {
	b.from, b.fromAlias, b.fromSub = table, alias, nil
	return b
}

// FromSub roots the query in a subquery with the given alias.
func (b *Builder) FromSub(sub *Builder, alias string) *Builder {
	b.fromSub, b.fromAlias, b.from = sub, alias, ""
	b.bindings.add(famFrom, sub.bindings.Flatten()...)
	return b
}

// Select sets the projected columns, replacing any previous selection.
// An empty call restores the default "*".
func (b *Builder) Select(columns ...any) *Builder {
	b.columns = columns
	return b
}

// AddSelect appends to the projected columns.
func (b *Builder) AddSelect(columns ...any) *Builder {
	b.columns = append(b.columns, columns...)
	return b
}

// SelectRaw appends a raw SQL column expression together with its
// bindings, the select-clause counterpart to WhereRaw.
func (b *Builder) SelectRaw(rawSQL string, args ...any) *Builder {
	b.columns = append(b.columns, Raw(rawSQL))
	b.bindings.add(famSelect, args...)
	return b
}

// Distinct marks the query as SELECT DISTINCT.
func (b *Builder) Distinct() *Builder {
	b.distinct = true
	b.distinctOn = nil
	return b
}

// DistinctOn marks the query as PostgreSQL's SELECT DISTINCT ON
// (columns). It is a logic error for any other dialect to compile a
// Builder with DistinctOn set.
func (b *Builder) DistinctOn(columns ...any) *Builder {
	b.distinctOn = columns
	b.distinct = false
	return b
}

// Join adds a join clause. first/second name the columns compared by
// op (default "="); typ defaults to JoinInner.
func (b *Builder) Join(table, first, op, second string, typ JoinType) *Builder {
	if op == "" {
		op = "="
	}
	if typ == "" {
		typ = JoinInner
	}
	j := Join{Type: typ, Table: table, On: []Where{{
		Type: WhereColumn, Boolean: And, Column: first, Operator: op, Column2: second,
	}}}
	b.joins = append(b.joins, j)
	return b
}

// LeftJoin is Join with JoinLeft.
func (b *Builder) LeftJoin(table, first, op, second string) *Builder {
	return b.Join(table, first, op, second, JoinLeft)
}

// RightJoin is Join with JoinRight.
func (b *Builder) RightJoin(table, first, op, second string) *Builder {
	return b.Join(table, first, op, second, JoinRight)
}

// CrossJoin adds a cross join with no on-clause.
func (b *Builder) CrossJoin(table string) *Builder {
	b.joins = append(b.joins, Join{Type: JoinCross, Table: table})
	return b
}

// JoinSub joins a subquery, aliased, with the given on-clause.
func (b *Builder) JoinSub(sub *Builder, alias, first, op, second string, typ JoinType) *Builder {
	if op == "" {
		op = "="
	}
	if typ == "" {
		typ = JoinInner
	}
	b.joins = append(b.joins, Join{
		Type: typ, Table: alias, Sub: sub,
		On: []Where{{Type: WhereColumn, Boolean: And, Column: first, Operator: op, Column2: second}},
	})
	return b
}

// JoinLateral joins a correlated subquery with LATERAL semantics
// (Postgres/MySQL 8+); SQL Server and SQLite reject this at compile
// time via a *sqlerr.LogicError.
func (b *Builder) JoinLateral(sub *Builder, alias string, typ JoinType) *Builder {
	if typ == "" {
		typ = JoinLeft
	}
	b.joins = append(b.joins, Join{Type: typ, Table: alias, Sub: sub, Lateral: true})
	return b
}

// Where adds a basic "column op value" predicate. An empty op is
// treated as "=", so Where(col, "", value) and Where(col, "=", value)
// are equivalent.
func (b *Builder) Where(column, op string, value any) *Builder {
	if op == "" {
		op = "="
	}
	return b.addWhere(Where{Type: WhereBasic, Boolean: And, Column: column, Operator: op, Value: value})
}

// OrWhere is Where joined with OR.
func (b *Builder) OrWhere(column, op string, value any) *Builder {
	if op == "" {
		op = "="
	}
	return b.addWhere(Where{Type: WhereBasic, Boolean: Or, Column: column, Operator: op, Value: value})
}

// WhereNested builds a nested parenthesized group by invoking fn with
// a fresh Builder sharing this Builder's dialect intentions, merging
// its wheres and bindings as one clause.
func (b *Builder) WhereNested(fn func(*Builder), boolean Boolean) *Builder {
	nested := NewBuilder()
	fn(nested)
	return b.addWhere(Where{Type: WhereNested, Boolean: boolean, Builder: nested})
}

// WhereIn adds a WHERE column IN (values) predicate. An empty values
// list is retained as-is; the grammar degrades it to a constant-false
// predicate at compile time.
func (b *Builder) WhereIn(column string, values []any, boolean Boolean, not bool) *Builder {
	typ := WhereIn
	if not {
		typ = WhereNotIn
	}
	return b.addWhere(Where{Type: typ, Boolean: boolean, Column: column, Values: values})
}

// WhereNull adds an IS [NOT] NULL predicate.
func (b *Builder) WhereNull(column string, boolean Boolean, not bool) *Builder {
	typ := WhereNull
	if not {
		typ = WhereNotNull
	}
	return b.addWhere(Where{Type: typ, Boolean: boolean, Column: column})
}

// WhereBetween adds a BETWEEN predicate over exactly two values.
func (b *Builder) WhereBetween(column string, low, high any, boolean Boolean, not bool) *Builder {
	return b.addWhere(Where{Type: WhereBetween, Boolean: boolean, Column: column, Not: not, Values: []any{low, high}})
}

// WhereDatePart adds a WHERE predicate over a date component
// ("date", "time", "year", "month", "day").
func (b *Builder) WhereDatePart(part, column, op string, value any, boolean Boolean) *Builder {
	t := map[string]WhereType{
		"date": WhereDate, "time": WhereTime, "year": WhereYear, "month": WhereMonth, "day": WhereDay,
	}[part]
	return b.addWhere(Where{Type: t, Boolean: boolean, Column: column, Operator: op, Value: value})
}

// WhereColumn compares two columns of this query (or a join's tables).
func (b *Builder) WhereColumn(first, op, second string, boolean Boolean) *Builder {
	return b.addWhere(Where{Type: WhereColumn, Boolean: boolean, Column: first, Operator: op, Column2: second})
}

// WhereSub compares a column against a scalar subquery's result.
func (b *Builder) WhereSub(column, op string, sub *Builder, boolean Boolean) *Builder {
	return b.addWhere(Where{Type: WhereSub, Boolean: boolean, Column: column, Operator: op, Builder: sub})
}

// WhereExists adds an EXISTS/NOT EXISTS predicate over sub.
func (b *Builder) WhereExists(sub *Builder, boolean Boolean, not bool) *Builder {
	return b.addWhere(Where{Type: WhereExists, Boolean: boolean, Not: not, Builder: sub})
}

// WhereJSONContains adds a JSON containment predicate for column's
// dotted path.
func (b *Builder) WhereJSONContains(column string, path []string, value any, boolean Boolean, not bool) *Builder {
	return b.addWhere(Where{Type: WhereJSONContains, Boolean: boolean, Not: not, Column: column, Path: path, Value: value})
}

// WhereJSONContainsKey adds a predicate checking a JSON path key
// exists.
func (b *Builder) WhereJSONContainsKey(column string, path []string, boolean Boolean, not bool) *Builder {
	return b.addWhere(Where{Type: WhereJSONContainsKey, Boolean: boolean, Not: not, Column: column, Path: path})
}

// WhereJSONLength compares the length of a JSON array/object at path.
func (b *Builder) WhereJSONLength(column string, path []string, op string, value any, boolean Boolean) *Builder {
	return b.addWhere(Where{Type: WhereJSONLength, Boolean: boolean, Column: column, Path: path, Operator: op, Value: value})
}

// WhereFulltext adds a fulltext search predicate across columns
// (packed into Column as a comma-joined list; dialects differ on
// whether a single MATCH target or multiple tsvector-concatenated
// columns are supported).
func (b *Builder) WhereFulltext(columns []string, value, language string, mode FulltextMode, boolean Boolean) *Builder {
	return b.addWhere(Where{
		Type: WhereFulltext, Boolean: boolean, Column: joinColumns(columns),
		Value: value, Language: language, Mode: mode,
	})
}

// WhereBitwise adds a bitwise comparison predicate ("column & value").
func (b *Builder) WhereBitwise(column, op string, value any, boolean Boolean) *Builder {
	return b.addWhere(Where{Type: WhereBitwise, Boolean: boolean, Column: column, Operator: op, Value: value})
}

// WhereRaw injects a raw SQL fragment with its own bindings.
func (b *Builder) WhereRaw(sql string, args []any, boolean Boolean) *Builder {
	return b.addWhere(Where{Type: WhereRaw, Boolean: boolean, Raw: sql, RawArgs: args})
}

func (b *Builder) addWhere(w Where) *Builder {
	b.wheres = append(b.wheres, w)
	b.bindings.add(famWhere, w.bindings()...)
	return b
}

// GroupBy sets the GROUP BY columns.
func (b *Builder) GroupBy(columns ...any) *Builder {
	b.groups = append(b.groups, columns...)
	return b
}

// Having adds a HAVING predicate; the shape mirrors Where.
func (b *Builder) Having(column, op string, value any, boolean Boolean) *Builder {
	w := Where{Type: WhereBasic, Boolean: boolean, Column: column, Operator: op, Value: value}
	b.havings = append(b.havings, w)
	b.bindings.add(famHaving, w.bindings()...)
	return b
}

// OrderBy adds an ORDER BY term.
func (b *Builder) OrderBy(column string, direction OrderDirection) *Builder {
	b.orders = append(b.orders, Order{Column: column, Direction: direction})
	return b
}

// OrderByRaw adds a raw ORDER BY expression. Its bindings land in the
// "order" family, unless a union has already been attached, in which
// case the order applies to the combined result and its bindings are
// tracked in "unionOrder" instead — matching the call-order-sensitive
// behavior spec.md §3 describes for the union binding groups.
func (b *Builder) OrderByRaw(sql string, args []any) *Builder {
	b.orders = append(b.orders, Order{Raw: sql, RawArgs: args})
	if len(b.unions) > 0 {
		b.bindings.add(famUnionOrder, args...)
	} else {
		b.bindings.add(famOrder, args...)
	}
	return b
}

// Limit sets the row limit. A negative n is treated as "no limit".
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		b.limit = nil
		return b
	}
	b.limit = &n
	return b
}

// Offset sets the row offset.
func (b *Builder) Offset(n int) *Builder {
	if n < 0 {
		b.offset = nil
		return b
	}
	b.offset = &n
	return b
}

// Union appends other as a UNION (or UNION ALL) of this query.
func (b *Builder) Union(other *Builder, all bool) *Builder {
	b.unions = append(b.unions, UnionClause{Builder: other, All: all})
	b.bindings.add(famUnion, other.bindings.Flatten()...)
	return b
}

// Lock sets the row-locking strength.
func (b *Builder) Lock(strength LockStrength) *Builder {
	b.lock = strength
	return b
}

func (b *Builder) setAggregate(fn, column string) *Builder {
	b.aggregate = &Aggregate{Func: fn, Column: column}
	return b
}

// Count marks this query as a COUNT(column) aggregate.
func (b *Builder) Count(column string) *Builder {
	if column == "" {
		column = "*"
	}
	return b.setAggregate("count", column)
}

// Min marks this query as a MIN(column) aggregate.
func (b *Builder) Min(column string) *Builder { return b.setAggregate("min", column) }

// Max marks this query as a MAX(column) aggregate.
func (b *Builder) Max(column string) *Builder { return b.setAggregate("max", column) }

// Sum marks this query as a SUM(column) aggregate.
func (b *Builder) Sum(column string) *Builder { return b.setAggregate("sum", column) }

// Avg marks this query as an AVG(column) aggregate.
func (b *Builder) Avg(column string) *Builder { return b.setAggregate("avg", column) }

// Insert marks this Builder as an INSERT of rows.
func (b *Builder) Insert(rows ...map[string]any) *Builder {
	b.op = OpInsert
	b.insertRows = rows
	return b
}

// InsertOrIgnore marks the insert to ignore constraint-violating rows.
func (b *Builder) InsertOrIgnore(rows ...map[string]any) *Builder {
	b.Insert(rows...)
	b.insertIgnore = true
	return b
}

// Upsert marks this Builder as an INSERT ... ON CONFLICT/DUPLICATE KEY
// style upsert: uniqueBy names the conflict target columns, update
// names the columns to overwrite on conflict (all non-unique columns
// of the first row when empty).
func (b *Builder) Upsert(rows []map[string]any, uniqueBy, update []string) *Builder {
	b.Insert(rows...)
	b.upsertUnique = uniqueBy
	b.upsertUpdate = update
	return b
}

// Update marks this Builder as an UPDATE with the given column values.
func (b *Builder) Update(values map[string]any) *Builder {
	b.op = OpUpdate
	b.updateValues = values
	return b
}

// Delete marks this Builder as a DELETE.
func (b *Builder) Delete() *Builder {
	b.op = OpDelete
	return b
}

// Bindings returns the builder's current binding bag.
func (b *Builder) Bindings() *Bindings { return &b.bindings }

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ","
		}
		out += c
	}
	return out
}
