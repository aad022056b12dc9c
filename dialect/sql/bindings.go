package sql

// Bindings is the fixed, ordered bag of binding lists the builder
// maintains, keyed by clause family. Flatten always returns the lists
// concatenated in this exact order — select, from, join, where,
// groupBy, having, order, union, unionOrder — matching the order
// clauses are compiled in, which is the invariant every dialect's
// placeholder count depends on.
type Bindings struct {
	Select     []any
	From       []any
	Join       []any
	Where      []any
	GroupBy    []any
	Having     []any
	Order      []any
	Union      []any
	UnionOrder []any
}

// Flatten concatenates every clause family's bindings in compilation
// order. No clause family may read another's slot; adding a value to
// one list never affects another's position in the flattened result.
func (b *Bindings) Flatten() []any {
	total := len(b.Select) + len(b.From) + len(b.Join) + len(b.Where) +
		len(b.GroupBy) + len(b.Having) + len(b.Order) + len(b.Union) + len(b.UnionOrder)
	out := make([]any, 0, total)
	out = append(out, b.Select...)
	out = append(out, b.From...)
	out = append(out, b.Join...)
	out = append(out, b.Where...)
	out = append(out, b.GroupBy...)
	out = append(out, b.Having...)
	out = append(out, b.Order...)
	out = append(out, b.Union...)
	out = append(out, b.UnionOrder...)
	return out
}

// Reset clears every clause family's bindings in place.
func (b *Bindings) Reset() { *b = Bindings{} }

// clauseFamily identifies one of Bindings' slots, used by builder
// methods to append without repeating the field switch at every call
// site.
type clauseFamily int

const (
	famSelect clauseFamily = iota
	famFrom
	famJoin
	famWhere
	famGroupBy
	famHaving
	famOrder
	famUnion
	famUnionOrder
)

func (b *Bindings) add(fam clauseFamily, values ...any) {
	switch fam {
	case famSelect:
		b.Select = append(b.Select, values...)
	case famFrom:
		b.From = append(b.From, values...)
	case famJoin:
		b.Join = append(b.Join, values...)
	case famWhere:
		b.Where = append(b.Where, values...)
	case famGroupBy:
		b.GroupBy = append(b.GroupBy, values...)
	case famHaving:
		b.Having = append(b.Having, values...)
	case famOrder:
		b.Order = append(b.Order, values...)
	case famUnion:
		b.Union = append(b.Union, values...)
	case famUnionOrder:
		b.UnionOrder = append(b.UnionOrder, values...)
	}
}
