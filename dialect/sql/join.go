package sql

// JoinType is the closed set of join kinds spec.md §3 names.
type JoinType string

const (
	JoinInner   JoinType = "inner"
	JoinLeft    JoinType = "left"
	JoinRight   JoinType = "right"
	JoinCross   JoinType = "cross"
	JoinLateral JoinType = "lateral"
	JoinNatural JoinType = "natural"
)

// Join is a single join clause: a target table (or subquery) plus its
// on-clauses, themselves represented as a nested Builder's wheres so
// the same WhereColumn/WhereNested machinery compiles both.
type Join struct {
	Type    JoinType
	Table   string
	Alias   string
	Sub     *Builder // set when joining a subquery instead of a table
	On      []Where
	Lateral bool
}

func (j Join) bindings() []any {
	var out []any
	if j.Sub != nil {
		out = append(out, j.Sub.bindings.Flatten()...)
	}
	for _, w := range j.On {
		out = append(out, w.bindings()...)
	}
	return out
}
