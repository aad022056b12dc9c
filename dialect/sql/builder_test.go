package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderBindingsFixedOrder(t *testing.T) {
	b := Table("users").
		Select("id").
		Where("status", "=", "active").
		Having("count", ">", 1, And).
		OrderByRaw("field(id, ?)", []any{3})

	// Regardless of the call order above, Flatten must emit
	// where-then-having-then-order, per spec.md §3's binding invariant.
	require.Equal(t, []any{"active", 1, 3}, b.Bindings().Flatten())
}

func TestBuilderUnionBindingsFollowWhereAndOrder(t *testing.T) {
	first := Table("users").Where("id", "=", 1)
	second := Table("admins").Where("id", "=", 2)
	first.Union(second, false)
	first.OrderByRaw("name", nil)

	require.Equal(t, []any{1, 2}, first.Bindings().Flatten())
}

func TestBuilderOrderByRawAfterUnionUsesUnionOrderFamily(t *testing.T) {
	first := Table("users").Where("id", "=", 1)
	second := Table("admins").Where("id", "=", 2)
	first.Union(second, false)
	first.OrderByRaw("field(id, ?)", []any{9})

	require.Equal(t, []any{9}, first.Bindings().UnionOrder)
	require.Empty(t, first.Bindings().Order)
}

func TestBuilderOrderByRawBeforeUnionUsesOrderFamily(t *testing.T) {
	b := Table("users")
	b.OrderByRaw("field(id, ?)", []any{9})
	other := Table("admins")
	b.Union(other, false)

	require.Equal(t, []any{9}, b.Bindings().Order)
	require.Empty(t, b.Bindings().UnionOrder)
}

func TestBuilderWhereInEmptyValuesKeepsPlaceholder(t *testing.T) {
	b := Table("users").WhereIn("id", nil, And, false)
	require.Len(t, b.wheres, 1)
	require.Equal(t, WhereIn, b.wheres[0].Type)
}

func TestBuilderNestedWhereMergesBindings(t *testing.T) {
	b := Table("users").Where("active", "=", true)
	b.WhereNested(func(n *Builder) {
		n.Where("age", ">", 18)
		n.OrWhere("vip", "=", true)
	}, And)

	require.Equal(t, []any{true, 18, true}, b.Bindings().Flatten())
}

func TestBuilderUpsertLeavesNilUpdateColumnsUnset(t *testing.T) {
	b := Table("users").Upsert(
		[]map[string]any{{"id": 1, "email": "a@example.com"}},
		[]string{"id"},
		nil,
	)
	require.Equal(t, OpInsert, b.op)
	require.Nil(t, b.upsertUpdate)
}
