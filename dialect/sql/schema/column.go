// Package schema compiles a Blueprint — a deferred, dialect-agnostic
// description of a table's desired shape — into an ordered list of DDL
// statements. It mirrors dialect/sql's QueryGrammar/Builder split: a
// Blueprint is the AST, a SchemaGrammar the per-dialect compiler.
package schema

// ColumnDefinition is a concrete attribute bag for one column of a
// Blueprint, replacing the Fluent "magic getter/setter over an
// attribute map" pattern with a typed struct: an unknown modifier is a
// Go compile error, not a silently-ignored key.
type ColumnDefinition struct {
	Type string
	Name string

	Nullable  bool
	Default   any
	DefaultIsExpr bool

	AutoIncrement bool
	Unsigned      bool

	Charset   string
	Collation string
	Comment   string

	After   string
	First   bool
	Change  bool

	VirtualAs   string
	StoredAs    string
	GeneratedAs string
	IsIdentity  bool

	UseCurrent         bool
	UseCurrentOnUpdate bool

	Length    int
	Precision int
	Total     int
	Places    int

	Allowed []string // enum/set values
	Subtype string   // geometry subtype (point, polygon, …)
	SRID    int

	Invisible bool

	StartingValue int

	From    string
	RenameTo string

	// Fluent index flags: nil (unset), true/false, or an explicit name
	// string. Cleared to nil once addFluentIndexes has emitted the
	// matching command, per spec.md §4.3 step 1a.
	Primary      any
	Unique       any
	Index        any
	Fulltext     any
	SpatialIndex any
}

func newColumn(typ, name string) *ColumnDefinition {
	return &ColumnDefinition{Type: typ, Name: name}
}

// SetNullable marks the column nullable (default false).
func (c *ColumnDefinition) SetNullable(nullable bool) *ColumnDefinition {
	c.Nullable = nullable
	return c
}

// SetDefault sets the column's DEFAULT clause. A string value is
// quoted as a literal; pass an Expr-like raw string via DefaultRaw for
// an unquoted expression (e.g. "now()").
func (c *ColumnDefinition) SetDefault(value any) *ColumnDefinition {
	c.Default, c.DefaultIsExpr = value, false
	return c
}

// DefaultRaw sets DEFAULT to a raw, unquoted SQL expression.
func (c *ColumnDefinition) DefaultRaw(expr string) *ColumnDefinition {
	c.Default, c.DefaultIsExpr = expr, true
	return c
}

// SetUnsigned marks an integer column UNSIGNED (MySQL only; ignored
// elsewhere by the grammar).
func (c *ColumnDefinition) SetUnsigned() *ColumnDefinition {
	c.Unsigned = true
	return c
}

// SetCharset sets the column's character set (MySQL).
func (c *ColumnDefinition) SetCharset(charset string) *ColumnDefinition {
	c.Charset = charset
	return c
}

// SetCollation sets the column's collation.
func (c *ColumnDefinition) SetCollation(collation string) *ColumnDefinition {
	c.Collation = collation
	return c
}

// SetComment sets a column comment. MySQL inlines it as a column
// modifier; Postgres emits a trailing `comment on column` statement;
// SQLite's grammar has no comment modifier and leaves it out.
func (c *ColumnDefinition) SetComment(comment string) *ColumnDefinition {
	c.Comment = comment
	return c
}

// SetAfter places the column after the named column (MySQL `add`/`change`).
func (c *ColumnDefinition) SetAfter(column string) *ColumnDefinition {
	c.After = column
	return c
}

// SetFirst places the column first in the table (MySQL).
func (c *ColumnDefinition) SetFirst() *ColumnDefinition {
	c.First = true
	return c
}

// SetChange marks the column as an alteration of an existing column
// rather than a new addition.
func (c *ColumnDefinition) SetChange() *ColumnDefinition {
	c.Change = true
	return c
}

// SetVirtualAs marks the column a virtual generated column with expr.
func (c *ColumnDefinition) SetVirtualAs(expr string) *ColumnDefinition {
	c.VirtualAs = expr
	return c
}

// SetStoredAs marks the column a stored generated column with expr.
func (c *ColumnDefinition) SetStoredAs(expr string) *ColumnDefinition {
	c.StoredAs = expr
	return c
}

// SetGeneratedAs marks the column a Postgres identity column; an empty
// expr means GENERATED BY DEFAULT AS IDENTITY with no sequence options.
func (c *ColumnDefinition) SetGeneratedAs(expr string) *ColumnDefinition {
	c.GeneratedAs, c.IsIdentity = expr, true
	return c
}

// SetUseCurrent defaults a timestamp column to CURRENT_TIMESTAMP.
func (c *ColumnDefinition) SetUseCurrent() *ColumnDefinition {
	c.UseCurrent = true
	return c
}

// SetUseCurrentOnUpdate adds ON UPDATE CURRENT_TIMESTAMP (MySQL).
func (c *ColumnDefinition) SetUseCurrentOnUpdate() *ColumnDefinition {
	c.UseCurrentOnUpdate = true
	return c
}

// SetStartingValue sets the auto-increment/sequence starting value.
func (c *ColumnDefinition) SetStartingValue(v int) *ColumnDefinition {
	c.StartingValue = v
	return c
}

// SetFrom renames a column (SQLite, where RENAME COLUMN needs the old name).
func (c *ColumnDefinition) SetFrom(from string) *ColumnDefinition {
	c.From = from
	return c
}

// SetRenameTo sets the new name for a RENAME COLUMN command.
func (c *ColumnDefinition) SetRenameTo(to string) *ColumnDefinition {
	c.RenameTo = to
	return c
}

// SetInvisible marks a MySQL invisible column.
func (c *ColumnDefinition) SetInvisible() *ColumnDefinition {
	c.Invisible = true
	return c
}

// SetPrimary sets the fluent primary-key flag: true/false, or an
// explicit index name.
func (c *ColumnDefinition) SetPrimary(v any) *ColumnDefinition {
	c.Primary = v
	return c
}

// SetUnique sets the fluent unique-index flag.
func (c *ColumnDefinition) SetUnique(v any) *ColumnDefinition {
	c.Unique = v
	return c
}

// SetIndex sets the fluent plain-index flag.
func (c *ColumnDefinition) SetIndex(v any) *ColumnDefinition {
	c.Index = v
	return c
}

// SetFulltext sets the fluent fulltext-index flag.
func (c *ColumnDefinition) SetFulltext(v any) *ColumnDefinition {
	c.Fulltext = v
	return c
}

// SetSpatialIndex sets the fluent spatial-index flag.
func (c *ColumnDefinition) SetSpatialIndex(v any) *ColumnDefinition {
	c.SpatialIndex = v
	return c
}
