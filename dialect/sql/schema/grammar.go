package schema

import (
	"fmt"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
)

// SchemaGrammar compiles a Blueprint into dialect DDL. It mirrors
// QueryGrammar's shape: a single struct embedding the shared
// identifier/quoting Grammar, with per-dialect behavior wired in as
// function-valued fields by each dialect's constructor rather than
// dispatched through an interface or reflection.
type SchemaGrammar struct {
	sql.Grammar

	dialectName string

	// typeCompilers renders the dialect-native type clause for a
	// column, keyed by ColumnDefinition.Type.
	typeCompilers map[string]func(g *SchemaGrammar, c *ColumnDefinition) string

	// modifiers runs, in a fixed per-dialect order, after the type
	// clause: unsigned/charset/collation/nullable/default/generated/
	// increment/comment/after/first, whichever the dialect supports.
	modifiers []func(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string

	addColumnKeyword    string
	changeColumnKeyword string
	dropColumnKeyword   string

	// skipPrimaryFlagOnAutoIncrementChange tells addFluentIndexes to
	// drop a column's fluent `primary` flag when the column is both
	// autoIncrement and Change: the dialect already inlines the
	// primary key into the column's own DDL, so a separate `primary`
	// command would be redundant or invalid. Only MySQL sets this.
	skipPrimaryFlagOnAutoIncrementChange bool

	// addFluentCommandsFn lets a dialect append extra commands implied
	// by column attributes that don't map to a fluent index flag:
	// Postgres turns a Comment into a trailing `comment on column` and
	// a StartingValue into an `autoIncrementStartingValues` command.
	addFluentCommandsFn func(g *SchemaGrammar, b *Blueprint)

	// addAlterCommandsFn lets a dialect rewrite an alter blueprint's
	// command list before compilation. SQLite uses this to collapse
	// column/index alterations it cannot express as a bare ALTER TABLE
	// into a single table-rebuild command.
	addAlterCommandsFn func(g *SchemaGrammar, b *Blueprint)

	compileFns map[string]func(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error)
}

func (g *SchemaGrammar) inlinesAutoIncrementPrimary() bool {
	return g.skipPrimaryFlagOnAutoIncrementChange
}

func (g *SchemaGrammar) addFluentCommands(b *Blueprint) {
	if g.addFluentCommandsFn != nil {
		g.addFluentCommandsFn(g, b)
	}
}

func (g *SchemaGrammar) addAlterCommands(b *Blueprint) {
	if g.addAlterCommandsFn != nil {
		g.addAlterCommandsFn(g, b)
	}
}

// Compile dispatches cmd to the registered compiler for its Name.
func (g *SchemaGrammar) Compile(b *Blueprint, cmd *Command) ([]string, error) {
	fn, ok := g.compileFns[cmd.Name]
	if !ok {
		return nil, sqlerr.NewLogicError(cmd.Name, g.dialectName+" schema grammar has no compiler for this command")
	}
	return fn(g, b, cmd)
}

// columnType renders the dialect-native type clause for col, falling
// back to the column's own Type name when the dialect has no
// registered compiler for it (callers needing strict failure should
// check typeCompilers directly before Compile).
func (g *SchemaGrammar) columnType(col *ColumnDefinition) string {
	if fn, ok := g.typeCompilers[col.Type]; ok {
		return fn(g, col)
	}
	return col.Type
}

// columnDefinitionSQL renders "wrapped_name type modifier modifier..."
// for one column, the shared core of compileCreate/compileAdd/
// compileChange across every dialect.
func (g *SchemaGrammar) columnDefinitionSQL(b *Blueprint, col *ColumnDefinition) string {
	parts := []string{g.Wrap(col.Name, false), g.columnType(col)}
	for _, mod := range g.modifiers {
		if part := mod(g, b, col); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// hasPrimaryCommand reports whether b already carries an explicit
// `primary` command, so an Increment modifier knows whether it still
// needs to inline `primary key`/`auto_increment primary key` itself.
func hasPrimaryCommand(b *Blueprint) bool {
	for _, cmd := range b.Commands {
		if cmd.Name == "primary" {
			return true
		}
	}
	return false
}

// defaultLiteral renders a DEFAULT clause value. DefaultIsExpr values
// are inlined verbatim; everything else is rendered as a literal.
func defaultLiteral(g *SchemaGrammar, col *ColumnDefinition) string {
	if col.Default == nil {
		return ""
	}
	if col.DefaultIsExpr {
		return fmt.Sprintf("%v", col.Default)
	}
	switch v := col.Default.(type) {
	case string:
		return g.QuoteString(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// compileCreateColumns renders the column-definition list that every
// dialect's own create compiler wraps in parentheses; of those, only
// MySQL's appends engine/charset clauses.
func compileCreateColumns(g *SchemaGrammar, b *Blueprint) []string {
	defs := make([]string, 0, len(b.Columns))
	for _, col := range b.Columns {
		defs = append(defs, g.columnDefinitionSQL(b, col))
	}
	return defs
}

func compileAddCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s %s %s", g.WrapTable(b.Table), g.addColumnKeyword, g.columnDefinitionSQL(b, cmd.Column))}, nil
}

func compilePrimaryCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s add primary key (%s)", g.WrapTable(b.Table), g.Columnize(toAny(cmd.Columns)))}, nil
}

func compileUniqueCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s add constraint %s unique (%s)", g.WrapTable(b.Table), g.QuoteIdentifier(cmd.IndexName), g.Columnize(toAny(cmd.Columns)))}, nil
}

func compileIndexCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("create index %s on %s (%s)", g.QuoteIdentifier(cmd.IndexName), g.WrapTable(b.Table), g.Columnize(toAny(cmd.Columns)))}, nil
}

func compileDropColumnCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	wrapped := make([]string, len(cmd.Columns))
	for i, c := range cmd.Columns {
		wrapped[i] = g.dropColumnKeyword + " " + g.Wrap(c, false)
	}
	return []string{fmt.Sprintf("alter table %s %s", g.WrapTable(b.Table), strings.Join(wrapped, ", "))}, nil
}

func compileDropIndexCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("drop index %s", g.QuoteIdentifier(cmd.IndexName))}, nil
}

func compileDropUniqueCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s drop constraint %s", g.WrapTable(b.Table), g.QuoteIdentifier(cmd.IndexName))}, nil
}

func compileDropPrimaryCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s drop constraint %s", g.WrapTable(b.Table), g.QuoteIdentifier(b.Table+"_pkey"))}, nil
}

func compileDropForeignCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s drop constraint %s", g.WrapTable(b.Table), g.QuoteIdentifier(cmd.IndexName))}, nil
}

func compileForeignCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	stmt := fmt.Sprintf("alter table %s add constraint %s foreign key (%s) references %s (%s)",
		g.WrapTable(b.Table), g.QuoteIdentifier(cmd.IndexName), g.Columnize(toAny(cmd.Columns)),
		g.WrapTable(cmd.ReferencesTable), g.Columnize(toAny(cmd.References)))
	if cmd.OnDelete != "" {
		stmt += " on delete " + cmd.OnDelete
	}
	if cmd.OnUpdate != "" {
		stmt += " on update " + cmd.OnUpdate
	}
	return []string{stmt}, nil
}

func compileRenameColumnCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s rename column %s to %s", g.WrapTable(b.Table), g.Wrap(cmd.From, false), g.Wrap(cmd.To, false))}, nil
}

func compileDropTableCommon(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{"drop table " + g.WrapTable(b.Table)}, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
