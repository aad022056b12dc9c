package schema

import (
	"fmt"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql"
	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
)

// NewSQLiteSchemaGrammar returns a SchemaGrammar compiling DDL for
// SQLite. By default it targets 3.35+, which natively supports DROP
// COLUMN and RENAME COLUMN; call SetLegacyAlter(true) for older
// servers, which routes destructive alters through a create-copy-drop-
// rename rebuild instead, per spec.md §4.3's SQLite note.
func NewSQLiteSchemaGrammar() *SchemaGrammar {
	g := &SchemaGrammar{
		Grammar:             sql.NewGrammar('"', '"', "2006-01-02 15:04:05"),
		dialectName:         dialect.SQLite,
		addColumnKeyword:    "add column",
		changeColumnKeyword: "",
		dropColumnKeyword:   "drop column",
	}
	g.typeCompilers = sqliteTypeCompilers
	g.modifiers = sqliteModifiers
	g.addAlterCommandsFn = sqliteAddAlterCommands
	g.compileFns = map[string]func(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error){
		"create":       sqliteCompileCreate,
		"add":          compileAddCommon,
		"primary":      sqliteCompileUnsupportedAlterPrimary,
		"unique":       compileUniqueCommon,
		"index":        compileIndexCommon,
		"foreign":      sqliteCompileForeignUnsupported,
		"dropColumn":   compileDropColumnCommon,
		"dropIndex":    compileDropIndexCommon,
		"dropUnique":   compileDropUniqueCommon,
		"dropPrimary":  sqliteCompileUnsupportedAlterPrimary,
		"dropForeign":  sqliteCompileForeignUnsupported,
		"renameColumn": compileRenameColumnCommon,
		"drop":         compileDropTableCommon,
		"rebuildTable": sqliteCompileRebuild,
	}
	return g
}

// SetLegacyAlter toggles the pre-3.35 rebuild path. Nothing in this
// module calls it or inspects the server version on the caller's
// behalf; the native path stays in effect until a caller sets it.
func (g *SchemaGrammar) SetLegacyAlter(legacy bool) {
	if legacy {
		g.addAlterCommandsFn = sqliteAddAlterCommandsLegacy
	} else {
		g.addAlterCommandsFn = sqliteAddAlterCommands
	}
}

var sqliteTypeCompilers = map[string]func(g *SchemaGrammar, c *ColumnDefinition) string{
	"integer":    func(g *SchemaGrammar, c *ColumnDefinition) string { return "integer" },
	"bigInteger": func(g *SchemaGrammar, c *ColumnDefinition) string { return "integer" },
	"string":     func(g *SchemaGrammar, c *ColumnDefinition) string { return "varchar" },
	"text":       func(g *SchemaGrammar, c *ColumnDefinition) string { return "text" },
	"boolean":    func(g *SchemaGrammar, c *ColumnDefinition) string { return "tinyint(1)" },
	"decimal":    func(g *SchemaGrammar, c *ColumnDefinition) string { return "numeric" },
	"json":       func(g *SchemaGrammar, c *ColumnDefinition) string { return "text" },
	"uuid":       func(g *SchemaGrammar, c *ColumnDefinition) string { return "varchar" },
	"enum": func(g *SchemaGrammar, c *ColumnDefinition) string {
		vals := make([]string, len(c.Allowed))
		for i, v := range c.Allowed {
			vals[i] = g.QuoteString(v)
		}
		return fmt.Sprintf("varchar check (%s in (%s))", g.Wrap(c.Name, false), strings.Join(vals, ", "))
	},
	"date":      func(g *SchemaGrammar, c *ColumnDefinition) string { return "date" },
	"dateTime":  func(g *SchemaGrammar, c *ColumnDefinition) string { return "datetime" },
	"timestamp": func(g *SchemaGrammar, c *ColumnDefinition) string { return "datetime" },
}

var sqliteModifiers = []func(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string{
	sqliteModifyVirtualAs,
	sqliteModifyStoredAs,
	sqliteModifyNullable,
	sqliteModifyDefault,
	sqliteModifyIncrement,
}

func sqliteModifyVirtualAs(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.VirtualAs != "" {
		return fmt.Sprintf("generated always as (%s)", c.VirtualAs)
	}
	return ""
}

func sqliteModifyStoredAs(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.StoredAs != "" {
		return fmt.Sprintf("generated always as (%s) stored", c.StoredAs)
	}
	return ""
}

func sqliteModifyNullable(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.Nullable {
		return ""
	}
	return "not null"
}

func sqliteModifyDefault(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if lit := defaultLiteral(g, c); lit != "" {
		return "default " + lit
	}
	return ""
}

func sqliteModifyIncrement(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.AutoIncrement {
		return "primary key autoincrement"
	}
	return ""
}

func sqliteCompileCreate(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	defs := compileCreateColumns(g, b)
	for _, cmd := range b.Commands {
		if cmd.Name == "primary" {
			defs = append(defs, fmt.Sprintf("primary key (%s)", g.Columnize(toAny(cmd.Columns))))
			cmd.ShouldBeSkipped = true
		}
	}
	return []string{fmt.Sprintf("create table %s (%s)", g.WrapTable(b.Table), strings.Join(defs, ", "))}, nil
}

func sqliteCompileUnsupportedAlterPrimary(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return nil, sqlerr.NewLogicError(cmd.Name, "sqlite has no ALTER TABLE form for the primary key; recreate the table instead")
}

func sqliteCompileForeignUnsupported(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return nil, sqlerr.NewLogicError(cmd.Name, "sqlite enforces foreign keys declared at CREATE TABLE time only")
}

// sqliteAddAlterCommands is the 3.35+ default: native DROP COLUMN and
// RENAME COLUMN compile as-is via compileDropColumnCommon/
// compileRenameColumnCommon, so there is nothing to rewrite.
func sqliteAddAlterCommands(g *SchemaGrammar, b *Blueprint) {}

// sqliteAddAlterCommandsLegacy collapses any dropColumn/renameColumn
// command into a single rebuildTable command: SQLite before 3.35 can
// only change column shape by creating a replacement table, copying
// rows across, dropping the original, and renaming the replacement
// into place.
func sqliteAddAlterCommandsLegacy(g *SchemaGrammar, b *Blueprint) {
	needsRebuild := false
	kept := b.Commands[:0:0]
	for _, cmd := range b.Commands {
		if cmd.Name == "dropColumn" || cmd.Name == "renameColumn" {
			needsRebuild = true
			continue
		}
		kept = append(kept, cmd)
	}
	if !needsRebuild {
		return
	}
	b.Commands = append(kept, &Command{Name: "rebuildTable"})
}

// sqliteCompileRebuild emits the create-copy-drop-rename sequence for
// a legacy-mode alter. It works from the blueprint's own Columns list,
// so the caller is responsible for populating the blueprint with the
// table's full resulting column set (not just the delta) when
// targeting pre-3.35 SQLite.
func sqliteCompileRebuild(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	if len(b.Columns) == 0 {
		return nil, sqlerr.NewLogicError("rebuildTable", "sqlite pre-3.35 rebuild requires the blueprint's full column set")
	}
	tmp := b.Table + "__lihtne_tmp"
	defs := make([]string, 0, len(b.Columns))
	names := make([]string, 0, len(b.Columns))
	for _, col := range b.Columns {
		defs = append(defs, g.columnDefinitionSQL(b, col))
		names = append(names, g.Wrap(col.Name, false))
	}
	cols := strings.Join(names, ", ")
	return []string{
		fmt.Sprintf("create table %s (%s)", g.WrapTable(tmp), strings.Join(defs, ", ")),
		fmt.Sprintf("insert into %s (%s) select %s from %s", g.WrapTable(tmp), cols, cols, g.WrapTable(b.Table)),
		fmt.Sprintf("drop table %s", g.WrapTable(b.Table)),
		fmt.Sprintf("alter table %s rename to %s", g.WrapTable(tmp), g.WrapTable(b.Table)),
	}, nil
}
