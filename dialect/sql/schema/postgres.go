package schema

import (
	"fmt"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql"
)

// NewPostgresSchemaGrammar returns a SchemaGrammar compiling DDL for
// PostgreSQL.
func NewPostgresSchemaGrammar() *SchemaGrammar {
	g := &SchemaGrammar{
		Grammar:             sql.NewGrammar('"', '"', "2006-01-02 15:04:05-07"),
		dialectName:         dialect.Postgres,
		addColumnKeyword:    "add column",
		changeColumnKeyword: "alter column",
		dropColumnKeyword:   "drop column",
	}
	g.typeCompilers = postgresTypeCompilers
	g.modifiers = postgresModifiers
	g.addFluentCommandsFn = postgresAddFluentCommands
	g.compileFns = map[string]func(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error){
		"create":                      postgresCompileCreate,
		"add":                         compileAddCommon,
		"change":                      postgresCompileChange,
		"primary":                     compilePrimaryCommon,
		"unique":                      compileUniqueCommon,
		"index":                       compileIndexCommon,
		"fulltext":                    postgresCompileFulltext,
		"spatialIndex":                postgresCompileSpatialIndex,
		"foreign":                     compileForeignCommon,
		"dropColumn":                  compileDropColumnCommon,
		"dropIndex":                   compileDropIndexCommon,
		"dropUnique":                  compileDropUniqueCommon,
		"dropPrimary":                 compileDropPrimaryCommon,
		"dropForeign":                 compileDropForeignCommon,
		"renameColumn":                compileRenameColumnCommon,
		"drop":                        compileDropTableCommon,
		"comment":                     postgresCompileComment,
		"autoIncrementStartingValues": postgresCompileAutoIncrementStartingValue,
	}
	return g
}

var postgresTypeCompilers = map[string]func(g *SchemaGrammar, c *ColumnDefinition) string{
	"integer": func(g *SchemaGrammar, c *ColumnDefinition) string {
		if c.AutoIncrement {
			return "serial"
		}
		return "integer"
	},
	"bigInteger": func(g *SchemaGrammar, c *ColumnDefinition) string {
		if c.AutoIncrement {
			return "bigserial"
		}
		return "bigint"
	},
	"string": func(g *SchemaGrammar, c *ColumnDefinition) string {
		length := c.Length
		if length <= 0 {
			length = 255
		}
		return fmt.Sprintf("varchar(%d)", length)
	},
	"text":    func(g *SchemaGrammar, c *ColumnDefinition) string { return "text" },
	"boolean": func(g *SchemaGrammar, c *ColumnDefinition) string { return "boolean" },
	"decimal": func(g *SchemaGrammar, c *ColumnDefinition) string {
		total, places := c.Total, c.Places
		if total <= 0 {
			total = 8
		}
		return fmt.Sprintf("numeric(%d, %d)", total, places)
	},
	"json": func(g *SchemaGrammar, c *ColumnDefinition) string { return "jsonb" },
	"uuid": func(g *SchemaGrammar, c *ColumnDefinition) string { return "uuid" },
	"enum": func(g *SchemaGrammar, c *ColumnDefinition) string {
		vals := make([]string, len(c.Allowed))
		for i, v := range c.Allowed {
			vals[i] = g.QuoteString(v)
		}
		return fmt.Sprintf("varchar(255) check (%s in (%s))", g.Wrap(c.Name, false), strings.Join(vals, ", "))
	},
	"date": func(g *SchemaGrammar, c *ColumnDefinition) string { return "date" },
	"dateTime": func(g *SchemaGrammar, c *ColumnDefinition) string {
		return "timestamp(0) without time zone"
	},
	"timestamp": func(g *SchemaGrammar, c *ColumnDefinition) string {
		return "timestamp(0) without time zone"
	},
}

var postgresModifiers = []func(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string{
	postgresModifyCollate,
	postgresModifyNullable,
	postgresModifyDefault,
	postgresModifyVirtualAs,
	postgresModifyStoredAs,
	postgresModifyGeneratedAs,
	postgresModifyIncrement,
}

func postgresModifyCollate(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.Collation != "" {
		return "collate " + g.QuoteIdentifier(c.Collation)
	}
	return ""
}

func postgresModifyNullable(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.Nullable {
		return "null"
	}
	return "not null"
}

func postgresModifyDefault(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.UseCurrent && (c.Type == "timestamp" || c.Type == "dateTime") {
		return "default current_timestamp"
	}
	if lit := defaultLiteral(g, c); lit != "" {
		return "default " + lit
	}
	return ""
}

// postgresModifyVirtualAs has no field: Postgres has no virtual
// (non-stored) generated column. A VirtualAs value is silently
// dropped rather than compiled, matching the grammar's "only render
// modifiers the dialect actually supports" contract.
func postgresModifyVirtualAs(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	return ""
}

func postgresModifyStoredAs(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.StoredAs != "" {
		return fmt.Sprintf("generated always as (%s) stored", c.StoredAs)
	}
	return ""
}

func postgresModifyGeneratedAs(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if !c.IsIdentity {
		return ""
	}
	if c.GeneratedAs == "" {
		return "generated by default as identity"
	}
	return fmt.Sprintf("generated always as identity (%s)", c.GeneratedAs)
}

func postgresModifyIncrement(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.AutoIncrement && !hasPrimaryCommand(b) {
		return "primary key"
	}
	return ""
}

func postgresCompileCreate(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	defs := compileCreateColumns(g, b)
	for _, cmd := range b.Commands {
		if cmd.Name == "primary" {
			defs = append(defs, fmt.Sprintf("primary key (%s)", g.Columnize(toAny(cmd.Columns))))
			cmd.ShouldBeSkipped = true
		}
	}
	return []string{fmt.Sprintf("create table %s (%s)", g.WrapTable(b.Table), strings.Join(defs, ", "))}, nil
}

func postgresCompileChange(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	col := cmd.Column
	var stmts []string
	stmts = append(stmts, fmt.Sprintf("alter table %s alter column %s type %s", g.WrapTable(b.Table), g.Wrap(col.Name, false), g.columnType(col)))
	if col.Nullable {
		stmts = append(stmts, fmt.Sprintf("alter table %s alter column %s drop not null", g.WrapTable(b.Table), g.Wrap(col.Name, false)))
	} else {
		stmts = append(stmts, fmt.Sprintf("alter table %s alter column %s set not null", g.WrapTable(b.Table), g.Wrap(col.Name, false)))
	}
	if lit := defaultLiteral(g, col); lit != "" {
		stmts = append(stmts, fmt.Sprintf("alter table %s alter column %s set default %s", g.WrapTable(b.Table), g.Wrap(col.Name, false), lit))
	}
	return stmts, nil
}

func postgresCompileFulltext(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	lang := "english"
	cols := make([]string, len(cmd.Columns))
	for i, c := range cmd.Columns {
		cols[i] = fmt.Sprintf("to_tsvector(%s, %s)", g.QuoteString(lang), g.Wrap(c, false))
	}
	return []string{fmt.Sprintf("create index %s on %s using gin ((%s))", g.QuoteIdentifier(cmd.IndexName), g.WrapTable(b.Table), strings.Join(cols, " || "))}, nil
}

func postgresCompileSpatialIndex(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("create index %s on %s using gist (%s)", g.QuoteIdentifier(cmd.IndexName), g.WrapTable(b.Table), g.Columnize(toAny(cmd.Columns)))}, nil
}

func postgresCompileComment(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("comment on column %s.%s is %s", g.WrapTable(b.Table), g.Wrap(cmd.Column.Name, false), g.QuoteString(cmd.Column.Comment))}, nil
}

func postgresCompileAutoIncrementStartingValue(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	col := cmd.Column
	seq := fmt.Sprintf("%s_%s_seq", b.Table, col.Name)
	return []string{fmt.Sprintf("alter sequence %s restart with %d", seq, col.StartingValue)}, nil
}

// postgresAddFluentCommands turns a column's Comment and
// StartingValue into trailing commands: Postgres has no inline column
// comment syntax and ALTER TABLE can't set a serial's starting value,
// so both are emitted as separate statements after the column exists.
func postgresAddFluentCommands(g *SchemaGrammar, b *Blueprint) {
	for _, col := range b.Columns {
		if col.Comment != "" {
			b.Commands = append(b.Commands, &Command{Name: "comment", Column: col})
		}
		if col.AutoIncrement && col.StartingValue > 0 {
			b.Commands = append(b.Commands, &Command{Name: "autoIncrementStartingValues", Column: col})
		}
	}
}
