package schema

import (
	"fmt"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql"
)

// NewSQLServerSchemaGrammar returns a SchemaGrammar compiling DDL for
// SQL Server.
func NewSQLServerSchemaGrammar() *SchemaGrammar {
	g := &SchemaGrammar{
		Grammar:             sql.NewGrammar('[', ']', "2006-01-02 15:04:05.0000000"),
		dialectName:         dialect.SQLServer,
		addColumnKeyword:    "add",
		changeColumnKeyword: "alter column",
		dropColumnKeyword:   "drop column",
	}
	g.typeCompilers = sqlserverTypeCompilers
	g.modifiers = sqlserverModifiers
	g.compileFns = map[string]func(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error){
		"create":       sqlserverCompileCreate,
		"add":          compileAddCommon,
		"change":       sqlserverCompileChange,
		"primary":      compilePrimaryCommon,
		"unique":       compileUniqueCommon,
		"index":        compileIndexCommon,
		"foreign":      compileForeignCommon,
		"dropColumn":   compileDropColumnCommon,
		"dropIndex":    sqlserverCompileDropIndex,
		"dropUnique":   compileDropUniqueCommon,
		"dropPrimary":  compileDropPrimaryCommon,
		"dropForeign":  compileDropForeignCommon,
		"renameColumn": sqlserverCompileRenameColumn,
		"drop":         compileDropTableCommon,
	}
	return g
}

var sqlserverTypeCompilers = map[string]func(g *SchemaGrammar, c *ColumnDefinition) string{
	"integer":    func(g *SchemaGrammar, c *ColumnDefinition) string { return "int" },
	"bigInteger": func(g *SchemaGrammar, c *ColumnDefinition) string { return "bigint" },
	"string": func(g *SchemaGrammar, c *ColumnDefinition) string {
		length := c.Length
		if length <= 0 {
			length = 255
		}
		return fmt.Sprintf("nvarchar(%d)", length)
	},
	"text":    func(g *SchemaGrammar, c *ColumnDefinition) string { return "nvarchar(max)" },
	"boolean": func(g *SchemaGrammar, c *ColumnDefinition) string { return "bit" },
	"decimal": func(g *SchemaGrammar, c *ColumnDefinition) string {
		total, places := c.Total, c.Places
		if total <= 0 {
			total = 8
		}
		return fmt.Sprintf("decimal(%d, %d)", total, places)
	},
	"json":      func(g *SchemaGrammar, c *ColumnDefinition) string { return "nvarchar(max)" },
	"uuid":      func(g *SchemaGrammar, c *ColumnDefinition) string { return "uniqueidentifier" },
	"enum":      func(g *SchemaGrammar, c *ColumnDefinition) string { return "nvarchar(255)" },
	"date":      func(g *SchemaGrammar, c *ColumnDefinition) string { return "date" },
	"dateTime":  func(g *SchemaGrammar, c *ColumnDefinition) string { return "datetime2" },
	"timestamp": func(g *SchemaGrammar, c *ColumnDefinition) string { return "datetime2" },
}

var sqlserverModifiers = []func(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string{
	sqlserverModifyCollate,
	sqlserverModifyNullable,
	sqlserverModifyDefault,
	sqlserverModifyIncrement,
}

func sqlserverModifyCollate(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.Collation != "" {
		return "collate " + c.Collation
	}
	return ""
}

func sqlserverModifyNullable(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.Nullable {
		return "null"
	}
	return "not null"
}

func sqlserverModifyDefault(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if lit := defaultLiteral(g, c); lit != "" {
		return "default " + lit
	}
	return ""
}

func sqlserverModifyIncrement(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.AutoIncrement {
		return "identity primary key"
	}
	return ""
}

func sqlserverCompileCreate(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	defs := compileCreateColumns(g, b)
	for _, cmd := range b.Commands {
		if cmd.Name == "primary" {
			defs = append(defs, fmt.Sprintf("primary key (%s)", g.Columnize(toAny(cmd.Columns))))
			cmd.ShouldBeSkipped = true
		}
	}
	return []string{fmt.Sprintf("create table %s (%s)", g.WrapTable(b.Table), strings.Join(defs, ", "))}, nil
}

func sqlserverCompileChange(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s %s %s", g.WrapTable(b.Table), g.changeColumnKeyword, g.columnDefinitionSQL(b, cmd.Column))}, nil
}

func sqlserverCompileDropIndex(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("drop index %s on %s", g.QuoteIdentifier(cmd.IndexName), g.WrapTable(b.Table))}, nil
}

func sqlserverCompileRenameColumn(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("sp_rename %s, %s, %s",
		g.QuoteString(b.Table+"."+cmd.From), g.QuoteString(cmd.To), g.QuoteString("column"))}, nil
}
