package schema

import (
	"fmt"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql"
)

// NewMySQLSchemaGrammar returns a SchemaGrammar compiling DDL for
// MySQL and MariaDB.
func NewMySQLSchemaGrammar() *SchemaGrammar {
	g := &SchemaGrammar{
		Grammar:             sql.NewGrammar('`', '`', "2006-01-02 15:04:05"),
		dialectName:         dialect.MySQL,
		addColumnKeyword:    "add",
		changeColumnKeyword: "modify",
		dropColumnKeyword:   "drop",
	}
	g.skipPrimaryFlagOnAutoIncrementChange = true
	g.typeCompilers = mysqlTypeCompilers
	g.modifiers = mysqlModifiers
	g.compileFns = map[string]func(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error){
		"create":       mysqlCompileCreate,
		"add":          compileAddCommon,
		"change":       mysqlCompileChange,
		"primary":      compilePrimaryCommon,
		"unique":       compileUniqueCommon,
		"index":        compileIndexCommon,
		"fulltext":     mysqlCompileFulltext,
		"spatialIndex": mysqlCompileSpatialIndex,
		"foreign":      compileForeignCommon,
		"dropColumn":   compileDropColumnCommon,
		"dropIndex":    compileDropIndexCommon,
		"dropUnique":   compileDropUniqueCommon,
		"dropPrimary":  mysqlCompileDropPrimary,
		"dropForeign":  compileDropForeignCommon,
		"renameColumn": compileRenameColumnCommon,
		"drop":         compileDropTableCommon,
	}
	return g
}

var mysqlTypeCompilers = map[string]func(g *SchemaGrammar, c *ColumnDefinition) string{
	"integer":    func(g *SchemaGrammar, c *ColumnDefinition) string { return "int" },
	"bigInteger": func(g *SchemaGrammar, c *ColumnDefinition) string { return "bigint" },
	"string": func(g *SchemaGrammar, c *ColumnDefinition) string {
		length := c.Length
		if length <= 0 {
			length = 255
		}
		return fmt.Sprintf("varchar(%d)", length)
	},
	"text":    func(g *SchemaGrammar, c *ColumnDefinition) string { return "text" },
	"boolean": func(g *SchemaGrammar, c *ColumnDefinition) string { return "tinyint(1)" },
	"decimal": func(g *SchemaGrammar, c *ColumnDefinition) string {
		total, places := c.Total, c.Places
		if total <= 0 {
			total = 8
		}
		return fmt.Sprintf("decimal(%d, %d)", total, places)
	},
	"json": func(g *SchemaGrammar, c *ColumnDefinition) string { return "json" },
	"uuid": func(g *SchemaGrammar, c *ColumnDefinition) string { return "char(36)" },
	"enum": func(g *SchemaGrammar, c *ColumnDefinition) string {
		vals := make([]string, len(c.Allowed))
		for i, v := range c.Allowed {
			vals[i] = g.QuoteString(v)
		}
		return fmt.Sprintf("enum(%s)", strings.Join(vals, ", "))
	},
	"date":     func(g *SchemaGrammar, c *ColumnDefinition) string { return "date" },
	"dateTime": func(g *SchemaGrammar, c *ColumnDefinition) string { return "datetime" },
	"timestamp": func(g *SchemaGrammar, c *ColumnDefinition) string {
		if c.UseCurrent {
			return "timestamp default current_timestamp"
		}
		return "timestamp"
	},
}

var mysqlModifiers = []func(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string{
	mysqlModifyUnsigned,
	mysqlModifyCharset,
	mysqlModifyCollate,
	mysqlModifyVirtualAs,
	mysqlModifyStoredAs,
	mysqlModifyNullable,
	mysqlModifyDefault,
	mysqlModifyOnUpdate,
	mysqlModifyInvisible,
	mysqlModifyIncrement,
	mysqlModifyComment,
	mysqlModifyAfter,
	mysqlModifyFirst,
}

func mysqlModifyUnsigned(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.Unsigned {
		return "unsigned"
	}
	return ""
}

func mysqlModifyCharset(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.Charset != "" {
		return "character set " + c.Charset
	}
	return ""
}

func mysqlModifyCollate(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.Collation != "" {
		return "collate " + g.QuoteIdentifier(c.Collation)
	}
	return ""
}

func mysqlModifyVirtualAs(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.VirtualAs != "" {
		return fmt.Sprintf("generated always as (%s) virtual", c.VirtualAs)
	}
	return ""
}

func mysqlModifyStoredAs(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.StoredAs != "" {
		return fmt.Sprintf("generated always as (%s) stored", c.StoredAs)
	}
	return ""
}

func mysqlModifyNullable(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.VirtualAs != "" || c.StoredAs != "" {
		if !c.Nullable {
			return "not null"
		}
		return ""
	}
	if c.Nullable {
		return "null"
	}
	return "not null"
}

func mysqlModifyDefault(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if lit := defaultLiteral(g, c); lit != "" {
		return "default " + lit
	}
	if c.UseCurrent && c.Type == "timestamp" {
		return "default current_timestamp"
	}
	return ""
}

func mysqlModifyOnUpdate(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.UseCurrentOnUpdate {
		return "on update current_timestamp"
	}
	return ""
}

func mysqlModifyInvisible(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.Invisible {
		return "invisible"
	}
	return ""
}

func mysqlModifyIncrement(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if !c.AutoIncrement {
		return ""
	}
	if hasPrimaryCommand(b) {
		return "auto_increment"
	}
	return "auto_increment primary key"
}

func mysqlModifyComment(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.Comment != "" {
		return "comment " + g.QuoteString(c.Comment)
	}
	return ""
}

func mysqlModifyAfter(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.After != "" {
		return "after " + g.Wrap(c.After, false)
	}
	return ""
}

func mysqlModifyFirst(g *SchemaGrammar, b *Blueprint, c *ColumnDefinition) string {
	if c.First {
		return "first"
	}
	return ""
}

func mysqlCompileCreate(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	defs := compileCreateColumns(g, b)
	for _, cmd := range b.Commands {
		if cmd.Name == "primary" {
			defs = append(defs, fmt.Sprintf("primary key (%s)", g.Columnize(toAny(cmd.Columns))))
			cmd.ShouldBeSkipped = true
		}
	}
	sql := fmt.Sprintf("create table %s (%s)", g.WrapTable(b.Table), strings.Join(defs, ", "))
	sql += " engine = " + engineOr(b.Engine, "innodb")
	charset := b.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	sql += " default character set " + charset
	if b.Collation != "" {
		sql += " collate " + b.Collation
	}
	return []string{sql}, nil
}

func engineOr(engine, fallback string) string {
	if engine != "" {
		return engine
	}
	return fallback
}

func mysqlCompileChange(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s %s %s", g.WrapTable(b.Table), g.changeColumnKeyword, g.columnDefinitionSQL(b, cmd.Column))}, nil
}

func mysqlCompileFulltext(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s add fulltext %s (%s)", g.WrapTable(b.Table), g.QuoteIdentifier(cmd.IndexName), g.Columnize(toAny(cmd.Columns)))}, nil
}

func mysqlCompileSpatialIndex(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s add spatial index %s (%s)", g.WrapTable(b.Table), g.QuoteIdentifier(cmd.IndexName), g.Columnize(toAny(cmd.Columns)))}, nil
}

func mysqlCompileDropPrimary(g *SchemaGrammar, b *Blueprint, cmd *Command) ([]string, error) {
	return []string{fmt.Sprintf("alter table %s drop primary key", g.WrapTable(b.Table))}, nil
}
