package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
)

// Blueprint is the deferred schema-change AST for a single table:
// a list of columns plus a list of commands, compiled to DDL only
// once a SchemaGrammar walks it. Constructed fresh per migration
// operation, per spec.md §3.
type Blueprint struct {
	Table  string
	Prefix string

	Columns  []*ColumnDefinition
	Commands []*Command

	Engine    string
	Charset   string
	Collation string
	Temporary bool

	creating bool
}

// NewBlueprint returns an empty Blueprint for table.
func NewBlueprint(table string) *Blueprint {
	return &Blueprint{Table: table}
}

// Create marks this blueprint as a CREATE TABLE operation.
func (b *Blueprint) Create() *Blueprint {
	b.creating = true
	b.Commands = append([]*Command{newCommand("create")}, b.Commands...)
	return b
}

// IsCreating reports whether this blueprint creates a new table.
func (b *Blueprint) IsCreating() bool { return b.creating }

func (b *Blueprint) addColumn(def *ColumnDefinition) *ColumnDefinition {
	b.Columns = append(b.Columns, def)
	return def
}

// Increments adds an auto-incrementing unsigned integer primary key.
func (b *Blueprint) Increments(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "integer", Name: name, AutoIncrement: true, Unsigned: true})
}

// BigIncrements adds an auto-incrementing unsigned bigint primary key.
func (b *Blueprint) BigIncrements(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "bigInteger", Name: name, AutoIncrement: true, Unsigned: true})
}

// String adds a VARCHAR column, defaulting to length 255.
func (b *Blueprint) String(name string, length int) *ColumnDefinition {
	if length <= 0 {
		length = 255
	}
	return b.addColumn(&ColumnDefinition{Type: "string", Name: name, Length: length})
}

// Text adds a TEXT column.
func (b *Blueprint) Text(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "text", Name: name})
}

// Integer adds an INTEGER column.
func (b *Blueprint) Integer(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "integer", Name: name})
}

// BigInteger adds a BIGINT column.
func (b *Blueprint) BigInteger(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "bigInteger", Name: name})
}

// Boolean adds a BOOLEAN column.
func (b *Blueprint) Boolean(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "boolean", Name: name})
}

// Decimal adds a DECIMAL(total, places) column.
func (b *Blueprint) Decimal(name string, total, places int) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "decimal", Name: name, Total: total, Places: places})
}

// JSON adds a JSON column.
func (b *Blueprint) JSON(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "json", Name: name})
}

// UUID adds a UUID column.
func (b *Blueprint) UUID(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "uuid", Name: name})
}

// Enum adds an ENUM column restricted to allowed values.
func (b *Blueprint) Enum(name string, allowed []string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "enum", Name: name, Allowed: allowed})
}

// Date adds a DATE column.
func (b *Blueprint) Date(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "date", Name: name})
}

// DateTime adds a DATETIME/TIMESTAMP-without-timezone column.
func (b *Blueprint) DateTime(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "dateTime", Name: name})
}

// Timestamp adds a TIMESTAMP column.
func (b *Blueprint) Timestamp(name string) *ColumnDefinition {
	return b.addColumn(&ColumnDefinition{Type: "timestamp", Name: name})
}

// Timestamps adds nullable created_at/updated_at timestamp columns.
func (b *Blueprint) Timestamps() {
	b.Timestamp("created_at").SetNullable(true)
	b.Timestamp("updated_at").SetNullable(true)
}

// morphKeyTypes are the key types a polymorphic relation's "{name}_id"
// column may take, per spec.md §7's invalid-argument taxonomy.
var morphKeyTypes = map[string]bool{"int": true, "uuid": true, "ulid": true}

// Morphs adds the {name}_type/{name}_id column pair a polymorphic
// relation needs, plus an index covering both, following Laravel's
// morphs() helper. keyType selects the id column's storage: "int" for
// an unsigned big integer, "uuid" for a uuid column, "ulid" for a
// 26-character fixed string. Any other keyType fails with
// *sqlerr.InvalidArgumentError.
func (b *Blueprint) Morphs(name, keyType string) error {
	if !morphKeyTypes[keyType] {
		return sqlerr.NewInvalidArgument("keyType", fmt.Sprintf("morph key type must be one of int, uuid, ulid, got %q", keyType))
	}
	b.String(name+"_type", 0)
	switch keyType {
	case "int":
		b.BigInteger(name + "_id").SetUnsigned()
	case "uuid":
		b.UUID(name + "_id")
	case "ulid":
		b.String(name+"_id", 26)
	}
	b.IndexCmd([]string{name + "_type", name + "_id"}, name+"_index")
	return nil
}

// Primary adds an explicit composite primary-key command.
func (b *Blueprint) Primary(columns []string, name string) *Command {
	cmd := &Command{Name: "primary", Columns: columns, IndexName: name}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// UniqueIndex adds an explicit unique-index command.
func (b *Blueprint) UniqueIndex(columns []string, name string) *Command {
	cmd := &Command{Name: "unique", Columns: columns, IndexName: name}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// IndexCmd adds an explicit plain-index command.
func (b *Blueprint) IndexCmd(columns []string, name string) *Command {
	cmd := &Command{Name: "index", Columns: columns, IndexName: name}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// Foreign adds a foreign-key command.
func (b *Blueprint) Foreign(columns []string, refTable string, refColumns []string, name string) *Command {
	cmd := &Command{Name: "foreign", Columns: columns, IndexName: name, ReferencesTable: refTable, References: refColumns}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// DropColumn drops one or more columns.
func (b *Blueprint) DropColumn(columns ...string) *Command {
	cmd := &Command{Name: "dropColumn", Columns: columns}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// DropIndex drops a named index.
func (b *Blueprint) DropIndex(name string) *Command {
	cmd := &Command{Name: "dropIndex", IndexName: name}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// DropUnique drops a named unique index.
func (b *Blueprint) DropUnique(name string) *Command {
	cmd := &Command{Name: "dropUnique", IndexName: name}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// DropPrimary drops the table's primary key.
func (b *Blueprint) DropPrimary() *Command {
	cmd := &Command{Name: "dropPrimary"}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// DropForeign drops a named foreign key.
func (b *Blueprint) DropForeign(name string) *Command {
	cmd := &Command{Name: "dropForeign", IndexName: name}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// RenameColumn renames from to to.
func (b *Blueprint) RenameColumn(from, to string) *Command {
	cmd := &Command{Name: "renameColumn", From: from, To: to}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// Drop drops the whole table.
func (b *Blueprint) Drop() *Command {
	cmd := &Command{Name: "drop"}
	b.Commands = append(b.Commands, cmd)
	return cmd
}

// indexNameRe matches characters the default index-naming algorithm
// normalizes to underscores.
var indexNameRe = regexp.MustCompile(`[.\-]`)

// defaultIndexName implements spec.md §4.3's default naming algorithm:
// lower(prefix+table + "_" + cols.join("_") + "_" + kind) with "."/"-"
// normalized to "_".
func defaultIndexName(prefix, table string, columns []string, kind string) string {
	raw := fmt.Sprintf("%s%s_%s_%s", prefix, table, strings.Join(columns, "_"), kind)
	return strings.ToLower(indexNameRe.ReplaceAllString(raw, "_"))
}

// addImpliedCommands runs spec.md §4.3 step 1: it expands every
// column's fluent index flags and dialect-specific hooks into
// concrete Commands, and — for an alter blueprint — turns the
// remaining bare ColumnDefinition entries into add/change commands,
// placed ahead of every other command so a column exists before any
// index, comment or sequence statement refers to it.
func (b *Blueprint) addImpliedCommands(g *SchemaGrammar) {
	b.addFluentIndexes(g)
	g.addFluentCommands(b)
	if !b.creating {
		var columnCmds []*Command
		for _, col := range b.Columns {
			name := "add"
			if col.Change {
				name = "change"
			}
			columnCmds = append(columnCmds, &Command{Name: name, Column: col})
		}
		b.Commands = append(columnCmds, b.Commands...)
	}
	g.addAlterCommands(b)
}

func (b *Blueprint) addFluentIndexes(g *SchemaGrammar) {
	for _, col := range b.Columns {
		for _, spec := range []struct {
			flag *any
			kind string
		}{
			{&col.Primary, "primary"},
			{&col.Unique, "unique"},
			{&col.Index, "index"},
			{&col.Fulltext, "fulltext"},
			{&col.SpatialIndex, "spatialIndex"},
		} {
			if *spec.flag == nil {
				continue
			}
			if spec.kind == "primary" && col.AutoIncrement && col.Change && g.inlinesAutoIncrementPrimary() {
				*spec.flag = nil
				continue
			}
			switch v := (*spec.flag).(type) {
			case bool:
				if v {
					name := defaultIndexName(b.Prefix, b.Table, []string{col.Name}, spec.kind)
					b.Commands = append(b.Commands, &Command{Name: spec.kind, Columns: []string{col.Name}, IndexName: name})
				} else if col.Change {
					dropName := "drop" + strings.ToUpper(spec.kind[:1]) + spec.kind[1:]
					b.Commands = append(b.Commands, &Command{Name: dropName, Columns: []string{col.Name}})
				}
			case string:
				b.Commands = append(b.Commands, &Command{Name: spec.kind, Columns: []string{col.Name}, IndexName: v})
			}
			*spec.flag = nil
		}
	}
}

// ToSQL compiles this blueprint with g, returning the ordered DDL
// statement list per spec.md §4.3's algorithm.
func (b *Blueprint) ToSQL(g *SchemaGrammar) ([]string, error) {
	b.addImpliedCommands(g)

	var statements []string
	for _, cmd := range b.Commands {
		if cmd.ShouldBeSkipped {
			continue
		}
		stmts, err := g.Compile(b, cmd)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmts...)
	}
	return statements, nil
}
