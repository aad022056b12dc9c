package schema

import (
	"context"
	"database/sql"
	"fmt"

	atlasschema "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"
)

// InspectSQLiteTable introspects table's current column set through
// atlas's sqlite driver and returns it as a Blueprint seeded with one
// ColumnDefinition per existing column. A pre-3.35 legacy rebuild
// (sqliteCompileRebuild) needs this pre-image: SQLite before 3.35 can
// only add/drop/rename a column by recreating the table around its
// full column set, not just the delta the caller's Blueprint describes.
func InspectSQLiteTable(ctx context.Context, db *sql.DB, table string) (*Blueprint, error) {
	drv, err := sqlite.Open(db)
	if err != nil {
		return nil, err
	}
	sch, err := drv.InspectSchema(ctx, "", &atlasschema.InspectOptions{Tables: []string{table}})
	if err != nil {
		return nil, err
	}
	t, ok := sch.Table(table)
	if !ok {
		return nil, fmt.Errorf("lihtne: table %q not found", table)
	}
	bp := NewBlueprint(table)
	for _, col := range t.Columns {
		bp.Columns = append(bp.Columns, columnFromAtlas(col))
	}
	return bp, nil
}

// columnFromAtlas maps an atlas column's introspected type name onto
// this package's closed set of ColumnDefinition.Type values. Types
// outside that set (an extension type atlas doesn't normalize) are
// carried through verbatim so compileCreateColumns's type-compiler
// fallback still renders something, rather than failing outright.
func columnFromAtlas(col *atlasschema.Column) *ColumnDefinition {
	def := &ColumnDefinition{Name: col.Name, Nullable: col.Type.Null}
	switch t := col.Type.Type.(type) {
	case *atlasschema.IntegerType:
		if t.T == "bigint" {
			def.Type = "bigInteger"
		} else {
			def.Type = "integer"
		}
		def.Unsigned = t.Unsigned
	case *atlasschema.StringType:
		def.Type = "string"
		def.Length = t.Size
	case *atlasschema.BoolType:
		def.Type = "boolean"
	case *atlasschema.DecimalType:
		def.Type = "decimal"
		def.Precision, def.Places = t.Precision, t.Scale
	case *atlasschema.TimeType:
		def.Type = "dateTime"
	default:
		def.Type = col.Type.Raw
	}
	if col.Default != nil {
		if lit, ok := col.Default.(*atlasschema.Literal); ok {
			def.Default, def.DefaultIsExpr = lit.V, true
		}
	}
	return def
}
