package sql

import (
	"strconv"

	"github.com/aagamezl/lihtne-go/dialect"
)

// Processor post-processes driver results: today that is limited to
// extracting a newly-generated id after an insert, since Postgres,
// MySQL, and SQLite each report it differently (see
// ProcessInsertGetID). SQLite schema introspection for the legacy
// alter-rebuild path is handled directly by
// dialect/sql/schema.InspectSQLiteTable instead of through Processor.
type Processor struct {
	dialectName string
}

// NewProcessor returns a Processor for dialectName.
func NewProcessor(dialectName string) *Processor {
	return &Processor{dialectName: dialectName}
}

// ProcessInsertGetID extracts the generated id following an insert.
// Postgres already carries it in the row returned by the insert's
// RETURNING clause; MySQL/SQLite instead read it from the driver's last-insert
// id reported via lastID.
func (p *Processor) ProcessInsertGetID(returningRow map[string]any, keyName string, lastID int64) (int64, error) {
	if p.dialectName == dialect.Postgres {
		if returningRow == nil {
			return 0, nil
		}
		col := keyName
		if col == "" {
			col = "id"
		}
		return coerceInt64(returningRow[col])
	}
	return lastID, nil
}

func coerceInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, nil
	}
}
