package sql

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Grammar is the base identifier/placeholder compiler shared by every
// dialect's QueryGrammar and embedded by it. It never compiles a full
// clause; that is QueryGrammar's job. Grammar only knows how to wrap
// identifiers, quote string literals, and emit/parse placeholders.
type Grammar struct {
	// openQuote/closeQuote bracket a wrapped identifier segment:
	// `"` / `"` for ANSI dialects, '`' / '`' for MySQL, '[' / ']' for
	// SQL Server.
	openQuote, closeQuote byte
	// tablePrefix is inserted into the last dotted segment of a table
	// name during WrapTable.
	tablePrefix string
	// dateFormat is the layout passed to time.Time.Format for binding
	// values and for substituteBindingsIntoRawSql.
	dateFormat string
	// wrapJSONPath renders a JSON path selector (column plus dotted
	// path segments) in the dialect's native syntax. Set by each
	// dialect's QueryGrammar constructor.
	wrapJSONPath func(column string, path []string) string
	// boolLiteral renders a bound boolean literal for
	// substituteBindingsIntoRawSql. nil keeps the ANSI true/false
	// default (Postgres); MySQL/SQLite override to "1"/"0".
	boolLiteral func(bool) string
}

func newGrammar(openQuote, closeQuote byte, dateFormat string) Grammar {
	return Grammar{openQuote: openQuote, closeQuote: closeQuote, dateFormat: dateFormat}
}

// NewGrammar builds a Grammar for external packages (schema's
// SchemaGrammar embeds one) that need the same identifier quoting a
// dialect's QueryGrammar uses without pulling in clause compilation.
func NewGrammar(openQuote, closeQuote byte, dateFormat string) Grammar {
	return newGrammar(openQuote, closeQuote, dateFormat)
}

// QuoteIdentifier wraps a single identifier segment verbatim, without
// dot-splitting. Used for values that may themselves contain dots (a
// collation name such as "nb_NO.utf8"), where Wrap's segment-splitting
// would be wrong.
func (g *Grammar) QuoteIdentifier(segment string) string {
	return g.quoteIdent(segment)
}

// GetDateFormat returns the dialect's binding date/time layout.
func (g *Grammar) GetDateFormat() string { return g.dateFormat }

// TablePrefix returns the configured table prefix.
func (g *Grammar) TablePrefix() string { return g.tablePrefix }

// SetTablePrefix sets the prefix inserted ahead of every table name.
func (g *Grammar) SetTablePrefix(prefix string) { g.tablePrefix = prefix }

// IsExpression reports whether value is a raw Expr that must be
// inlined verbatim rather than escaped or bound.
func (g *Grammar) IsExpression(value any) bool {
	_, ok := isExpression(value)
	return ok
}

// quoteIdent wraps a single identifier segment. "*" is never quoted.
func (g *Grammar) quoteIdent(segment string) string {
	if segment == "*" {
		return segment
	}
	var b strings.Builder
	b.WriteByte(g.openQuote)
	for i := 0; i < len(segment); i++ {
		if segment[i] == g.closeQuote {
			b.WriteByte(g.closeQuote)
		}
		b.WriteByte(segment[i])
	}
	b.WriteByte(g.closeQuote)
	return b.String()
}

// splitAlias splits "expr as alias" on a case-insensitive " as ",
// returning ("expr", "alias", true) when an alias is present.
func splitAlias(value string) (string, string, bool) {
	lower := strings.ToLower(value)
	idx := strings.Index(lower, " as ")
	if idx < 0 {
		return value, "", false
	}
	return value[:idx], value[idx+4:], true
}

// isJSONPath reports whether value contains a JSON "->" selector and,
// if so, splits it into the base column and dotted path segments.
func isJSONPath(value string) (column string, path []string, ok bool) {
	if !strings.Contains(value, "->") {
		return "", nil, false
	}
	parts := strings.Split(value, "->")
	column = parts[0]
	for _, p := range parts[1:] {
		path = append(path, strings.TrimPrefix(p, ">"))
	}
	return column, path, true
}

// Wrap renders value — a plain identifier, a dotted/aliased
// identifier, a JSON path selector, or an Expr — as dialect-quoted SQL.
// prefixAlias controls whether the table prefix is applied when value
// carries an alias (wrapping a table reference applies the prefix to
// the pre-alias segment only).
func (g *Grammar) Wrap(value any, prefixAlias bool) string {
	if e, ok := isExpression(value); ok {
		return getValue(e)
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	if expr, alias, hasAlias := splitAlias(s); hasAlias {
		return g.wrapAliased(expr, alias, prefixAlias)
	}
	if column, path, isJSON := isJSONPath(s); isJSON && g.wrapJSONPath != nil {
		return g.wrapJSONPath(g.wrapSegments(column, false), path)
	}
	return g.wrapSegments(s, prefixAlias)
}

func (g *Grammar) wrapAliased(expr, alias string, prefixAlias bool) string {
	wrapped := g.wrapSegments(expr, prefixAlias)
	return wrapped + " as " + g.quoteIdent(alias)
}

// wrapSegments quotes each dot-separated segment of value. When
// applyPrefix is set, the prefix is inserted ahead of the final
// segment, which for an undotted value is its only segment.
func (g *Grammar) wrapSegments(value string, applyPrefix bool) string {
	segments := strings.Split(value, ".")
	for i, seg := range segments {
		if applyPrefix && i == len(segments)-1 && g.tablePrefix != "" {
			seg = g.tablePrefix + seg
		}
		segments[i] = g.quoteIdent(seg)
	}
	return strings.Join(segments, ".")
}

// WrapTable wraps a table identifier, applying the configured prefix.
func (g *Grammar) WrapTable(value any) string {
	if e, ok := isExpression(value); ok {
		return getValue(e)
	}
	s, _ := value.(string)
	if expr, alias, hasAlias := splitAlias(s); hasAlias {
		return g.wrapSegments(expr, true) + " as " + g.quoteIdent(alias)
	}
	return g.wrapSegments(s, true)
}

// WrapArray wraps every element of values with Wrap.
func (g *Grammar) WrapArray(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = g.Wrap(v, true)
	}
	return out
}

// Columnize wraps and joins values with ", ".
func (g *Grammar) Columnize(values []any) string {
	return strings.Join(g.WrapArray(values), ", ")
}

// Parameter returns "?" unless value is an Expr, in which case its
// literal text is inlined and never bound.
func (g *Grammar) Parameter(value any) string {
	if e, ok := isExpression(value); ok {
		return getValue(e)
	}
	return "?"
}

// Parameterize returns one placeholder (or inlined literal) per value,
// comma-joined, in the same order the values will be bound.
func (g *Grammar) Parameterize(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = g.Parameter(v)
	}
	return strings.Join(parts, ", ")
}

// QuoteString quotes value as a SQL string literal, doubling embedded
// single quotes.
func (g *Grammar) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// SubstituteBindingsIntoRawSql scans sql left-to-right, replacing each
// unquoted "?" with a dialect-quoted literal of the matching binding.
// A doubled "??" is unescaped to a literal "?" and never consumes a
// binding (the pack's Postgres operators such as "?|" escape this way
// to avoid being mistaken for a placeholder). Quoted string bodies are
// skipped verbatim.
func (g *Grammar) SubstituteBindingsIntoRawSql(sql string, bindings []any) string {
	var b strings.Builder
	bi := 0
	inString := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case inString:
			b.WriteByte(c)
			if c == '\'' {
				inString = false
			}
		case c == '\'':
			inString = true
			b.WriteByte(c)
		case c == '?' && i+1 < len(sql) && sql[i+1] == '?':
			b.WriteByte('?')
			i++
		case c == '?':
			if bi < len(bindings) {
				b.WriteString(g.literalOf(bindings[bi]))
				bi++
			} else {
				b.WriteByte('?')
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// literalOf renders a single binding value as an inline SQL literal
// for substituteBindingsIntoRawSql/pretend-mode logging.
func (g *Grammar) literalOf(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case Expr:
		return string(val)
	case bool:
		return g.quoteBool(val)
	case string:
		return g.QuoteString(val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return formatInt(val)
	case float32, float64:
		return formatFloat(val)
	case time.Time:
		return g.QuoteString(val.Format(g.dateFormat))
	default:
		return g.QuoteString(fmt.Sprintf("%v", val))
	}
}

// quoteBool renders a boolean binding per dialect. The ANSI default
// (Postgres) keeps true/false; MySQL/SQLite override to 0/1 via
// boolLiteral.
func (g *Grammar) quoteBool(v bool) string {
	if g.boolLiteral != nil {
		return g.boolLiteral(v)
	}
	if v {
		return "true"
	}
	return "false"
}

func formatInt(v any) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int8:
		return strconv.FormatInt(int64(n), 10)
	case int16:
		return strconv.FormatInt(int64(n), 10)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint:
		return strconv.FormatUint(uint64(n), 10)
	case uint8:
		return strconv.FormatUint(uint64(n), 10)
	case uint16:
		return strconv.FormatUint(uint64(n), 10)
	case uint32:
		return strconv.FormatUint(uint64(n), 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	default:
		return "0"
	}
}

func formatFloat(v any) string {
	switch n := v.(type) {
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return "0"
	}
}

