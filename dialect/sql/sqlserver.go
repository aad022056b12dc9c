package sql

import (
	"fmt"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
)

var sqlserverOperators = []string{
	"=", "<", ">", "<=", ">=", "<>", "!=", "!<", "!>",
	"like", "not like",
	"&", "|", "^",
}

// NewSQLServerQueryGrammar returns a QueryGrammar compiling for SQL
// Server. SQL Server has no JSON containment/key/fulltext operators
// comparable to the other dialects' native support, so those compile
// paths are left nil and surface as a *sqlerr.LogicError at compile
// time, per spec.md §4.2's "unsupported feature" contract.
func NewSQLServerQueryGrammar() *QueryGrammar {
	g := &QueryGrammar{
		Grammar:     newGrammar('[', ']', "2006-01-02 15:04:05.0000000"),
		dialectName: dialect.SQLServer,
		operators:   operatorSet(sqlserverOperators),
	}
	g.compileLock = sqlserverLock
	g.compileLimitOffset = sqlserverOffsetFetch
	g.insertVerb = func(ignore bool) string { return "insert into" }
	g.compileUpsert = sqlserverUpsert
	g.Grammar.boolLiteral = func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}
	return g
}

// quoteIdent brackets a segment, doubling an embedded closing bracket;
// Grammar.quoteIdent already escapes on closeQuote match so no override
// is required here (']' is doubled by the base implementation).

func sqlserverLock(strength LockStrength) string {
	switch strength {
	case LockForUpdate:
		return "with (updlock, rowlock)"
	case LockForShare:
		return "with (holdlock, rowlock)"
	default:
		return ""
	}
}

// sqlserverOffsetFetch renders the standard ANSI OFFSET/FETCH NEXT
// syntax SQL Server requires an explicit ORDER BY to accompany.
// Neither this function nor CompileSelect adds or checks for an
// ORDER BY, so a limit/offset without one is rejected by the server.
func sqlserverOffsetFetch(limit, offset *int) string {
	if limit == nil && offset == nil {
		return ""
	}
	off := 0
	if offset != nil {
		off = *offset
	}
	clause := fmt.Sprintf("offset %d rows", off)
	if limit != nil {
		clause += fmt.Sprintf(" fetch next %d rows only", *limit)
	}
	return clause
}

func sqlserverUpsert(g *QueryGrammar, b *Builder) (string, []any, error) {
	if len(b.upsertUnique) == 0 {
		return "", nil, sqlerr.NewInvalidArgument("upsert", "sqlserver upsert requires a conflict target")
	}
	if len(b.insertRows) != 1 {
		return "", nil, sqlerr.NewLogicError("upsert", "sqlserver upsert supports a single row via MERGE")
	}
	row := b.insertRows[0]
	cols := sortedKeys(row)
	update := b.upsertUpdate
	if len(update) == 0 {
		update = cols
	}

	var bindings []any
	sourceCols := make([]string, len(cols))
	for i, c := range cols {
		sourceCols[i] = g.Parameter(row[c]) + " as " + g.quoteIdent(c)
		if _, ok := isExpression(row[c]); !ok {
			bindings = append(bindings, row[c])
		}
	}

	uniqueSet := make(map[string]struct{}, len(b.upsertUnique))
	for _, c := range b.upsertUnique {
		uniqueSet[c] = struct{}{}
	}
	var onParts []string
	for _, c := range b.upsertUnique {
		onParts = append(onParts, "target."+g.Wrap(c, true)+" = source."+g.Wrap(c, true))
	}
	var sets []string
	for _, c := range update {
		if _, isUnique := uniqueSet[c]; isUnique {
			continue
		}
		sets = append(sets, "target."+g.Wrap(c, true)+" = source."+g.Wrap(c, true))
	}
	var insertCols, insertVals []string
	for _, c := range cols {
		insertCols = append(insertCols, g.Wrap(c, true))
		insertVals = append(insertVals, "source."+g.Wrap(c, true))
	}

	sql := fmt.Sprintf(
		"merge %s as target using (select %s) as source on (%s) when matched then update set %s when not matched then insert (%s) values (%s);",
		g.WrapTable(b.from), strings.Join(sourceCols, ", "), strings.Join(onParts, " and "),
		strings.Join(sets, ", "), strings.Join(insertCols, ", "), strings.Join(insertVals, ", "),
	)
	return sql, bindings, nil
}
