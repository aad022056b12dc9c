package sql

// Expr wraps a raw SQL fragment that must never be escaped, quoted, or
// bound as a placeholder value. It is the toolkit's Expression: the
// only way to inject literal SQL into an otherwise-parameterized
// builder or column default.
type Expr string

// Expression returns a new Expr wrapping value.
func Expression(value string) Expr { return Expr(value) }

// Raw is an alias for Expression, matching the fluent call sites
// (sql.Raw("now()")) used throughout the builder API.
func Raw(value string) Expr { return Expr(value) }

func (e Expr) expression() {}

// expressioner is implemented only by Expr; isExpression uses it
// instead of duck-typing so the check can never silently misfire on an
// unrelated string-backed type.
type expressioner interface {
	expression()
}

// isExpression reports whether value is an Expr.
func isExpression(value any) (Expr, bool) {
	e, ok := value.(expressioner)
	if !ok {
		return "", false
	}
	return e.(Expr), true
}

// getValue returns the string literal for value: if value is an Expr,
// its raw text; otherwise the stringified value is not meaningful and
// getValue should not be called — callers check isExpression first.
func getValue(e Expr) string { return string(e) }
