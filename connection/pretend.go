package connection

// Pretend runs cb with the Connection in dry-run mode: every
// operation's run() short-circuits before touching the driver,
// logging the statement (bindings already substituted) instead of
// executing it. Pretend returns the captured log and always restores
// normal execution afterward, even if cb panics-free but errors.
func (c *Connection) Pretend(cb func(conn *Connection) error) ([]LogEntry, error) {
	wasPretending, wasLogging := c.pretending, c.loggingQueries
	savedLog := c.log

	c.pretending, c.loggingQueries = true, true
	c.log = nil

	err := cb(c)

	captured := c.log
	c.pretending, c.loggingQueries = wasPretending, wasLogging
	c.log = savedLog

	return captured, err
}

// WithoutPretending temporarily restores real execution inside a
// Pretend block, runs cb, then re-enables pretend mode.
func (c *Connection) WithoutPretending(cb func(conn *Connection) error) error {
	if !c.pretending {
		return cb(c)
	}
	c.pretending = false
	defer func() { c.pretending = true }()
	return cb(c)
}

// recordPretend appends query (with its bindings substituted inline,
// per spec.md §4.5) to the log while pretending.
func (c *Connection) recordPretend(query string, bindings []any) {
	sql := query
	if c.QueryGrammar != nil {
		sql = c.QueryGrammar.SubstituteBindingsIntoRawSql(query, bindings)
	}
	c.log = append(c.log, LogEntry{SQL: sql, Bindings: bindings})
}
