package connection

import (
	"context"
	"fmt"
)

// TransactionLevel reports the current transaction depth (0 when not
// inside a transaction).
func (c *Connection) TransactionLevel() int { return c.transactionDepth }

// WithinTransaction reports whether the connection is currently inside
// a transaction, letting a caller choose between operating directly
// and calling Transaction/BeginTransaction itself.
func (c *Connection) WithinTransaction() bool { return c.transactionDepth > 0 }

// BeginTransaction increments the transaction depth. On 0→1 the
// driver starts a real transaction; on n→n+1 (n≥1) a savepoint
// "trans{n+1}" is issued instead, per spec.md §4.8's depth state
// machine.
func (c *Connection) BeginTransaction(ctx context.Context) error {
	if c.transactionDepth == 0 {
		if _, err := c.Unprepared(ctx, "begin"); err != nil {
			return err
		}
		c.transactionDepth = 1
		return nil
	}
	c.transactionDepth++
	_, err := c.Unprepared(ctx, fmt.Sprintf("savepoint trans%d", c.transactionDepth))
	if err != nil {
		c.transactionDepth--
	}
	return err
}

// Commit decrements the transaction depth. On 1→0 the driver commits;
// on n+1→n the savepoint is released.
func (c *Connection) Commit(ctx context.Context) error {
	if c.transactionDepth == 1 {
		if _, err := c.Unprepared(ctx, "commit"); err != nil {
			return err
		}
		c.transactionDepth = 0
		return nil
	}
	if c.transactionDepth > 1 {
		level := c.transactionDepth
		c.transactionDepth--
		_, err := c.Unprepared(ctx, fmt.Sprintf("release savepoint trans%d", level))
		return err
	}
	return nil
}

// RollBack rolls back to toLevel (defaulting to depth-1): at the
// outermost level the driver rolls back the real transaction;
// otherwise it rolls back to the matching savepoint.
func (c *Connection) RollBack(ctx context.Context, toLevel ...int) error {
	level := c.transactionDepth - 1
	if len(toLevel) > 0 {
		level = toLevel[0]
	}
	if level < 0 || level >= c.transactionDepth {
		return nil
	}
	if level == 0 {
		if _, err := c.Unprepared(ctx, "rollback"); err != nil {
			return err
		}
		c.transactionDepth = 0
		return nil
	}
	if _, err := c.Unprepared(ctx, fmt.Sprintf("rollback to savepoint trans%d", level+1)); err != nil {
		return err
	}
	c.transactionDepth = level
	return nil
}

// Transaction runs fn inside a transaction, retrying up to attempts
// times when fn's error matches the deadlock predicate — but only
// when entered at depth 0, per spec.md §4.8. It commits on success
// and rolls back (to the level it started at) on failure or on
// exhausting its retries.
func (c *Connection) Transaction(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	retryable := c.transactionDepth == 0
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.BeginTransaction(ctx); err != nil {
			return err
		}
		if err := fn(ctx); err != nil {
			_ = c.RollBack(ctx)
			lastErr = err
			if retryable && defaultDeadlockPredicate(err) && attempt < attempts {
				continue
			}
			return err
		}
		if err := c.Commit(ctx); err != nil {
			lastErr = err
			if retryable && defaultDeadlockPredicate(err) && attempt < attempts {
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}
