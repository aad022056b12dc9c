package connection

import "time"

// QueryExecuted is dispatched once per operation, after it settles
// (success or a wrapped query-exception), per spec.md §5's ordering
// guarantee.
type QueryExecuted struct {
	Connection string
	SQL        string
	Bindings   []any
	Duration   time.Duration
}

// Dispatcher is a minimal single-event-type pub/sub: Connection fires
// QueryExecuted, and any number of listeners observe it in
// registration order. Kept local to this package rather than pulled
// in as a dependency — the teacher's event bus is purpose-built for
// ent's hook pipeline and doesn't fit a single fixed event type.
type Dispatcher struct {
	listeners []func(QueryExecuted)
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher { return &Dispatcher{} }

// Listen registers fn to be called on every future Dispatch.
func (d *Dispatcher) Listen(fn func(QueryExecuted)) {
	d.listeners = append(d.listeners, fn)
}

// Dispatch calls every registered listener, in registration order,
// with ev.
func (d *Dispatcher) Dispatch(ev QueryExecuted) {
	for _, fn := range d.listeners {
		fn(ev)
	}
}
