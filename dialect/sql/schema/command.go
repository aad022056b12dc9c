package schema

// Command is a tagged record describing one deferred schema operation
// (create, add, change, an index command, a rename, a drop, …),
// replacing the Fluent attribute-bag used by the original for blueprint
// commands with a concrete struct per spec.md §9's redesign note.
type Command struct {
	Name string

	// Columns names the column list an index/foreign-key/drop-columns
	// command applies to.
	Columns []string
	// IndexName is the explicit or auto-generated index/constraint name.
	IndexName string
	// Algorithm names an index method (btree, hash, gin, gist, …).
	Algorithm string

	// Column carries the ColumnDefinition for add/change/comment/
	// autoIncrementStartingValues commands.
	Column *ColumnDefinition

	// References/OnDelete/OnUpdate describe a foreign key command.
	References     []string
	ReferencesTable string
	OnDelete       string
	OnUpdate       string

	// From/To name a rename's source and destination.
	From string
	To   string

	ShouldBeSkipped bool
}

func newCommand(name string) *Command {
	return &Command{Name: name}
}
