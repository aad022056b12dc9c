package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFluentPrimaryInferenceProducesSingleCommand(t *testing.T) {
	b := NewBlueprint("users")
	b.Create()
	b.Increments("id")
	b.String("email", 0).SetPrimary(true)

	g := NewMySQLSchemaGrammar()
	b.addImpliedCommands(g)

	var primaries []*Command
	for _, cmd := range b.Commands {
		if cmd.Name == "primary" {
			primaries = append(primaries, cmd)
		}
	}
	require.Len(t, primaries, 1)
	require.Equal(t, []string{"email"}, primaries[0].Columns)

	for _, col := range b.Columns {
		require.Nil(t, col.Primary, "inline primary flag must be cleared once promoted to a command")
	}
}

func TestMorphsValidatesKeyType(t *testing.T) {
	b := NewBlueprint("comments")
	require.Error(t, b.Morphs("commentable", "string"))
}

func TestMorphsIntAddsTypeAndUnsignedID(t *testing.T) {
	b := NewBlueprint("comments")
	require.NoError(t, b.Morphs("commentable", "int"))

	require.Len(t, b.Columns, 2)
	require.Equal(t, "commentable_type", b.Columns[0].Name)
	require.Equal(t, "string", b.Columns[0].Type)
	require.Equal(t, "commentable_id", b.Columns[1].Name)
	require.Equal(t, "bigInteger", b.Columns[1].Type)
	require.True(t, b.Columns[1].Unsigned)

	require.Len(t, b.Commands, 1)
	require.Equal(t, "index", b.Commands[0].Name)
	require.Equal(t, []string{"commentable_type", "commentable_id"}, b.Commands[0].Columns)
}

func TestMorphsUUIDAddsUUIDColumn(t *testing.T) {
	b := NewBlueprint("comments")
	require.NoError(t, b.Morphs("commentable", "uuid"))
	require.Equal(t, "uuid", b.Columns[1].Type)
}

func TestCreateTablePostgres(t *testing.T) {
	b := NewBlueprint("users")
	b.Create()
	b.Increments("id")
	b.String("email", 0)
	b.String("name", 0).SetCollation("nb_NO.utf8")

	stmts, err := b.ToSQL(NewPostgresSchemaGrammar())
	require.NoError(t, err)
	require.Equal(t, []string{
		`create table "users" ("id" serial not null primary key, "email" varchar(255) not null, "name" varchar(255) collate "nb_NO.utf8" not null)`,
	}, stmts)
}

func TestAddColumnsPostgres(t *testing.T) {
	b := NewBlueprint("users")
	b.Increments("id")
	b.String("email", 0)

	stmts, err := b.ToSQL(NewPostgresSchemaGrammar())
	require.NoError(t, err)
	require.Equal(t, []string{
		`alter table "users" add column "id" serial not null primary key`,
		`alter table "users" add column "email" varchar(255) not null`,
	}, stmts)
}

func TestAutoIncrementStartingValuePostgres(t *testing.T) {
	b := NewBlueprint("users")
	b.Create()
	b.Increments("id").SetStartingValue(1000)
	b.String("email", 0)

	stmts, err := b.ToSQL(NewPostgresSchemaGrammar())
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	require.Equal(t, "alter sequence users_id_seq restart with 1000", stmts[1])
}

func TestCommentOnColumnPostgres(t *testing.T) {
	b := NewBlueprint("users")
	b.String("email", 0).SetComment("my first comment")

	stmts, err := b.ToSQL(NewPostgresSchemaGrammar())
	require.NoError(t, err)
	require.Contains(t, stmts, `comment on column "users"."email" is 'my first comment'`)
}

func TestSQLiteUnsupportedAlterPrimaryIsLogicError(t *testing.T) {
	b := NewBlueprint("users")
	b.Primary([]string{"id"}, "users_pk")

	_, err := b.ToSQL(NewSQLiteSchemaGrammar())
	require.Error(t, err)
}
