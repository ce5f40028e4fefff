package dialect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternmigrate/tern/internal/command"
	"github.com/ternmigrate/tern/internal/plan"
)

// End-to-end compilation scenarios, each run with a nil introspector
// (empty-schema mode) and an empty plan.

func TestMySQL_CreateTable_Plain(t *testing.T) {
	cmd := command.CreateTable{Table: "foo", Columns: []command.Column{{Name: "a", Tokens: []string{"INT"}}}}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE foo (a INT)"}, stmts)
}

func TestMySQL_CreateTable_WithPrimaryKey(t *testing.T) {
	cmd := command.CreateTable{
		Table:      "foo",
		Columns:    []command.Column{{Name: "a", Tokens: []string{"INT"}}},
		PrimaryKey: []string{"a"},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE foo (a INT, PRIMARY KEY (a))"}, stmts)
}

func TestMySQL_CreateTable_WithConstraint(t *testing.T) {
	cmd := command.CreateTable{
		Table:       "foo",
		Columns:     []command.Column{{Name: "a", Tokens: []string{"INT"}}},
		Constraints: []command.Constraint{{Name: "fk_a", Ref: "(a) REFERENCES foo(a)"}},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE foo (a INT, CONSTRAINT fk_a FOREIGN KEY (a) REFERENCES foo(a))"}, stmts)
}

func TestMySQL_InsertInto_MultipleRows(t *testing.T) {
	cmd := command.InsertInto{
		Table:  "foo",
		Values: [][]any{{1, 2, "foo"}, {3, 4, "bar"}},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{`INSERT INTO foo VALUES (1,2,"foo"),(3,4,"bar")`}, stmts)
}

func TestMySQL_AlterTable_OptionsAndConstraint(t *testing.T) {
	cmd := command.AlterTable{
		Table:          "foo",
		TableOptions:   []command.TableOption{{Name: "ROW_FORMAT", Value: "Compressed"}},
		AddConstraints: []command.Constraint{{Name: "fk_foo_bar", Ref: "(bar_id) REFERENCES bar(id)"}},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER TABLE foo ROW_FORMAT=Compressed",
		"ALTER TABLE foo ADD CONSTRAINT fk_foo_bar FOREIGN KEY (bar_id) REFERENCES bar(id)",
	}, stmts)
}

func TestSQLServer_AlterTable_OptionsAndConstraint(t *testing.T) {
	cmd := command.AlterTable{
		Table:          "foo",
		TableOptions:   []command.TableOption{{Name: "ROW_FORMAT", Value: "Compressed"}},
		AddConstraints: []command.Constraint{{Name: "fk_foo_bar", Ref: "(bar_id) REFERENCES bar(id)"}},
	}
	stmts, err := SQLServer{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER TABLE foo ADD CONSTRAINT fk_foo_bar FOREIGN KEY (bar_id) REFERENCES bar(id)",
		"ALTER TABLE foo ROW_FORMAT=Compressed",
	}, stmts)
}

func TestMySQL_CreateTable_PlaceholderExpansion(t *testing.T) {
	cmd := command.CreateTable{
		Table:        "foo",
		PrimaryKey:   []string{"a"},
		TableOptions: []command.TableOption{{Name: "ROW_FORMAT", Value: "Compressed"}},
		Columns: []command.Column{
			{Name: "a", Tokens: []string{"INT"}},
			{Name: "b", Tokens: []string{"INT"}},
		},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CREATE TABLE foo (__placeholder int)",
		"ALTER TABLE foo ROW_FORMAT=Compressed",
		"ALTER TABLE foo ADD COLUMN a INT",
		"ALTER TABLE foo ADD COLUMN b INT",
		"ALTER TABLE foo ADD PRIMARY KEY (a)",
		"ALTER TABLE foo DROP COLUMN __placeholder",
	}, stmts)
}

func TestSQLServer_EnumRewrite(t *testing.T) {
	cmd := command.CreateTable{
		Table:   "foo",
		Columns: []command.Column{{Name: "a", Tokens: []string{"ENUM('Hello','Goodbye')"}}},
	}
	stmts, err := SQLServer{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE foo (a VARCHAR(7) CHECK (a IN('Hello','Goodbye')))"}, stmts)
}

// Universal invariants, checked across backends.

func TestInvariant_SkipWhenPreexisting(t *testing.T) {
	cmd := command.CreateTable{Table: "foo", Columns: []command.Column{{Name: "a", Tokens: []string{"INT"}}}}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, alwaysExistsIntro{}, plan.New())
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestInvariant_PlainCreateTableSingleStatement(t *testing.T) {
	for _, c := range []Compiler{MySQL{}, PostgreSQL{}, H2V1{}, H2V2{}, SQLServer{}} {
		cmd := command.CreateTable{Table: "foo", Columns: []command.Column{{Name: "a", Tokens: []string{"INT"}}}}
		stmts, err := c.Compile(context.Background(), cmd, nil, plan.New())
		require.NoError(t, err)
		require.Len(t, stmts, 1, c.Name())
		assert.Contains(t, stmts[0], "CREATE TABLE")
	}
}

func TestInvariant_InsertIntoRowCount(t *testing.T) {
	cmd := command.InsertInto{Table: "foo", Values: [][]any{{1}, {2}, {3}}}
	stmts, err := PostgreSQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, 3, countOccurrences(stmts[0], "("))
}

func TestInvariant_PlanPreservesOrder(t *testing.T) {
	p := plan.New()
	cmds := []command.Command{
		command.DropTable{Table: "a"},
		command.DropTable{Table: "b"},
		command.DropTable{Table: "c"},
	}
	for _, c := range cmds {
		p.Append(c)
	}
	assert.Equal(t, len(cmds), p.Len())
	assert.Equal(t, cmds, p.Commands())
}

// alwaysExistsIntro reports every object as already existing, used to
// exercise the "pre-existing state satisfies the command" skip path.
type alwaysExistsIntro struct{}

func (alwaysExistsIntro) TableExists(context.Context, string) (bool, error)              { return true, nil }
func (alwaysExistsIntro) ColumnExists(context.Context, string, string) (bool, error)      { return true, nil }
func (alwaysExistsIntro) ColumnType(context.Context, string, string) (string, error)      { return "INT", nil }
func (alwaysExistsIntro) PrimaryKeyExists(context.Context, string) (bool, error)          { return true, nil }
func (alwaysExistsIntro) PrimaryKeyName(context.Context, string) (string, error)          { return "foo_pkey", nil }
func (alwaysExistsIntro) ForeignKeyExists(context.Context, string, string) (bool, error)  { return true, nil }
func (alwaysExistsIntro) IndexExists(context.Context, string, string) (bool, error)       { return true, nil }
func (alwaysExistsIntro) MatchingForeignKeys(context.Context, string, string, string, string) ([]string, error) {
	return nil, nil
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
