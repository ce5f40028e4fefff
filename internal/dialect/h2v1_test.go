package dialect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternmigrate/tern/internal/command"
	"github.com/ternmigrate/tern/internal/plan"
)

func TestH2V1_CreateTable_StripsCharsetAndLengthSuffix(t *testing.T) {
	cmd := command.CreateTable{
		Table: "foo",
		Columns: []command.Column{
			{Name: "amount(10,2)", Tokens: []string{"DECIMAL", "CHARACTER SET utf8"}},
		},
	}
	stmts, err := H2V1{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE foo (amount DECIMAL)"}, stmts)
}

func TestH2V1_AlterTable_AddPrimaryKey_SkippedWhenPresent(t *testing.T) {
	cmd := command.AlterTable{Table: "foo", PrimaryKey: []string{"a"}}
	stmts, err := H2V1{}.Compile(context.Background(), cmd, alwaysExistsIntro{}, plan.New())
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestH2V1_AlterTable_AddPrimaryKey_EmittedWhenDroppedInSameAlter(t *testing.T) {
	cmd := command.AlterTable{
		Table:           "foo",
		DropConstraints: []string{command.PrimaryKeySentinel},
		PrimaryKey:      []string{"b"},
	}
	stmts, err := H2V1{}.Compile(context.Background(), cmd, alwaysExistsIntro{}, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER TABLE foo DROP PRIMARY KEY",
		"ALTER TABLE foo ADD PRIMARY KEY (b)",
	}, stmts)
}

func TestH2V1_AlterTable_AddPrimaryKey_EmittedWhenDroppedEarlierInPlan(t *testing.T) {
	cmd := command.AlterTable{Table: "foo", PrimaryKey: []string{"b"}}
	pl := plan.New()
	pl.Append(command.AlterTable{Table: "foo", DropConstraints: []string{command.PrimaryKeySentinel}})
	stmts, err := H2V1{}.Compile(context.Background(), cmd, alwaysExistsIntro{}, pl)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE foo ADD PRIMARY KEY (b)"}, stmts)
}

func TestH2V1_AlterTable_AddColumnsGrouped(t *testing.T) {
	cmd := command.AlterTable{
		Table: "foo",
		AddColumns: []command.Column{
			{Name: "a", Tokens: []string{"INT"}},
			{Name: "b", Tokens: []string{"INT"}},
		},
	}
	stmts, err := H2V1{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE foo ADD COLUMN (a INT, b INT)"}, stmts)
}

// dupFKIntro reports a pre-existing foreign key matching the tuple an
// added constraint also covers, exercising H2's auto-drop-duplicates path.
type dupFKIntro struct{ alwaysExistsIntro }

func (dupFKIntro) TableExists(context.Context, string) (bool, error) { return false, nil }
func (dupFKIntro) ForeignKeyExists(context.Context, string, string) (bool, error) {
	return false, nil
}
func (dupFKIntro) MatchingForeignKeys(context.Context, string, string, string, string) ([]string, error) {
	return []string{"fk_old"}, nil
}

func TestH2V1_AlterTable_AutoDropsDuplicateForeignKey(t *testing.T) {
	cmd := command.AlterTable{
		Table: "foo",
		AddConstraints: []command.Constraint{
			{Name: "fk_new", Ref: "(bar_id) REFERENCES bar(id)"},
		},
	}
	stmts, err := H2V1{}.Compile(context.Background(), cmd, dupFKIntro{}, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER TABLE foo DROP FOREIGN KEY fk_old",
		"ALTER TABLE foo ADD CONSTRAINT fk_new FOREIGN KEY (bar_id) REFERENCES bar(id)",
	}, stmts)
}
