package dialect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternmigrate/tern/internal/command"
	"github.com/ternmigrate/tern/internal/plan"
)

func TestMySQL_AlterTable_CharsetConvert(t *testing.T) {
	cmd := command.AlterTable{
		Table:   "foo",
		Charset: &command.Charset{Name: "utf8mb4", Collation: "utf8mb4_bin"},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE foo CONVERT TO CHARACTER SET utf8mb4 COLLATE utf8mb4_bin"}, stmts)
}

func TestMySQL_AlterTable_CharsetWithoutCollation(t *testing.T) {
	cmd := command.AlterTable{
		Table:   "foo",
		Charset: &command.Charset{Name: "latin1"},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE foo CONVERT TO CHARACTER SET latin1"}, stmts)
}

func TestMySQL_AlterTable_DropForeignKeyAndPrimaryKey(t *testing.T) {
	cmd := command.AlterTable{
		Table:           "foo",
		DropConstraints: []string{"fk_foo_bar", command.PrimaryKeySentinel},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, alwaysExistsIntro{}, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER TABLE foo DROP FOREIGN KEY fk_foo_bar",
		"ALTER TABLE foo DROP PRIMARY KEY",
	}, stmts)
}

func TestMySQL_AlterTable_ModifyColumn(t *testing.T) {
	cmd := command.AlterTable{
		Table:         "foo",
		ModifyColumns: []command.Column{{Name: "a", Tokens: []string{"BIGINT", "NOT NULL"}}},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE foo MODIFY COLUMN a BIGINT NOT NULL"}, stmts)
}

func TestMySQL_AlterTable_AddColumnSkippedWhenExists(t *testing.T) {
	cmd := command.AlterTable{
		Table:      "foo",
		AddColumns: []command.Column{{Name: "a", Tokens: []string{"INT"}}},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, alwaysExistsIntro{}, plan.New())
	require.NoError(t, err)
	assert.Empty(t, stmts)

	// The same add must be emitted when a prior step in this migration
	// dropped the column.
	pl := plan.New()
	pl.Append(command.AlterTable{Table: "foo", DropColumns: []string{"a"}})
	stmts, err = MySQL{}.Compile(context.Background(), cmd, alwaysExistsIntro{}, pl)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE foo ADD COLUMN a INT"}, stmts)
}

func TestMySQL_AlterTable_DropColumnSkippedWhenMissing(t *testing.T) {
	cmd := command.AlterTable{Table: "foo", DropColumns: []string{"a"}}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestMySQL_CreateTable_SkipSuppressedAfterPlanDrop(t *testing.T) {
	cmd := command.CreateTable{Table: "foo", Columns: []command.Column{{Name: "a", Tokens: []string{"INT"}}}}
	pl := plan.New()
	pl.Append(command.DropTable{Table: "foo"})
	stmts, err := MySQL{}.Compile(context.Background(), cmd, alwaysExistsIntro{}, pl)
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE foo (a INT)"}, stmts)
}

func TestMySQL_InsertInto_Query(t *testing.T) {
	cmd := command.InsertInto{Table: "foo", Query: "SELECT a, b FROM bar"}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT INTO foo SELECT a, b FROM bar"}, stmts)
}

func TestMySQL_InsertInto_EmptyFails(t *testing.T) {
	cmd := command.InsertInto{Table: "foo"}
	_, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, command.ErrValidation)
}

func TestMySQL_Update_OverrideAndFallback(t *testing.T) {
	cmd := command.Update{
		Query:     "UPDATE foo SET a = 1",
		Overrides: map[string]string{"mysql": "UPDATE foo SET a = 1 LIMIT 1"},
	}
	stmts, err := MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"UPDATE foo SET a = 1 LIMIT 1"}, stmts)

	cmd.Overrides = nil
	stmts, err = MySQL{}.Compile(context.Background(), cmd, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"UPDATE foo SET a = 1"}, stmts)
}

func TestMySQL_Update_EmptyFails(t *testing.T) {
	_, err := MySQL{}.Compile(context.Background(), command.Update{}, nil, plan.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, command.ErrValidation)
}

func TestMySQL_DropTable(t *testing.T) {
	stmts, err := MySQL{}.Compile(context.Background(), command.DropTable{Table: "old-data"}, nil, plan.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"DROP TABLE old_data"}, stmts)
}
