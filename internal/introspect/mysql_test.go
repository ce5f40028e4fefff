package introspect

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQL_TableExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT 1 FROM information_schema.tables`).
		WithArgs("foo").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	m := MySQL{DB: db}
	ok, err := m.TableExists(context.Background(), "foo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_TableExists_False(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT 1 FROM information_schema.tables`).
		WithArgs("foo").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	m := MySQL{DB: db}
	ok, err := m.TableExists(context.Background(), "foo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMySQL_ColumnType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT UPPER\(data_type\) FROM information_schema.columns`).
		WithArgs("foo", "a").
		WillReturnRows(sqlmock.NewRows([]string{"data_type"}).AddRow("TEXT"))

	m := MySQL{DB: db}
	ty, err := m.ColumnType(context.Background(), "foo", "a")
	require.NoError(t, err)
	assert.Equal(t, "TEXT", ty)
}

func TestMySQL_MatchingForeignKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT constraint_name FROM information_schema.key_column_usage`).
		WithArgs("fk", "fkcol", "pk", "pkcol").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name"}).AddRow("fk_1").AddRow("fk_2"))

	m := MySQL{DB: db}
	names, err := m.MatchingForeignKeys(context.Background(), "fk", "fkcol", "pk", "pkcol")
	require.NoError(t, err)
	assert.Equal(t, []string{"fk_1", "fk_2"}, names)
}
