package introspect

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestH2V1_TableExists_UppercasesName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT 1 FROM INFORMATION_SCHEMA.TABLES`).
		WithArgs("FOO").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	h := H2V1{DB: db}
	ok, err := h.TableExists(context.Background(), "foo")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestH2V1_MatchingForeignKeys_CrossReferences(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT FK_NAME FROM INFORMATION_SCHEMA.CROSS_REFERENCES`).
		WithArgs("FK", "FKCOL", "PK", "PKCOL").
		WillReturnRows(sqlmock.NewRows([]string{"FK_NAME"}).AddRow("FK_1"))

	h := H2V1{DB: db}
	names, err := h.MatchingForeignKeys(context.Background(), "fk", "fkcol", "pk", "pkcol")
	require.NoError(t, err)
	assert.Equal(t, []string{"FK_1"}, names)
}

func TestH2V2_MatchingForeignKeys_Joins(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT tc.CONSTRAINT_NAME`).
		WithArgs("FK", "FKCOL", "PK", "PKCOL").
		WillReturnRows(sqlmock.NewRows([]string{"CONSTRAINT_NAME"}).AddRow("FK_2"))

	h := H2V2{DB: db}
	names, err := h.MatchingForeignKeys(context.Background(), "fk", "fkcol", "pk", "pkcol")
	require.NoError(t, err)
	assert.Equal(t, []string{"FK_2"}, names)
}

func TestH2V2_PrimaryKeyExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT 1 FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS`).
		WithArgs("FOO").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	h := H2V2{DB: db}
	ok, err := h.PrimaryKeyExists(context.Background(), "foo")
	require.NoError(t, err)
	assert.False(t, ok)
}
