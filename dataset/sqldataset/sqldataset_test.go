package sqldataset

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAdapter struct {
	db *sql.DB
}

func (a *mockAdapter) DB() *sql.DB {
	return a.db
}

func (a *mockAdapter) QuoteIdentifier(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty identifier")
	}
	return fmt.Sprintf(`"%s"`, name), nil
}

func (a *mockAdapter) Close() error {
	return a.db.Close()
}

func newMock(t *testing.T) (*mockAdapter, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return &mockAdapter{db}, mock
}

func TestRead(t *testing.T) {
	a, mock := newMock(t)
	defer a.Close()
	mock.ExpectQuery(`SELECT \* FROM "train"`).WillReturnRows(
		sqlmock.NewRows([]string{"x0", "y", "x1"}).
			AddRow(int64(0), int64(1), int64(1)).
			AddRow(int64(1), int64(0), int64(0)),
	)

	d, err := Read(context.Background(), a, "train", "y")
	require.NoError(t, err)
	assert.Equal(t, []string{"x0", "x1"}, d.Names)
	assert.Equal(t, "y", d.Label)
	assert.Equal(t, [][]int{{0, 1}, {1, 0}}, d.X)
	assert.Equal(t, []int{1, 0}, d.Y)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadRejectsNull(t *testing.T) {
	a, mock := newMock(t)
	defer a.Close()
	mock.ExpectQuery(`SELECT \* FROM "train"`).WillReturnRows(
		sqlmock.NewRows([]string{"x0", "y"}).
			AddRow(int64(0), int64(1)).
			AddRow(nil, int64(0)),
	)

	_, err := Read(context.Background(), a, "train", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "NULL")
}

func TestReadMissingLabel(t *testing.T) {
	a, mock := newMock(t)
	defer a.Close()
	mock.ExpectQuery(`SELECT \* FROM "train"`).WillReturnRows(
		sqlmock.NewRows([]string{"x0", "x1"}).AddRow(int64(0), int64(1)),
	)

	_, err := Read(context.Background(), a, "train", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no label column y")
}

func TestReadQueryError(t *testing.T) {
	a, mock := newMock(t)
	defer a.Close()
	mock.ExpectQuery(`SELECT \* FROM "train"`).WillReturnError(fmt.Errorf("no such table"))

	_, err := Read(context.Background(), a, "train", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying table train")

	_, err = Read(context.Background(), a, "", "y")
	assert.Error(t, err)
}
