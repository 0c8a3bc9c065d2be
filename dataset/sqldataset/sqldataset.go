package sqldataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/jjbrophy47/dare/dataset"
)

/*
Adapter is an interface providing the database handle and the identifier
quoting needed to read datasets from a database.
*/
type Adapter interface {
	DB() *sql.DB
	// QuoteIdentifier takes a table or column name and returns it quoted
	// for use in a statement, or an error if it cannot be used safely.
	QuoteIdentifier(string) (string, error)
	Close() error
}

/*
Read takes a context, an adapter, a table name and the name of its label
column and returns the dataset held by the table. Every other column is
taken as an attribute, in table order. NULL values are rejected.
*/
func Read(ctx context.Context, a Adapter, table, label string) (*dataset.Dataset, error) {
	qt, err := a.QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}
	rows, err := a.DB().QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", qt))
	if err != nil {
		return nil, errors.Wrapf(err, "querying table %s", table)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrapf(err, "listing columns of table %s", table)
	}
	labelIndex := -1
	var names []string
	for i, c := range columns {
		if c == label {
			labelIndex = i
		} else {
			names = append(names, c)
		}
	}
	if labelIndex < 0 {
		return nil, errors.Errorf("table %s has no label column %s", table, label)
	}
	d := dataset.New(names, label)
	values := make([]sql.NullInt64, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for r := 1; rows.Next(); r++ {
		err = rows.Scan(dest...)
		if err != nil {
			return nil, errors.Wrapf(err, "scanning row %d of table %s", r, table)
		}
		x := make([]int, 0, len(names))
		var y int
		for i, v := range values {
			if !v.Valid {
				return nil, errors.Errorf("row %d of table %s: column %s is NULL", r, table, columns[i])
			}
			if i == labelIndex {
				y = int(v.Int64)
			} else {
				x = append(x, int(v.Int64))
			}
		}
		err = d.Append(x, y)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d of table %s", r, table)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading table %s", table)
	}
	return d, nil
}
