package dataset

import (
	"fmt"

	"github.com/pkg/errors"
)

/*
Instance represents an item to learn from or to predict: a fixed-width
vector of binary attribute values, a binary label and an identifier that
stays stable for the whole life of a model, so that a deletion always
targets the exact instance that was added.
*/
type Instance struct {
	ID       int
	Features []uint8
	Label    uint8
}

// ValueFor returns the value the instance takes for the given attribute.
func (i Instance) ValueFor(attribute int) uint8 {
	return i.Features[attribute]
}

func (i Instance) String() string {
	return fmt.Sprintf("[%d %v -> %d]", i.ID, i.Features, i.Label)
}

// Error is the type of the validation errors returned by this package.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrShapeMismatch is returned when the rows of a matrix do not have
	// the expected width or the number of rows and labels differ.
	ErrShapeMismatch = Error("shape mismatch")
	// ErrNonBinary is returned when an attribute value or label is not 0 or 1.
	ErrNonBinary = Error("value is not binary")
)

/*
Instances takes a matrix of attribute values, a vector of labels, the
identifier to assign to the first row and the expected row width and
returns the rows as instances with consecutive identifiers.
A negative width means the width is taken from the first row.
ErrShapeMismatch is returned when the row count differs from the label
count or a row has a different width, and ErrNonBinary when a value is
not 0 or 1. Nothing is returned unless every row is valid.
*/
func Instances(X [][]int, y []int, firstID int, width int) ([]Instance, error) {
	if len(X) != len(y) {
		return nil, errors.Wrapf(ErrShapeMismatch, "%d rows and %d labels", len(X), len(y))
	}
	rows, err := Rows(X, width)
	if err != nil {
		return nil, err
	}
	instances := make([]Instance, len(rows))
	for i, row := range rows {
		label, err := binary(y[i])
		if err != nil {
			return nil, errors.Wrapf(err, "label of row %d", i)
		}
		instances[i] = Instance{ID: firstID + i, Features: row, Label: label}
	}
	return instances, nil
}

/*
Rows takes a matrix of attribute values and the expected row width and
returns the rows converted to binary vectors or an error if any row has
a different width or a non binary value. A negative width means the width
is taken from the first row.
*/
func Rows(X [][]int, width int) ([][]uint8, error) {
	if width < 0 && len(X) > 0 {
		width = len(X[0])
	}
	rows := make([][]uint8, len(X))
	for i, x := range X {
		if len(x) != width {
			return nil, errors.Wrapf(ErrShapeMismatch, "row %d has %d attributes, expected %d", i, len(x), width)
		}
		row := make([]uint8, width)
		for j, v := range x {
			b, err := binary(v)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d attribute %d", i, j)
			}
			row[j] = b
		}
		rows[i] = row
	}
	return rows, nil
}

func binary(v int) (uint8, error) {
	if v != 0 && v != 1 {
		return 0, errors.Wrapf(ErrNonBinary, "got %d", v)
	}
	return uint8(v), nil
}
