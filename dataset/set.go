package dataset

import (
	"math"

	"github.com/pkg/errors"
)

/*
Dataset is a named, integer-encoded binary dataset as produced by the
readers in the subpackages: a matrix X with one column per attribute,
a label vector Y and the names of the attributes and of the label.

It is the boundary between data acquisition and the learners, which
consume X and Y directly.
*/
type Dataset struct {
	Names []string
	Label string
	X     [][]int
	Y     []int
}

/*
New takes the attribute names and the label name and returns an empty
dataset for them.
*/
func New(names []string, label string) *Dataset {
	return &Dataset{Names: names, Label: label}
}

/*
Append takes a row of attribute values and a label and adds them to the
dataset, or returns an error if the row does not have one value per
attribute or a value is not binary.
*/
func (d *Dataset) Append(x []int, y int) error {
	if len(x) != len(d.Names) {
		return errors.Wrapf(ErrShapeMismatch, "row has %d values for %d attributes", len(x), len(d.Names))
	}
	for j, v := range x {
		if _, err := binary(v); err != nil {
			return errors.Wrapf(err, "attribute %s", d.Names[j])
		}
	}
	if _, err := binary(y); err != nil {
		return errors.Wrapf(err, "label %s", d.Label)
	}
	d.X = append(d.X, x)
	d.Y = append(d.Y, y)
	return nil
}

// Count returns the number of rows in the dataset.
func (d *Dataset) Count() int {
	return len(d.Y)
}

// CountLabels returns how many rows have label 0 and label 1.
func (d *Dataset) CountLabels() [2]int {
	var counts [2]int
	for _, y := range d.Y {
		counts[y]++
	}
	return counts
}

/*
Entropy returns the entropy of the label distribution of the dataset:
a measure of the disinformation we have on the labels of its rows.
*/
func (d *Dataset) Entropy() float64 {
	counts := d.CountLabels()
	total := float64(counts[0] + counts[1])
	var result float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		result -= p * math.Log(p)
	}
	return result
}

/*
Subset takes a slice of row indices and returns a dataset with those rows
in the given order. Rows are shared with the receiver, not copied.
*/
func (d *Dataset) Subset(rows []int) *Dataset {
	result := New(d.Names, d.Label)
	result.X = make([][]int, 0, len(rows))
	result.Y = make([]int, 0, len(rows))
	for _, i := range rows {
		result.X = append(result.X, d.X[i])
		result.Y = append(result.Y, d.Y[i])
	}
	return result
}
