/*
Package csv reads datasets from CSV streams with a header row naming the
attributes and the label.
*/
package csv

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jjbrophy47/dare/dataset"
)

/*
ReadDataset takes an io.Reader for a CSV stream and the name of the label
column and returns the dataset parsed from it or an error.

The header or first row of the CSV content is expected to name the columns.
An empty label name selects the last column. Every other row must hold 0 or
1 on every column.
*/
func ReadDataset(reader io.Reader, label string) (*dataset.Dataset, error) {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	labelIndex, err := labelColumn(header, label)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(header)-1)
	for i, name := range header {
		if i != labelIndex {
			names = append(names, strings.TrimSpace(name))
		}
	}
	d := dataset.New(names, strings.TrimSpace(header[labelIndex]))
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading body")
		}
		x, y, err := parseRow(row, labelIndex)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing line %d", l)
		}
		err = d.Append(x, y)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing line %d", l)
		}
	}
	return d, nil
}

/*
ReadDatasetFromFilePath takes a file path and the name of the label column,
opens the file and uses ReadDataset to return the dataset in it. An empty
path reads from the standard input.
*/
func ReadDatasetFromFilePath(path, label string) (*dataset.Dataset, error) {
	var f *os.File
	var err error
	if path == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading dataset")
		}
	}
	defer f.Close()
	d, err := ReadDataset(f, label)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing CSV file %s", path)
	}
	return d, nil
}

func labelColumn(header []string, label string) (int, error) {
	if len(header) < 2 {
		return 0, errors.Errorf("parsing header: expected at least one attribute and a label, got %d columns", len(header))
	}
	if label == "" {
		return len(header) - 1, nil
	}
	for i, name := range header {
		if strings.TrimSpace(name) == label {
			return i, nil
		}
	}
	return 0, errors.Errorf("parsing header: label column %s not found", label)
}

func parseRow(row []string, labelIndex int) ([]int, int, error) {
	x := make([]int, 0, len(row)-1)
	var y int
	for i, v := range row {
		value, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, 0, errors.Wrapf(err, "column %d", i+1)
		}
		if i == labelIndex {
			y = value
		} else {
			x = append(x, value)
		}
	}
	return x, y, nil
}
