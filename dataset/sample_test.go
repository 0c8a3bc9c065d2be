package dataset

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstances(t *testing.T) {
	instances, err := Instances([][]int{{0, 1}, {1, 1}}, []int{1, 0}, 10, -1)
	require.NoError(t, err)
	assert.Equal(t, []Instance{
		{ID: 10, Features: []uint8{0, 1}, Label: 1},
		{ID: 11, Features: []uint8{1, 1}, Label: 0},
	}, instances)
	assert.Equal(t, uint8(1), instances[0].ValueFor(1))
}

func TestInstancesValidation(t *testing.T) {
	_, err := Instances([][]int{{0, 1}}, []int{1, 0}, 0, -1)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = Instances([][]int{{0, 1}, {1}}, []int{1, 0}, 0, -1)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = Instances([][]int{{0, 1}}, []int{1}, 0, 3)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = Instances([][]int{{0, 2}}, []int{1}, 0, -1)
	assert.True(t, errors.Is(err, ErrNonBinary))

	_, err = Instances([][]int{{0, 1}}, []int{-1}, 0, -1)
	assert.True(t, errors.Is(err, ErrNonBinary))
}

func TestRowsEmpty(t *testing.T) {
	rows, err := Rows(nil, 3)
	assert.NoError(t, err)
	assert.Empty(t, rows)
}
