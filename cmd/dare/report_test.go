package main

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjbrophy47/dare"
	"github.com/jjbrophy47/dare/dataset"
)

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.75, accuracy([]int{1, 0, 1, 1}, []int{1, 0, 0, 1}))
	assert.True(t, math.IsNaN(accuracy(nil, nil)))
}

func TestAUC(t *testing.T) {
	assert.InDelta(t, 1, auc([]float64{0.1, 0.2, 0.8, 0.9}, []int{0, 0, 1, 1}), 1e-12)
	assert.InDelta(t, 0, auc([]float64{0.1, 0.2, 0.8, 0.9}, []int{1, 1, 0, 0}), 1e-12)
	assert.InDelta(t, 0.25, auc([]float64{0.1, 0.35, 0.4, 0.8}, []int{1, 0, 1, 0}), 1e-12)
	assert.True(t, math.IsNaN(auc([]float64{0.3, 0.6}, []int{1, 1})))
}

func TestAUCKeepsScores(t *testing.T) {
	scores := []float64{0.9, 0.1, 0.5}
	auc(scores, []int{1, 0, 1})
	assert.Equal(t, []float64{0.9, 0.1, 0.5}, scores)
}

func TestEvaluateAndWriteStatistics(t *testing.T) {
	seed := int64(1)
	config := dare.DefaultConfig()
	config.RandomState = &seed
	dt, err := dare.NewTree(config)
	require.NoError(t, err)
	d := dataset.New([]string{"a", "b"}, "y")
	for _, r := range [][3]int{{0, 0, 0}, {0, 1, 0}, {1, 0, 1}, {1, 1, 1}} {
		require.NoError(t, d.Append([]int{r[0], r[1]}, r[2]))
	}
	require.NoError(t, dt.Fit(d.X, d.Y))

	e, err := evaluate(dt, d)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, e.accuracy, 0.0)
	assert.Contains(t, e.String(), "accuracy: ")

	require.NoError(t, dt.Delete([]int{0}))
	var b bytes.Buffer
	writeStatistics(&b, "tree", dt)
	assert.Contains(t, b.String(), "tree: ")
	assert.Contains(t, b.String(), "removal statistics: operations=1")
	assert.Contains(t, b.String(), "add statistics: operations=0")
}
