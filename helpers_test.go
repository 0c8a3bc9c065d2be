package dare

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

/*
synthetic returns n rows of width binary attributes drawn from the given
seed, labelled x0 OR (x1 AND x2) with one label in ten flipped.
*/
func synthetic(seed int64, n, width int) ([][]int, []int) {
	r := rand.New(rand.NewSource(seed))
	X := make([][]int, n)
	y := make([]int, n)
	for i := range X {
		X[i] = make([]int, width)
		for j := range X[i] {
			X[i][j] = r.Intn(2)
		}
		if X[i][0] == 1 || (X[i][1] == 1 && X[i][2] == 1) {
			y[i] = 1
		}
		if r.Float64() < 0.1 {
			y[i] = 1 - y[i]
		}
	}
	return X, y
}

func seeded(config Config, seed int64) Config {
	config.RandomState = &seed
	return config
}

func accuracyOf(t *testing.T, predict func([][]int) ([]int, error), X [][]int, y []int) float64 {
	labels, err := predict(X)
	require.NoError(t, err)
	var hits int
	for i, l := range labels {
		if l == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(y))
}
