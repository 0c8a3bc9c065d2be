package dare

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjbrophy47/dare/dataset"
)

func TestImpurity(t *testing.T) {
	assert.Equal(t, 0.5, Gini.Impurity([2]int{2, 2}))
	assert.Equal(t, 0.0, Gini.Impurity([2]int{4, 0}))
	assert.Equal(t, 0.0, Gini.Impurity([2]int{}))
	assert.Equal(t, 1.0, Entropy.Impurity([2]int{3, 3}))
	assert.Equal(t, 0.0, Entropy.Impurity([2]int{0, 3}))
}

func TestParseCriterion(t *testing.T) {
	c, err := ParseCriterion("Entropy")
	require.NoError(t, err)
	assert.Equal(t, Entropy, c)
	_, err = ParseCriterion("mse")
	assert.Error(t, err)
}

func TestBranchCounts(t *testing.T) {
	counts, branches := BranchCounts([]dataset.Instance{
		{Features: []uint8{1, 0, 1}, Label: 1},
		{Features: []uint8{1, 1, 0}, Label: 0},
		{Features: []uint8{0, 1, 1}, Label: 1},
	}, []int{0, 2})
	assert.Equal(t, [2]int{1, 2}, counts)
	assert.Equal(t, [][2]int{{1, 1}, {0, 2}}, branches)
}

func TestPartitionsSkipEmptyBranches(t *testing.T) {
	s := &Sampler{Epsilon: 1, Gamma: 0.1, Criterion: Gini}
	parts := s.Partitions([2]int{2, 2}, []int{0, 3, 5}, [][2]int{{0, 2}, {0, 0}, {2, 2}})
	require.Len(t, parts, 1)
	assert.Equal(t, Partition{Attribute: 0, Index: 0, Score: 0.5}, parts[0])
}

func TestSelectIsDeterministic(t *testing.T) {
	s := &Sampler{Epsilon: 0.1, Gamma: 0.1, Criterion: Gini}
	parts := []Partition{{Attribute: 0, Score: 0.1}, {Attribute: 1, Score: 0.3}, {Attribute: 2, Score: 0.2}}
	draw := func() []int {
		r := rand.New(rand.NewSource(42))
		var result []int
		for i := 0; i < 50; i++ {
			result = append(result, s.Select(r, parts, 30).Attribute)
		}
		return result
	}
	assert.Equal(t, draw(), draw())
	assert.Nil(t, s.Select(rand.New(rand.NewSource(1)), nil, 10))
}

func TestSelectLargeEpsilonIsGreedy(t *testing.T) {
	s := &Sampler{Epsilon: 1000, Gamma: 0.1, Criterion: Gini}
	parts := []Partition{{Attribute: 0, Score: 0.1}, {Attribute: 1, Score: 0.5}, {Attribute: 2, Score: 0.2}}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		assert.Equal(t, 1, s.Select(r, parts, 100).Attribute)
	}
}

func TestSelectSmallEpsilonIsNearUniform(t *testing.T) {
	s := &Sampler{Epsilon: 1e-9, Gamma: 0.1, Criterion: Entropy}
	parts := []Partition{{Attribute: 0, Score: 0.1}, {Attribute: 1, Score: 0.9}, {Attribute: 2, Score: 0.2}}
	r := rand.New(rand.NewSource(7))
	hits := make(map[int]int)
	for i := 0; i < 3000; i++ {
		hits[s.Select(r, parts, 100).Attribute]++
	}
	for a := 0; a < 3; a++ {
		assert.Greater(t, hits[a], 800)
	}
}

func TestUniformIgnoresScores(t *testing.T) {
	s := &Sampler{Epsilon: 1000, Gamma: 0.1, Criterion: Gini, TopD: 2}
	assert.True(t, s.Random(0))
	assert.True(t, s.Random(1))
	assert.False(t, s.Random(2))
	assert.Nil(t, s.Uniform(rand.New(rand.NewSource(1)), nil))

	parts := []Partition{{Attribute: 0, Score: 0.1}, {Attribute: 1, Score: 0.9}, {Attribute: 2, Score: 0.2}}
	r := rand.New(rand.NewSource(7))
	hits := make(map[int]int)
	for i := 0; i < 3000; i++ {
		hits[s.Uniform(r, parts).Attribute]++
	}
	for a := 0; a < 3; a++ {
		assert.Greater(t, hits[a], 800)
	}
}

func TestThreshold(t *testing.T) {
	s := &Sampler{Epsilon: 0.1, Gamma: 0.1}
	assert.Equal(t, 23, s.Threshold(1000))
	assert.Equal(t, 9, s.Threshold(10))
	assert.Equal(t, 0, s.Threshold(0))
	s.Gamma = 1
	assert.Equal(t, 0, s.Threshold(1000))
}

func TestThresholdIsMonotone(t *testing.T) {
	epsilons := []float64{0.01, 0.1, 0.5, 1, 10}
	gammas := []float64{0.01, 0.1, 0.5, 0.9, 1}
	counts := []int{1, 10, 100, 1000}
	threshold := func(e, g float64, n int) int {
		return (&Sampler{Epsilon: e, Gamma: g}).Threshold(n)
	}
	for _, g := range gammas {
		for _, n := range counts {
			for i := 1; i < len(epsilons); i++ {
				assert.LessOrEqual(t, threshold(epsilons[i], g, n), threshold(epsilons[i-1], g, n))
			}
		}
	}
	for _, e := range epsilons {
		for _, n := range counts {
			for i := 1; i < len(gammas); i++ {
				assert.LessOrEqual(t, threshold(e, gammas[i], n), threshold(e, gammas[i-1], n))
			}
		}
	}
	for _, e := range epsilons {
		for _, g := range gammas {
			for i := 1; i < len(counts); i++ {
				assert.GreaterOrEqual(t, threshold(e, g, counts[i]), threshold(e, g, counts[i-1]))
			}
		}
	}
}

func TestPruningStrategy(t *testing.T) {
	ps := &PruningStrategy{MaxDepth: 3, MinSupport: 4}
	assert.False(t, ps.Leaf(0, [2]int{2, 2}, 2))
	assert.True(t, ps.Leaf(3, [2]int{2, 2}, 2), "depth limit")
	assert.True(t, ps.Leaf(0, [2]int{0, 5}, 2), "pure")
	assert.True(t, ps.Leaf(0, [2]int{1, 2}, 2), "too few instances")
	assert.True(t, ps.Leaf(0, [2]int{2, 2}, 0), "no candidates")
	assert.True(t, ps.Leaf(0, [2]int{}, 2), "empty")
}
