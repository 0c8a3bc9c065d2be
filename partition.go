package dare

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/jjbrophy47/dare/dataset"
)

// Criterion is the impurity measure partitions are scored with.
type Criterion string

// Available criteria
const (
	Gini    = Criterion("gini")
	Entropy = Criterion("entropy")
)

// ParseCriterion takes the name of a criterion and returns it or an error.
func ParseCriterion(name string) (Criterion, error) {
	switch c := Criterion(strings.ToLower(name)); c {
	case Gini, Entropy:
		return c, nil
	}
	return "", fmt.Errorf("unknown criterion %q, expected gini or entropy", name)
}

// Impurity returns the impurity of a set of instances with the given label tallies.
func (c Criterion) Impurity(counts [2]int) float64 {
	n := float64(counts[0] + counts[1])
	if n == 0 {
		return 0
	}
	var result float64
	if c == Entropy {
		for _, k := range counts {
			if k > 0 {
				p := float64(k) / n
				result -= p * math.Log2(p)
			}
		}
		return result
	}
	result = 1
	for _, k := range counts {
		p := float64(k) / n
		result -= p * p
	}
	return result
}

/*
Sensitivity returns the largest change a single instance can make on the
count-scaled score of a partition of n instances.
*/
func (c Criterion) Sensitivity(n int) float64 {
	if c == Entropy {
		return 2 * math.Log2(float64(n)+1)
	}
	return 2
}

/*
Partition represents the split of the instances of a node by one of its
candidate attributes, with the impurity reduction it achieves.
*/
type Partition struct {
	// Attribute the instances are split on
	Attribute int
	// Position of the attribute in the candidates of the node
	Index int
	Score float64
}

/*
BranchCounts takes a set of instances and the candidate attributes to split
them on and returns their label tallies and, for every candidate, the label
tallies of the instances taking value 1.
*/
func BranchCounts(instances []dataset.Instance, candidates []int) ([2]int, [][2]int) {
	var counts [2]int
	branches := make([][2]int, len(candidates))
	for _, i := range instances {
		counts[i.Label]++
		for c, a := range candidates {
			if i.Features[a] == 1 {
				branches[c][i.Label]++
			}
		}
	}
	return counts, branches
}

/*
Sampler selects the attribute to split nodes on with the exponential
mechanism and computes how many changes a node can absorb before it must
be rebuilt. Nodes shallower than TopD get an attribute drawn uniformly
among the valid ones.
*/
type Sampler struct {
	Epsilon   float64
	Gamma     float64
	Criterion Criterion
	TopD      int
}

// Random returns whether nodes at the given depth split on a uniformly drawn attribute.
func (s *Sampler) Random(depth int) bool {
	return depth < s.TopD
}

// Uniform takes a random source and a set of partitions and returns one of
// them drawn uniformly, or nil if there are none.
func (s *Sampler) Uniform(r *rand.Rand, partitions []Partition) *Partition {
	if len(partitions) == 0 {
		return nil
	}
	return &partitions[r.Intn(len(partitions))]
}

/*
Partitions takes the label tallies of a node, its candidate attributes and
their value-1 tallies and returns the valid partitions, those leaving no
branch empty, scored by impurity reduction.
*/
func (s *Sampler) Partitions(counts [2]int, candidates []int, branches [][2]int) []Partition {
	n := counts[0] + counts[1]
	parent := s.Criterion.Impurity(counts)
	var result []Partition
	for c, a := range candidates {
		right := branches[c]
		left := [2]int{counts[0] - right[0], counts[1] - right[1]}
		nr := right[0] + right[1]
		nl := n - nr
		if nl == 0 || nr == 0 {
			continue
		}
		score := parent -
			float64(nl)/float64(n)*s.Criterion.Impurity(left) -
			float64(nr)/float64(n)*s.Criterion.Impurity(right)
		result = append(result, Partition{Attribute: a, Index: c, Score: score})
	}
	return result
}

/*
Select takes a random source, a set of partitions of n instances and
returns one of them drawn with probability proportional to
exp(temperature * score), where the temperature is
epsilon * n / (2 * sensitivity). It returns nil if there are no partitions.
Results only depend on the state of the random source and the inputs.
*/
func (s *Sampler) Select(r *rand.Rand, partitions []Partition, n int) *Partition {
	if len(partitions) == 0 {
		return nil
	}
	temperature := s.Epsilon * float64(n) / (2 * s.Criterion.Sensitivity(n))
	max := math.Inf(-1)
	for _, p := range partitions {
		max = math.Max(max, p.Score)
	}
	weights := make([]float64, len(partitions))
	var total float64
	for i, p := range partitions {
		weights[i] = math.Exp(temperature * (p.Score - max))
		total += weights[i]
	}
	u := r.Float64() * total
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if u < cumulative {
			return &partitions[i]
		}
	}
	return &partitions[len(partitions)-1]
}

/*
Threshold returns the number of adds or deletes a node of n instances can
absorb before its split must be selected again:
floor(min(ln(1/gamma) / epsilon, n * (1 - gamma))), never negative.
*/
func (s *Sampler) Threshold(n int) int {
	budget := math.Min(math.Log(1/s.Gamma)/s.Epsilon, float64(n)*(1-s.Gamma))
	if budget < 0 || math.IsNaN(budget) {
		return 0
	}
	return int(math.Floor(budget))
}
