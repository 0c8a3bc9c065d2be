package feature

import (
	"fmt"
)

/*
Criterion represents a constraint on a binary attribute: the value it
must take for an instance to follow a branch of a tree.
*/
type Criterion struct {
	Feature Feature
	Value   uint8
}

/*
NewCriterion takes a feature and a value and returns the criterion that
is satisfied by vectors taking that value for the feature.
*/
func NewCriterion(f Feature, value uint8) Criterion {
	return Criterion{f, value}
}

// SatisfiedBy returns whether the given attribute vector satisfies the criterion.
func (c Criterion) SatisfiedBy(x []uint8) bool {
	return x[c.Feature.Index] == c.Value
}

func (c Criterion) String() string {
	return fmt.Sprintf("%s is %d", c.Feature.Name, c.Value)
}
