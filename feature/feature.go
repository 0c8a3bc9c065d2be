package feature

import (
	"fmt"
	"math/rand"
	"sort"
)

/*
Feature represents a binary attribute that can be observed on an
instance: its position in the attribute vector and a name.
*/
type Feature struct {
	Index int
	Name  string
}

func (f Feature) String() string {
	return f.Name
}

/*
Names takes an attribute count and returns default names x0, x1, ...
for datasets that come without a header.
*/
func Names(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}
	return names
}

/*
Features takes a slice of attribute names and returns the features they
name, in order.
*/
func Features(names []string) []Feature {
	features := make([]Feature, len(names))
	for i, n := range names {
		features[i] = Feature{i, n}
	}
	return features
}

/*
Mask is the sorted set of attribute indices a tree is allowed to split on.
*/
type Mask []int

// All returns a mask with every attribute of a vector of the given width.
func All(width int) Mask {
	m := make(Mask, width)
	for i := range m {
		m[i] = i
	}
	return m
}

/*
SampleMask takes a random source, an attribute count and a size and
returns a mask with size attributes drawn without replacement. The
result only depends on the state of the given source.
*/
func SampleMask(r *rand.Rand, width, size int) Mask {
	if size >= width {
		return All(width)
	}
	perm := r.Perm(width)
	m := Mask(perm[:size])
	sort.Ints(m)
	return m
}

// Contains returns whether the given attribute is in the mask.
func (m Mask) Contains(attribute int) bool {
	i := sort.SearchInts(m, attribute)
	return i < len(m) && m[i] == attribute
}

/*
Without returns a copy of the mask without the given attributes,
preserving order.
*/
func (m Mask) Without(attributes ...int) Mask {
	result := make(Mask, 0, len(m))
	for _, a := range m {
		skip := false
		for _, b := range attributes {
			if a == b {
				skip = true
				break
			}
		}
		if !skip {
			result = append(result, a)
		}
	}
	return result
}
