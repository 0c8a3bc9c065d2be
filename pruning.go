package dare

// PruningStrategy holds the configuration
// for when a node must not be partitioned
// at all and becomes a leaf.
type PruningStrategy struct {
	// MaxDepth is the depth at which nodes
	// always become leaves.
	MaxDepth int
	// MinSupport is the minimum number of
	// instances a node needs to be split.
	MinSupport int
}

/*
Leaf takes the depth of a node, the label tallies of its instances and the
number of attributes it may split on and returns whether it must be a leaf:
it is at the depth limit, it is pure, it has too few instances or there is
no attribute left.
*/
func (ps *PruningStrategy) Leaf(depth int, counts [2]int, candidates int) bool {
	n := counts[0] + counts[1]
	return depth >= ps.MaxDepth ||
		counts[0] == 0 || counts[1] == 0 ||
		n < ps.MinSupport ||
		candidates == 0
}
