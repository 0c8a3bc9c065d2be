package tree

import (
	"github.com/jjbrophy47/dare/dataset"
)

/*
Node is a node of the tree
*/
type Node struct {
	// The index of the node in its NodeStore
	ID int
	// The index of the parent of the node, -1 for the root
	Parent int
	// Distance to the root of the tree
	Depth int
	// Label tallies of the instances under this node. For leaves they are
	// exact tallies of Instances, for internal nodes the sum of both children.
	Counts [2]int
	// Whether the node is a leaf
	Leaf bool

	// The identifiers of the instances assigned to a leaf.
	Instances map[int]struct{}

	// The attribute an internal node splits on. Instances taking value 0
	// go to Left, those taking 1 go to Right.
	Attribute   int
	Left, Right int
	// Attributes that were available to split this node, the chosen one
	// included, and for each of them the label tallies of the instances
	// taking value 1. Tallies for value 0 are Counts minus Branches.
	Candidates []int
	Branches   [][2]int
	// Adds and deletes absorbed since the split was fixed, and how many
	// can be absorbed before the node must be rebuilt.
	Changes   int
	Threshold int
	// Whether the attribute was drawn uniformly. Random nodes ignore
	// Threshold and are rebuilt only once Attribute stops splitting.
	Random bool
}

/*
NewLeaf takes a depth and a slice of instances and returns a leaf holding
them with their labels tallied.
*/
func NewLeaf(depth int, instances []dataset.Instance) *Node {
	n := &Node{
		Parent:    -1,
		Depth:     depth,
		Leaf:      true,
		Instances: make(map[int]struct{}, len(instances)),
	}
	for _, i := range instances {
		n.Insert(i)
	}
	return n
}

/*
NewInternal takes a depth, the attribute to split on, the label tallies of
the instances under the node, the candidate attributes with their value-1
branch tallies and the retrain threshold and returns an internal node with
an empty change counter. Children must be linked by the caller.
*/
func NewInternal(depth, attribute int, counts [2]int, candidates []int, branches [][2]int, threshold int) *Node {
	return &Node{
		Parent:     -1,
		Depth:      depth,
		Counts:     counts,
		Attribute:  attribute,
		Left:       -1,
		Right:      -1,
		Candidates: candidates,
		Branches:   branches,
		Threshold:  threshold,
	}
}

// Count returns the number of instances under the node.
func (n *Node) Count() int {
	return n.Counts[0] + n.Counts[1]
}

// Pure returns whether all instances under the node have the same label.
func (n *Node) Pure() bool {
	return n.Counts[0] == 0 || n.Counts[1] == 0
}

// Majority returns the most frequent label under the node, 1 on ties.
func (n *Node) Majority() int {
	if n.Counts[0] > n.Counts[1] {
		return 0
	}
	return 1
}

/*
Child takes an attribute vector and returns the index of the child of an
internal node the vector follows.
*/
func (n *Node) Child(x []uint8) int {
	if x[n.Attribute] == 1 {
		return n.Right
	}
	return n.Left
}

/*
RecordChange counts an add or delete absorbed by the node and returns
whether its retrain threshold is now exceeded.
*/
func (n *Node) RecordChange() bool {
	n.Changes++
	return n.Changes > n.Threshold
}

/*
UpdateCache takes an instance being added (add true) or removed and adjusts
the label tallies of an internal node and of every candidate branch without
looking at any other instance.
*/
func (n *Node) UpdateCache(i dataset.Instance, add bool) {
	d := 1
	if !add {
		d = -1
	}
	n.Counts[i.Label] += d
	for c, a := range n.Candidates {
		if i.Features[a] == 1 {
			n.Branches[c][i.Label] += d
		}
	}
}

/*
Splittable returns whether at least one candidate attribute of an internal
node still separates its instances into two non-empty branches.
*/
func (n *Node) Splittable() bool {
	total := n.Count()
	for _, b := range n.Branches {
		right := b[0] + b[1]
		if right > 0 && right < total {
			return true
		}
	}
	return false
}

// Valid returns whether the split attribute of an internal node still
// separates its instances into two non-empty branches.
func (n *Node) Valid() bool {
	for c, a := range n.Candidates {
		if a == n.Attribute {
			right := n.Branches[c][0] + n.Branches[c][1]
			return right > 0 && right < n.Count()
		}
	}
	return false
}

// Insert adds an instance to a leaf.
func (n *Node) Insert(i dataset.Instance) {
	n.Instances[i.ID] = struct{}{}
	n.Counts[i.Label]++
}

// Remove takes an instance out of a leaf.
func (n *Node) Remove(i dataset.Instance) {
	delete(n.Instances, i.ID)
	n.Counts[i.Label]--
}
