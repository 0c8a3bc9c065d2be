package queue

import (
	"fmt"

	"github.com/jjbrophy47/dare/dataset"
)

// Task represents a node of a tree to be developed
// from the instances that reach it.
type Task struct {
	// The index of the node to be developed. The node
	// already exists in the store, linked to its parent.
	NodeID int
	// Distance of the node to the root of the tree
	Depth int
	// Instances reaching the node, sorted by ID
	Instances []dataset.Instance
	// Attributes that can be used to split the node.
	// It excludes the attributes used by ancestors.
	Candidates []int
	// Optional label tallies for the node and value-1
	// tallies for each candidate, when they are known
	// beforehand. A nil Branches means they must be
	// computed from Instances.
	Counts   [2]int
	Branches [][2]int
	// Seed for the random source used to develop the
	// node and to derive the seeds of its children.
	Seed int64
}

// ID returns an int that identifies the task,
// the index of its node.
func (t *Task) ID() int {
	return t.NodeID
}

func (t *Task) String() string {
	return fmt.Sprintf("{Task %d depth:%d instances:%d}", t.NodeID, t.Depth, len(t.Instances))
}
