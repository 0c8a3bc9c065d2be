package tree

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/jjbrophy47/dare/dataset"
	"github.com/jjbrophy47/dare/feature"
)

// Tree represents a decision tree over binary attributes. It is
// composed of a NodeStore where all its nodes are stored, the index of
// the root node, the attributes it may split on and the instances it
// was trained on, each of them assigned to exactly one leaf.
type Tree struct {
	NodeStore
	RootID    int
	Width     int
	Mask      feature.Mask
	Features  []feature.Feature
	Instances map[int]dataset.Instance

	leaves map[int]int
	lock   *sync.Mutex
}

// New takes a NodeStore, the width of the attribute vectors and the mask of
// attributes the tree may split on and returns an empty tree.
func New(nodeStore NodeStore, width int, mask feature.Mask) *Tree {
	return &Tree{
		NodeStore: nodeStore,
		RootID:    -1,
		Width:     width,
		Mask:      mask,
		Features:  feature.Features(feature.Names(width)),
		Instances: make(map[int]dataset.Instance),
		leaves:    make(map[int]int),
		lock:      &sync.Mutex{},
	}
}

// Root returns the root node of the tree or nil if it has not been grown.
func (t *Tree) Root() *Node {
	return t.Get(t.RootID)
}

/*
Predict takes an attribute vector and returns the prediction of the leaf
it falls in. Empty leaves predict the majority label of their nearest
non-empty ancestor and a tree without instances predicts both labels
with equal probability.
*/
func (t *Tree) Predict(x []uint8) *Prediction {
	var fallback *Node
	n := t.Root()
	for n != nil {
		if n.Count() > 0 {
			fallback = n
		}
		if n.Leaf {
			break
		}
		n = t.Get(n.Child(x))
	}
	if n != nil && n.Count() > 0 {
		p, _ := NewPredictionFromCounts(n.Counts)
		return p
	}
	if fallback == nil {
		return uniformPrediction()
	}
	return NewMajorityPrediction(fallback.Counts)
}

// Path takes an attribute vector and returns the nodes it traverses from
// the root to a leaf.
func (t *Tree) Path(x []uint8) []*Node {
	var path []*Node
	n := t.Root()
	for n != nil {
		path = append(path, n)
		if n.Leaf {
			break
		}
		n = t.Get(n.Child(x))
	}
	return path
}

// Assign records a leaf as the holder of all of its instances.
func (t *Tree) Assign(leaf *Node) {
	t.lock.Lock()
	defer t.lock.Unlock()
	for id := range leaf.Instances {
		t.leaves[id] = leaf.ID
	}
}

// AssignInstance records the given leaf as the holder of an instance.
func (t *Tree) AssignInstance(id, leafID int) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.leaves[id] = leafID
}

// Unassign forgets the leaf holding an instance.
func (t *Tree) Unassign(id int) {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.leaves, id)
}

// LeafOf returns the index of the leaf holding an instance and whether
// the tree holds it at all.
func (t *Tree) LeafOf(id int) (int, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	l, ok := t.leaves[id]
	return l, ok
}

/*
Collect takes the index of a node and returns the instances under it,
sorted by identifier.
*/
func (t *Tree) Collect(id int) []dataset.Instance {
	var ids []int
	t.walk(t.Get(id), func(n *Node) {
		if n.Leaf {
			for i := range n.Instances {
				ids = append(ids, i)
			}
		}
	})
	sort.Ints(ids)
	instances := make([]dataset.Instance, len(ids))
	for k, i := range ids {
		instances[k] = t.Instances[i]
	}
	return instances
}

/*
Discard takes the index of a node and deletes every node under it from the
store, keeping the node itself so that it can be replaced in place. The
instances of every discarded leaf are left unassigned.
*/
func (t *Tree) Discard(id int) {
	root := t.Get(id)
	t.walk(root, func(n *Node) {
		if n.Leaf {
			t.lock.Lock()
			for i := range n.Instances {
				delete(t.leaves, i)
			}
			t.lock.Unlock()
		}
		if n != root {
			t.Delete(n)
		}
	})
}

/*
Available takes the index of a node and returns the attributes of the
mask not used to split any of its ancestors.
*/
func (t *Tree) Available(id int) []int {
	var used []int
	n := t.Get(id)
	for n != nil && n.Parent >= 0 {
		p := t.Get(n.Parent)
		used = append(used, p.Attribute)
		n = p
	}
	return t.Mask.Without(used...)
}

// Traverse takes a bottomup boolean and an error-returning function
// and goes through the tree running the function with every node.
// Traverse will call the function with a parent node before calling it
// for its children if bottomup is false, and after them otherwise.
// If a call returns an error the traversing is aborted and the error
// returned.
func (t *Tree) Traverse(bottomup bool, f func(*Node) error) error {
	n := t.Root()
	if n == nil {
		return nil
	}
	return t.traverse(n, bottomup, f)
}

func (t *Tree) traverse(n *Node, bottomup bool, f func(*Node) error) error {
	var err error
	if !bottomup {
		err = f(n)
	}
	if err != nil {
		return err
	}
	if !n.Leaf {
		for _, c := range []int{n.Left, n.Right} {
			sn := t.Get(c)
			if sn == nil {
				return errors.Errorf("node %d: child %d not found", n.ID, c)
			}
			err = t.traverse(sn, bottomup, f)
			if err != nil {
				return err
			}
		}
	}
	if bottomup {
		err = f(n)
	}
	return err
}

func (t *Tree) walk(n *Node, f func(*Node)) {
	if n == nil {
		return
	}
	if !n.Leaf {
		t.walk(t.Get(n.Left), f)
		t.walk(t.Get(n.Right), f)
	}
	f(n)
}

/*
Check verifies the structural invariants of the tree and returns an error
describing the first violation found:
  - every node is stored at its own index and children point to their parent
  - leaf tallies equal the labels of the leaf's instances
  - internal tallies and candidate caches equal those of the instances below
  - every instance is held by exactly one leaf, the one its attributes lead to
*/
func (t *Tree) Check() error {
	seen := make(map[int]bool)
	err := t.Traverse(false, func(n *Node) error {
		if t.Get(n.ID) != n {
			return errors.Errorf("node %d is not stored at its index", n.ID)
		}
		if n.Leaf {
			var counts [2]int
			for id := range n.Instances {
				if seen[id] {
					return errors.Errorf("instance %d held by more than one leaf", id)
				}
				seen[id] = true
				i, ok := t.Instances[id]
				if !ok {
					return errors.Errorf("leaf %d holds unknown instance %d", n.ID, id)
				}
				counts[i.Label]++
				if l, _ := t.LeafOf(id); l != n.ID {
					return errors.Errorf("instance %d indexed at leaf %d, held by leaf %d", id, l, n.ID)
				}
				path := t.Path(i.Features)
				if path[len(path)-1] != n {
					return errors.Errorf("instance %d does not follow the path to leaf %d", id, n.ID)
				}
			}
			if counts != n.Counts {
				return errors.Errorf("leaf %d counts %v, instances tally %v", n.ID, n.Counts, counts)
			}
			return nil
		}
		l, r := t.Get(n.Left), t.Get(n.Right)
		for _, c := range []*Node{l, r} {
			if c.Parent != n.ID || c.Depth != n.Depth+1 {
				return errors.Errorf("node %d: child %d has parent %d depth %d", n.ID, c.ID, c.Parent, c.Depth)
			}
		}
		if l.Counts[0]+r.Counts[0] != n.Counts[0] || l.Counts[1]+r.Counts[1] != n.Counts[1] {
			return errors.Errorf("node %d counts %v, children %v %v", n.ID, n.Counts, l.Counts, r.Counts)
		}
		instances := t.Collect(n.ID)
		for c, a := range n.Candidates {
			var right [2]int
			for _, i := range instances {
				if i.Features[a] == 1 {
					right[i.Label]++
				}
			}
			if right != n.Branches[c] {
				return errors.Errorf("node %d attribute %d cached %v, instances tally %v", n.ID, a, n.Branches[c], right)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(seen) != len(t.Instances) {
		return errors.Errorf("%d instances held by leaves, %d in the tree", len(seen), len(t.Instances))
	}
	return nil
}

/*
MemoryUsage returns an estimate in bytes of the memory used by the nodes of
the tree and by its instance table.
*/
func (t *Tree) MemoryUsage() int {
	const mapEntry = 2 * int(unsafe.Sizeof(int(0)))
	size := int(unsafe.Sizeof(*t))
	t.walk(t.Root(), func(n *Node) {
		size += int(unsafe.Sizeof(*n))
		size += len(n.Candidates) * int(unsafe.Sizeof(int(0)))
		size += len(n.Branches) * int(unsafe.Sizeof([2]int{}))
		size += len(n.Instances) * mapEntry
	})
	for _, i := range t.Instances {
		size += mapEntry + int(unsafe.Sizeof(i)) + len(i.Features)
	}
	size += len(t.leaves) * mapEntry
	return size
}

func (t *Tree) String() string {
	if t.Root() == nil {
		return "[empty tree]\n"
	}
	return t.subtreeString(t.RootID, nil)
}

func (t *Tree) subtreeString(nodeID int, criterion *feature.Criterion) string {
	n := t.Get(nodeID)
	result := fmt.Sprintf("[%d]\n", nodeID)
	if criterion != nil {
		result = fmt.Sprintf("%s{ %v }\n", result, criterion)
	}
	if n.Leaf {
		if p, err := NewPredictionFromCounts(n.Counts); err == nil {
			result = fmt.Sprintf("%s{ %v %v }\n", result, n.Counts, p)
		} else {
			result = fmt.Sprintf("%s{ empty }\n", result)
		}
		return result + " \n"
	}
	if n.Random {
		result = fmt.Sprintf("%s{ %v changes=%d random }\n|\n", result, n.Counts, n.Changes)
	} else {
		result = fmt.Sprintf("%s{ %v changes=%d/%d }\n|\n", result, n.Counts, n.Changes, n.Threshold)
	}
	f := t.Features[n.Attribute]
	children := []int{n.Left, n.Right}
	for i, c := range children {
		cc := feature.NewCriterion(f, uint8(i))
		for j, line := range strings.Split(t.subtreeString(c, &cc), "\n") {
			if len(line) > 0 {
				if j == 0 {
					result = fmt.Sprintf("%s|__%s\n", result, line)
				} else if i == len(children)-1 {
					result = fmt.Sprintf("%s   %s\n", result, line)
				} else {
					result = fmt.Sprintf("%s|  %s\n", result, line)
				}
			}
		}
	}
	return result
}
