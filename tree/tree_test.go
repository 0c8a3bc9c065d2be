package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjbrophy47/dare/dataset"
	"github.com/jjbrophy47/dare/feature"
)

var instances = []dataset.Instance{
	{ID: 0, Features: []uint8{0, 0}, Label: 0},
	{ID: 1, Features: []uint8{0, 1}, Label: 0},
	{ID: 2, Features: []uint8{1, 0}, Label: 1},
	{ID: 3, Features: []uint8{1, 1}, Label: 1},
}

// stump returns a tree splitting the instances above on attribute 0.
func stump() (*Tree, *Node, *Node, *Node) {
	t := New(NewMemoryNodeStore(), 2, feature.All(2))
	for _, i := range instances {
		t.Instances[i.ID] = i
	}
	root := NewInternal(0, 0, [2]int{2, 2}, []int{0, 1}, [][2]int{{0, 2}, {1, 1}}, 3)
	t.Create(root)
	t.RootID = root.ID
	left := NewLeaf(1, instances[:2])
	right := NewLeaf(1, instances[2:])
	for _, l := range []*Node{left, right} {
		l.Parent = root.ID
		t.Create(l)
		t.Assign(l)
	}
	root.Left, root.Right = left.ID, right.ID
	return t, root, left, right
}

func TestTreeCheck(t *testing.T) {
	tr, _, left, _ := stump()
	require.NoError(t, tr.Check())

	left.Counts[0]++
	assert.Error(t, tr.Check())
}

func TestTreeCheckDetectsStaleCache(t *testing.T) {
	tr, root, _, _ := stump()
	root.Branches[1] = [2]int{0, 0}
	assert.Error(t, tr.Check())
}

func TestTreePredict(t *testing.T) {
	tr, _, _, _ := stump()
	assert.Equal(t, [2]float64{0, 1}, tr.Predict([]uint8{1, 0}).Probabilities())
	assert.Equal(t, [2]float64{1, 0}, tr.Predict([]uint8{0, 1}).Probabilities())
	assert.Len(t, tr.Path([]uint8{1, 1}), 2)
}

func TestTreePredictEmptyLeafFallsBackToAncestor(t *testing.T) {
	tr, root, _, right := stump()
	for _, i := range instances[2:] {
		right.Remove(i)
		root.UpdateCache(i, false)
		tr.Unassign(i.ID)
		delete(tr.Instances, i.ID)
	}
	require.NoError(t, tr.Check())
	p := tr.Predict([]uint8{1, 1})
	assert.Equal(t, [2]float64{1, 0}, p.Probabilities())
	assert.Equal(t, 0, p.Weight())
}

func TestTreePredictEmpty(t *testing.T) {
	tr := New(NewMemoryNodeStore(), 2, feature.All(2))
	assert.Equal(t, [2]float64{0.5, 0.5}, tr.Predict([]uint8{0, 1}).Probabilities())

	root := NewLeaf(0, nil)
	tr.Create(root)
	tr.RootID = root.ID
	assert.Equal(t, [2]float64{0.5, 0.5}, tr.Predict([]uint8{0, 1}).Probabilities())
	assert.NoError(t, tr.Check())
}

func TestTreeCollect(t *testing.T) {
	tr, root, _, right := stump()
	assert.Equal(t, instances, tr.Collect(root.ID))
	assert.Equal(t, instances[2:], tr.Collect(right.ID))
}

func TestTreeAvailable(t *testing.T) {
	tr, root, left, _ := stump()
	assert.Equal(t, feature.Mask{0, 1}, tr.Available(root.ID))
	assert.Equal(t, feature.Mask{1}, tr.Available(left.ID))
}

func TestTreeDiscard(t *testing.T) {
	tr, root, left, _ := stump()
	l, ok := tr.LeafOf(1)
	require.True(t, ok)
	assert.Equal(t, left.ID, l)

	tr.Discard(root.ID)
	assert.Equal(t, 1, tr.Count())
	assert.Same(t, root, tr.Get(root.ID))
	_, ok = tr.LeafOf(1)
	assert.False(t, ok)
}

func TestTreeTraverse(t *testing.T) {
	tr, root, left, right := stump()
	var order []int
	err := tr.Traverse(true, func(n *Node) error {
		order = append(order, n.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{left.ID, right.ID, root.ID}, order)

	order = nil
	err = tr.Traverse(false, func(n *Node) error {
		order = append(order, n.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{root.ID, left.ID, right.ID}, order)
}

func TestTreeString(t *testing.T) {
	tr, _, _, _ := stump()
	s := tr.String()
	assert.Contains(t, s, "|__")
	assert.Contains(t, s, "x0 is 0")
	assert.Contains(t, s, "x0 is 1")
	assert.Equal(t, "[empty tree]\n", New(NewMemoryNodeStore(), 1, feature.All(1)).String())

	root := tr.Root()
	assert.Contains(t, s, "changes=0/3")
	root.Random = true
	assert.Contains(t, tr.String(), "changes=0 random")
}

func TestTreeMemoryUsage(t *testing.T) {
	tr, _, _, _ := stump()
	small := New(NewMemoryNodeStore(), 2, feature.All(2))
	assert.Greater(t, tr.MemoryUsage(), small.MemoryUsage())
}
