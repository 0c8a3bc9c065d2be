package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jjbrophy47/dare/dataset"
)

func TestNewLeaf(t *testing.T) {
	leaf := NewLeaf(2, []dataset.Instance{
		{ID: 4, Features: []uint8{0, 1}, Label: 1},
		{ID: 7, Features: []uint8{1, 1}, Label: 0},
		{ID: 9, Features: []uint8{1, 0}, Label: 1},
	})
	assert.True(t, leaf.Leaf)
	assert.Equal(t, -1, leaf.Parent)
	assert.Equal(t, 2, leaf.Depth)
	assert.Equal(t, [2]int{1, 2}, leaf.Counts)
	assert.Len(t, leaf.Instances, 3)
	assert.Equal(t, 1, leaf.Majority())
	assert.False(t, leaf.Pure())

	leaf.Remove(dataset.Instance{ID: 7, Label: 0})
	assert.Equal(t, [2]int{0, 2}, leaf.Counts)
	assert.True(t, leaf.Pure())
	assert.NotContains(t, leaf.Instances, 7)
}

func TestMajorityTiesGoToOne(t *testing.T) {
	n := &Node{Counts: [2]int{3, 3}}
	assert.Equal(t, 1, n.Majority())
	n.Counts = [2]int{4, 3}
	assert.Equal(t, 0, n.Majority())
}

func TestRecordChange(t *testing.T) {
	n := NewInternal(0, 1, [2]int{2, 2}, []int{0, 1}, [][2]int{{1, 1}, {0, 2}}, 2)
	assert.Equal(t, -1, n.Left)
	assert.Equal(t, -1, n.Right)
	assert.False(t, n.RecordChange())
	assert.False(t, n.RecordChange())
	assert.True(t, n.RecordChange())
	assert.Equal(t, 3, n.Changes)
}

func TestUpdateCache(t *testing.T) {
	n := NewInternal(0, 1, [2]int{2, 2}, []int{0, 2}, [][2]int{{1, 1}, {0, 2}}, 5)
	i := dataset.Instance{ID: 10, Features: []uint8{1, 0, 1}, Label: 0}

	n.UpdateCache(i, true)
	assert.Equal(t, [2]int{3, 2}, n.Counts)
	assert.Equal(t, [][2]int{{2, 1}, {1, 2}}, n.Branches)

	n.UpdateCache(i, false)
	assert.Equal(t, [2]int{2, 2}, n.Counts)
	assert.Equal(t, [][2]int{{1, 1}, {0, 2}}, n.Branches)
}

func TestSplittable(t *testing.T) {
	n := NewInternal(0, 0, [2]int{2, 2}, []int{0, 1}, [][2]int{{0, 0}, {2, 2}}, 1)
	assert.False(t, n.Splittable())
	n.Branches[1] = [2]int{1, 2}
	assert.True(t, n.Splittable())
}

func TestValid(t *testing.T) {
	n := NewInternal(0, 1, [2]int{2, 2}, []int{0, 1}, [][2]int{{1, 1}, {2, 0}}, 1)
	assert.True(t, n.Valid())
	n.Branches[1] = [2]int{0, 0}
	assert.False(t, n.Valid(), "attribute 1 leaves its right branch empty")
	assert.True(t, n.Splittable(), "attribute 0 still splits")
	n.Branches[1] = [2]int{2, 2}
	assert.False(t, n.Valid())
	n.Attribute = 3
	assert.False(t, n.Valid(), "attribute outside the candidates")
}

func TestChild(t *testing.T) {
	n := NewInternal(0, 1, [2]int{}, nil, nil, 0)
	n.Left, n.Right = 3, 4
	assert.Equal(t, 3, n.Child([]uint8{1, 0}))
	assert.Equal(t, 4, n.Child([]uint8{0, 1}))
}
