package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryNodeStore(t *testing.T) {
	ns := NewMemoryNodeStore()
	a, b := &Node{}, &Node{}
	ns.Create(a)
	ns.Create(b)
	assert.Equal(t, 0, a.ID)
	assert.Equal(t, 1, b.ID)
	assert.Equal(t, 2, ns.Count())
	assert.Same(t, b, ns.Get(1))
	assert.Nil(t, ns.Get(-1))
	assert.Nil(t, ns.Get(2))

	ns.Delete(a)
	assert.Nil(t, ns.Get(0))
	assert.Equal(t, 1, ns.Count())
	ns.Delete(a)
	assert.Equal(t, 1, ns.Count())

	c := &Node{}
	ns.Create(c)
	assert.Equal(t, 0, c.ID, "freed indexes are reused")
	assert.Equal(t, 2, ns.Count())

	d := &Node{ID: 1, Leaf: true}
	ns.Store(d)
	assert.Same(t, d, ns.Get(1))
	assert.Equal(t, 2, ns.Count())
}
