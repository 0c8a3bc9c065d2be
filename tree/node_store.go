package tree

import (
	"sync"
)

/*
NodeStore is an interface to manage a store
where nodes can be created, retrieved, updated
and deleted, addressed by an integer index.
*/
type NodeStore interface {
	// Create takes a node and stores it for the
	// first time in the store, assigning it an
	// index and setting it as the node's ID.
	Create(n *Node)
	// Get takes an index and returns the node in the
	// store with that index, or nil if there is none.
	Get(id int) *Node
	// Store takes a node with an ID already assigned
	// by Create and replaces whatever the store holds
	// at that index with it.
	Store(n *Node)
	// Delete takes a node existing in the store and
	// frees its index for reuse.
	Delete(n *Node)
	// Count returns the number of nodes in the store.
	Count() int
}

type memoryNodeStore struct {
	nodes []*Node
	free  []int
	count int
	lock  *sync.RWMutex
}

// NewMemoryNodeStore returns an implementation
// of NodeStore backed by a slice of nodes (an
// arena) in the process memory space. Indexes
// of deleted nodes are reused by later creations.
func NewMemoryNodeStore() NodeStore {
	return &memoryNodeStore{
		lock: &sync.RWMutex{},
	}
}

func (mns *memoryNodeStore) Create(n *Node) {
	mns.lock.Lock()
	defer mns.lock.Unlock()
	if l := len(mns.free); l > 0 {
		n.ID = mns.free[l-1]
		mns.free = mns.free[:l-1]
		mns.nodes[n.ID] = n
	} else {
		n.ID = len(mns.nodes)
		mns.nodes = append(mns.nodes, n)
	}
	mns.count++
}

func (mns *memoryNodeStore) Get(id int) *Node {
	mns.lock.RLock()
	defer mns.lock.RUnlock()
	if id < 0 || id >= len(mns.nodes) {
		return nil
	}
	return mns.nodes[id]
}

func (mns *memoryNodeStore) Store(n *Node) {
	mns.lock.Lock()
	defer mns.lock.Unlock()
	mns.nodes[n.ID] = n
}

func (mns *memoryNodeStore) Delete(n *Node) {
	mns.lock.Lock()
	defer mns.lock.Unlock()
	if n.ID < 0 || n.ID >= len(mns.nodes) || mns.nodes[n.ID] == nil {
		return
	}
	mns.nodes[n.ID] = nil
	mns.free = append(mns.free, n.ID)
	mns.count--
}

func (mns *memoryNodeStore) Count() int {
	mns.lock.RLock()
	defer mns.lock.RUnlock()
	return mns.count
}
