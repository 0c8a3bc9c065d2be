package stats

import (
	"sync"
	"time"
)

// Rebuild describes a subtree rebuilt by an operation.
type Rebuild struct {
	// Depth of the rebuilt node
	Depth int
	// Number of instances the subtree was rebuilt from
	Instances int
	// Whether a leaf was turned into an internal node
	Converted bool
}

// Event describes the work done to apply one instance change to a tree.
type Event struct {
	// Internal nodes that absorbed the change without being rebuilt
	Touched int
	// The rebuild it caused, if any
	Rebuild *Rebuild
	Duration time.Duration
}

// Snapshot holds the cumulative counters of a Tracker.
type Snapshot struct {
	Operations            int64         `json:"operations"`
	NodesRetrainedInPlace int64         `json:"nodes_retrained_in_place"`
	SubtreesRebuilt       int64         `json:"subtrees_rebuilt"`
	LeavesConverted       int64         `json:"leaves_converted"`
	InstancesRetrained    int64         `json:"instances_retrained"`
	CumulativeTime        time.Duration `json:"cumulative_time"`
	RebuildDepths         map[int]int64 `json:"rebuild_depths"`
}

/*
Tracker accumulates events for the lifetime of a model. It is safe for
concurrent use.
*/
type Tracker struct {
	mu       sync.Mutex
	snapshot Snapshot
}

// NewTracker returns a Tracker with all its counters at zero.
func NewTracker() *Tracker {
	return &Tracker{snapshot: Snapshot{RebuildDepths: make(map[int]int64)}}
}

// Observe takes an event and adds it to the counters.
func (t *Tracker) Observe(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := &t.snapshot
	s.Operations++
	s.NodesRetrainedInPlace += int64(e.Touched)
	s.CumulativeTime += e.Duration
	if r := e.Rebuild; r != nil {
		s.SubtreesRebuilt++
		s.InstancesRetrained += int64(r.Instances)
		s.RebuildDepths[r.Depth]++
		if r.Converted {
			s.LeavesConverted++
		}
	}
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot.copy()
}

func (s Snapshot) copy() Snapshot {
	depths := make(map[int]int64, len(s.RebuildDepths))
	for d, c := range s.RebuildDepths {
		depths[d] = c
	}
	s.RebuildDepths = depths
	return s
}

// Merge returns a snapshot whose counters are the sum of the given ones.
func Merge(snapshots ...Snapshot) Snapshot {
	result := Snapshot{RebuildDepths: make(map[int]int64)}
	for _, s := range snapshots {
		result.Operations += s.Operations
		result.NodesRetrainedInPlace += s.NodesRetrainedInPlace
		result.SubtreesRebuilt += s.SubtreesRebuilt
		result.LeavesConverted += s.LeavesConverted
		result.InstancesRetrained += s.InstancesRetrained
		result.CumulativeTime += s.CumulativeTime
		for d, c := range s.RebuildDepths {
			result.RebuildDepths[d] += c
		}
	}
	return result
}
