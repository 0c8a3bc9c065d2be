package dare

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jjbrophy47/dare/dataset"
	"github.com/jjbrophy47/dare/feature"
	"github.com/jjbrophy47/dare/queue"
	"github.com/jjbrophy47/dare/stats"
	"github.com/jjbrophy47/dare/tree"
)

/*
Tree is a decision tree classifier that supports adding and deleting
training instances after it has been fitted. It is safe for concurrent
use: predictions run concurrently with each other while adds and deletes
are serialized and never observed half applied.
*/
type Tree struct {
	config  Config
	sampler Sampler
	pruning PruningStrategy
	rng     *rand.Rand
	// Attributes the tree may split on, sampled at fit time when nil.
	mask feature.Mask
	// Set on the trees of a forest, which only change through it.
	member bool

	mu        sync.RWMutex
	structure *tree.Tree
	width     int
	nextID    int

	adds     *stats.Tracker
	removals *stats.Tracker
}

// NewTree takes a configuration and returns an unfitted tree or an error
// wrapping ErrInvalidConfig.
func NewTree(config Config) (*Tree, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newTree(config, seedFor(config), nil), nil
}

func newTree(config Config, seed int64, mask feature.Mask) *Tree {
	return &Tree{
		config:   config,
		sampler:  Sampler{Epsilon: config.Epsilon, Gamma: config.Gamma, Criterion: config.Criterion, TopD: config.TopD},
		pruning:  PruningStrategy{MaxDepth: config.MaxDepth, MinSupport: config.MinSupport},
		rng:      rand.New(rand.NewSource(seed)),
		mask:     mask,
		adds:     stats.NewTracker(),
		removals: stats.NewTracker(),
	}
}

func seedFor(config Config) int64 {
	if config.RandomState != nil {
		return *config.RandomState
	}
	return time.Now().UnixNano()
}

/*
Fit takes a matrix of binary attributes and a vector of binary labels and
grows the tree from them, replacing whatever it held before. Rows get the
identifiers 0 to len(X)-1. Statistics survive refits.
*/
func (dt *Tree) Fit(X [][]int, y []int) error {
	if dt.member {
		return ErrForestMember
	}
	if len(X) == 0 {
		return errors.Wrap(ErrShapeMismatch, "fitting on no rows")
	}
	instances, err := dataset.Instances(X, y, 0, -1)
	if err != nil {
		return err
	}
	return dt.fit(instances, len(X[0]))
}

func (dt *Tree) fit(instances []dataset.Instance, width int) error {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	mask := dt.mask
	if mask == nil {
		size, err := dt.config.MaxFeatures.Resolve(width)
		if err != nil {
			return err
		}
		mask = feature.SampleMask(dt.rng, width, size)
	}
	start := time.Now()
	st := tree.New(tree.NewMemoryNodeStore(), width, mask)
	nextID := 0
	for _, i := range instances {
		st.Instances[i.ID] = i
		if i.ID >= nextID {
			nextID = i.ID + 1
		}
	}
	ctx := context.Background()
	q := queue.New()
	err := Seed(ctx, st, instances, dt.rng.Int63(), q)
	if err != nil {
		return err
	}
	err = Grow(ctx, st, q, &dt.sampler, &dt.pruning, dt.config.NJobs)
	if err != nil {
		return errors.Wrap(err, "growing tree")
	}
	dt.structure, dt.width, dt.nextID = st, width, nextID
	log.Debugf("fitted tree on %d instances: %d nodes in %s", len(instances), st.Count(), time.Since(start))
	return nil
}

// Fitted returns whether the tree has been fitted.
func (dt *Tree) Fitted() bool {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	return dt.structure != nil
}

/*
PredictProba takes a matrix of binary attributes and returns the
probability of each label for every row.
*/
func (dt *Tree) PredictProba(X [][]int) ([][2]float64, error) {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	if dt.structure == nil {
		return nil, ErrNotFitted
	}
	rows, err := dataset.Rows(X, dt.width)
	if err != nil {
		return nil, err
	}
	return dt.predictRows(rows), nil
}

func (dt *Tree) predictRows(rows [][]uint8) [][2]float64 {
	result := make([][2]float64, len(rows))
	for i, row := range rows {
		result[i] = dt.structure.Predict(row).Probabilities()
	}
	return result
}

// Predict takes a matrix of binary attributes and returns the most
// probable label for every row, 1 on ties.
func (dt *Tree) Predict(X [][]int) ([]int, error) {
	probas, err := dt.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return argmax(probas), nil
}

func argmax(probas [][2]float64) []int {
	labels := make([]int, len(probas))
	for i, p := range probas {
		if p[1] >= p[0] {
			labels[i] = 1
		}
	}
	return labels
}

/*
Add takes a matrix of binary attributes and their labels, learns them as
new instances and returns the identifiers assigned to them. Nothing is
added unless every row is valid.
*/
func (dt *Tree) Add(X [][]int, y []int) ([]int, error) {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	if dt.member {
		return nil, ErrForestMember
	}
	if dt.structure == nil {
		return nil, ErrNotFitted
	}
	instances, err := dataset.Instances(X, y, dt.nextID, dt.width)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(instances))
	for k, i := range instances {
		ids[k] = i.ID
	}
	return ids, dt.insert(instances)
}

/*
Delete takes the identifiers of instances and unlearns them in order. It
fails with ErrUnknownInstance, deleting nothing, if any identifier is not
held by the tree or is repeated.
*/
func (dt *Tree) Delete(ids []int) error {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	if dt.member {
		return ErrForestMember
	}
	if dt.structure == nil {
		return ErrNotFitted
	}
	return dt.remove(ids)
}

/*
insert validates and applies instances. It fails with ErrDuplicateInstance,
adding nothing, if an identifier is already held or repeated. The lock must
be held.
*/
func (dt *Tree) insert(instances []dataset.Instance) error {
	seen := make(map[int]bool, len(instances))
	for _, i := range instances {
		if _, ok := dt.structure.Instances[i.ID]; ok || seen[i.ID] {
			return errors.Wrapf(ErrDuplicateInstance, "adding instance %d", i.ID)
		}
		seen[i.ID] = true
	}
	for _, i := range instances {
		if i.ID >= dt.nextID {
			dt.nextID = i.ID + 1
		}
		if err := dt.apply(i, true); err != nil {
			return err
		}
	}
	return nil
}

// remove validates and applies deletions. The lock must be held.
func (dt *Tree) remove(ids []int) error {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if _, ok := dt.structure.Instances[id]; !ok || seen[id] {
			return errors.Wrapf(ErrUnknownInstance, "deleting instance %d", id)
		}
		seen[id] = true
	}
	for _, id := range ids {
		if err := dt.apply(dt.structure.Instances[id], false); err != nil {
			return err
		}
	}
	return nil
}

/*
apply learns (add true) or unlearns an instance. The leaf holding it is
updated first, then every internal node on its path updates its cached
tallies and counts the change, top down. The first node that exceeds its
retrain threshold, or can no longer be split, is rebuilt from the
instances it now holds. Random nodes have no threshold and are rebuilt
once their attribute stops splitting. A leaf that no longer satisfies the
stop rules is rebuilt the same way.
*/
func (dt *Tree) apply(i dataset.Instance, add bool) error {
	start := time.Now()
	st := dt.structure
	path := st.Path(i.Features)
	leaf := path[len(path)-1]
	if add {
		st.Instances[i.ID] = i
		leaf.Insert(i)
		st.AssignInstance(i.ID, leaf.ID)
	} else {
		leaf.Remove(i)
		st.Unassign(i.ID)
		delete(st.Instances, i.ID)
	}
	var event stats.Event
	var err error
	for _, n := range path[:len(path)-1] {
		n.UpdateCache(i, add)
		stale := n.RecordChange()
		if n.Random {
			stale = !n.Valid()
		}
		if stale || dt.pruning.Leaf(n.Depth, n.Counts, len(n.Candidates)) || !n.Splittable() {
			event.Rebuild, err = dt.rebuild(n, false)
			break
		}
		event.Touched++
	}
	if event.Rebuild == nil && err == nil && dt.splittable(leaf) {
		event.Rebuild, err = dt.rebuild(leaf, true)
	}
	if err != nil {
		return err
	}
	event.Duration = time.Since(start)
	if add {
		dt.adds.Observe(event)
	} else {
		dt.removals.Observe(event)
	}
	return nil
}

// splittable returns whether a leaf no longer satisfies the stop rules
// and has a valid partition.
func (dt *Tree) splittable(leaf *tree.Node) bool {
	candidates := dt.structure.Available(leaf.ID)
	if dt.pruning.Leaf(leaf.Depth, leaf.Counts, len(candidates)) {
		return false
	}
	counts, branches := BranchCounts(dt.structure.Collect(leaf.ID), candidates)
	return len(dt.sampler.Partitions(counts, candidates, branches)) > 0
}

func (dt *Tree) rebuild(n *tree.Node, converted bool) (*stats.Rebuild, error) {
	ctx := context.Background()
	q := queue.New()
	count, err := Reseed(ctx, dt.structure, n.ID, dt.rng.Int63(), q)
	if err != nil {
		return nil, err
	}
	err = Grow(ctx, dt.structure, q, &dt.sampler, &dt.pruning, dt.config.NJobs)
	if err != nil {
		return nil, errors.Wrapf(err, "rebuilding node %d", n.ID)
	}
	log.Debugf("rebuilt node %d at depth %d from %d instances", n.ID, n.Depth, count)
	return &stats.Rebuild{Depth: n.Depth, Instances: count, Converted: converted}, nil
}

// AddStatistics returns the cumulative statistics of adds.
func (dt *Tree) AddStatistics() stats.Snapshot {
	return dt.adds.Snapshot()
}

// RemovalStatistics returns the cumulative statistics of deletes.
func (dt *Tree) RemovalStatistics() stats.Snapshot {
	return dt.removals.Snapshot()
}

// Len returns the number of instances the tree holds.
func (dt *Tree) Len() int {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	if dt.structure == nil {
		return 0
	}
	return len(dt.structure.Instances)
}

// NodeCount returns the number of nodes of the tree.
func (dt *Tree) NodeCount() int {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	if dt.structure == nil {
		return 0
	}
	return dt.structure.Count()
}

// MemoryUsage returns an estimate in bytes of the memory held by the tree.
func (dt *Tree) MemoryUsage() int {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	if dt.structure == nil {
		return 0
	}
	return dt.structure.MemoryUsage()
}

// CheckInvariants returns an error describing the first structural
// inconsistency of the tree, if any.
func (dt *Tree) CheckInvariants() error {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	if dt.structure == nil {
		return ErrNotFitted
	}
	return dt.structure.Check()
}

func (dt *Tree) String() string {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	if dt.structure == nil {
		return "[unfitted tree]\n"
	}
	return dt.structure.String()
}
