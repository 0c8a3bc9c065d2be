package dare

import (
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/jjbrophy47/dare/dataset"
	"github.com/jjbrophy47/dare/feature"
	"github.com/jjbrophy47/dare/stats"
)

// membership maps the identifiers of the instances of a forest to the
// keys of their copies in one of its trees.
type membership struct {
	keys map[int][]int
	next int
}

func (m *membership) admit(id int) int {
	k := m.next
	m.next++
	m.keys[id] = append(m.keys[id], k)
	return k
}

/*
Forest is a random forest of unlearning trees. Each tree is grown from its
own random source, on a bootstrap sample of the instances when enabled,
and may only split on a random subset of the attributes.
*/
type Forest struct {
	config Config
	rng    *rand.Rand

	mu        sync.RWMutex
	trees     []*Tree
	members   []*membership
	instances map[int]dataset.Instance
	width     int
	nextID    int

	// statistics of the trees replaced by refits
	retiredAdds, retiredRemovals stats.Snapshot
}

// NewForest takes a configuration and returns an unfitted forest or an
// error wrapping ErrInvalidConfig.
func NewForest(config Config) (*Forest, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Forest{
		config: config,
		rng:    rand.New(rand.NewSource(seedFor(config))),
	}, nil
}

/*
Fit takes a matrix of binary attributes and a vector of binary labels and
grows every tree of the forest concurrently. Tree seeds, attribute masks
and bootstrap samples are drawn from the forest random source beforehand,
so the result does not depend on scheduling.
*/
func (f *Forest) Fit(X [][]int, y []int) error {
	if len(X) == 0 {
		return errors.Wrap(ErrShapeMismatch, "fitting on no rows")
	}
	instances, err := dataset.Instances(X, y, 0, -1)
	if err != nil {
		return err
	}
	width := len(X[0])
	size, err := f.config.MaxFeatures.Resolve(width)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.config.NEstimators
	trees := make([]*Tree, n)
	members := make([]*membership, n)
	samples := make([][]dataset.Instance, n)
	for t := range trees {
		seed := f.rng.Int63()
		mask := feature.SampleMask(f.rng, width, size)
		trees[t] = newTree(f.config, seed, mask)
		trees[t].member = true
		members[t] = &membership{keys: make(map[int][]int)}
		samples[t] = f.sample(instances, members[t])
	}
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range trees {
		t := t
		g.Go(func() error {
			return errors.Wrapf(trees[t].fit(samples[t], width), "fitting tree %d", t)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if f.trees != nil {
		f.retiredAdds = f.addStatistics()
		f.retiredRemovals = f.removalStatistics()
	}
	f.trees, f.members, f.width = trees, members, width
	f.instances = make(map[int]dataset.Instance, len(instances))
	for _, i := range instances {
		f.instances[i.ID] = i
	}
	f.nextID = len(instances)
	log.Debugf("fitted forest of %d trees on %d instances", n, len(instances))
	return nil
}

// sample returns the copies of the instances a tree is grown from and
// records their keys in its membership.
func (f *Forest) sample(instances []dataset.Instance, m *membership) []dataset.Instance {
	if !f.config.Bootstrap {
		result := make([]dataset.Instance, len(instances))
		for k, i := range instances {
			m.keys[i.ID] = []int{i.ID}
			result[k] = i
		}
		m.next = len(instances)
		return result
	}
	result := make([]dataset.Instance, len(instances))
	for k := range result {
		i := instances[f.rng.Intn(len(instances))]
		i.ID = m.admit(i.ID)
		result[k] = i
	}
	return result
}

/*
copyFor returns the copy of the k-th of a set of new instances offered to a
tree. The membership is left untouched until commit records it.
*/
func (f *Forest) copyFor(i dataset.Instance, m *membership, k int) dataset.Instance {
	if f.config.Bootstrap {
		i.ID = m.next + k
	}
	return i
}

// commit records in a membership the copies returned by copyFor, in order.
func (f *Forest) commit(instances []dataset.Instance, m *membership) {
	for _, i := range instances {
		if f.config.Bootstrap {
			m.admit(i.ID)
			continue
		}
		m.keys[i.ID] = []int{i.ID}
		if i.ID >= m.next {
			m.next = i.ID + 1
		}
	}
}

/*
PredictProba takes a matrix of binary attributes and returns, for every
row, the mean of the probabilities predicted by the trees. Tree
predictions are summed in tree order and then divided by the number of
trees.
*/
func (f *Forest) PredictProba(X [][]int) ([][2]float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.trees == nil {
		return nil, ErrNotFitted
	}
	rows, err := dataset.Rows(X, f.width)
	if err != nil {
		return nil, err
	}
	perTree := make([][][2]float64, len(f.trees))
	var wg sync.WaitGroup
	for t, dt := range f.trees {
		wg.Add(1)
		go func(t int, dt *Tree) {
			defer wg.Done()
			dt.mu.RLock()
			defer dt.mu.RUnlock()
			perTree[t] = dt.predictRows(rows)
		}(t, dt)
	}
	wg.Wait()
	result := make([][2]float64, len(rows))
	for _, probas := range perTree {
		for i, p := range probas {
			result[i][0] += p[0]
			result[i][1] += p[1]
		}
	}
	total := float64(len(f.trees))
	for i := range result {
		result[i][0] /= total
		result[i][1] /= total
	}
	return result, nil
}

// Predict takes a matrix of binary attributes and returns the most
// probable label for every row, 1 on ties.
func (f *Forest) Predict(X [][]int) ([]int, error) {
	probas, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return argmax(probas), nil
}

/*
Add takes a matrix of binary attributes and their labels, offers them to
every tree and returns the identifiers assigned to them. Nothing is added
unless every row is valid.
*/
func (f *Forest) Add(X [][]int, y []int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.trees == nil {
		return nil, ErrNotFitted
	}
	instances, err := dataset.Instances(X, y, f.nextID, f.width)
	if err != nil {
		return nil, err
	}
	copies := make([][]dataset.Instance, len(f.trees))
	for t, m := range f.members {
		for k, i := range instances {
			copies[t] = append(copies[t], f.copyFor(i, m, k))
		}
	}
	err = f.fanOut(func(t int, dt *Tree) error {
		return dt.insert(copies[t])
	})
	if err != nil {
		return nil, err
	}
	for _, m := range f.members {
		f.commit(instances, m)
	}
	ids := make([]int, len(instances))
	for k, i := range instances {
		f.instances[i.ID] = i
		ids[k] = i.ID
	}
	f.nextID += len(instances)
	return ids, nil
}

/*
Delete takes the identifiers of instances and unlearns them from every tree
holding a copy of them. It fails with ErrUnknownInstance, deleting nothing,
if any identifier is not held by the forest or is repeated.
*/
func (f *Forest) Delete(ids []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.trees == nil {
		return ErrNotFitted
	}
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if _, ok := f.instances[id]; !ok || seen[id] {
			return errors.Wrapf(ErrUnknownInstance, "deleting instance %d", id)
		}
		seen[id] = true
	}
	keys := make([][]int, len(f.trees))
	for t, m := range f.members {
		for _, id := range ids {
			keys[t] = append(keys[t], m.keys[id]...)
		}
	}
	err := f.fanOut(func(t int, dt *Tree) error {
		if len(keys[t]) == 0 {
			return nil
		}
		return dt.remove(keys[t])
	})
	if err != nil {
		return err
	}
	for _, m := range f.members {
		for _, id := range ids {
			delete(m.keys, id)
		}
	}
	for _, id := range ids {
		delete(f.instances, id)
	}
	return nil
}

// fanOut runs f with every tree under its write lock, concurrently.
func (f *Forest) fanOut(fn func(int, *Tree) error) error {
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t, dt := range f.trees {
		t, dt := t, dt
		g.Go(func() error {
			dt.mu.Lock()
			defer dt.mu.Unlock()
			return errors.Wrapf(fn(t, dt), "tree %d", t)
		})
	}
	return g.Wait()
}

// Trees returns the trees of the forest. They can be inspected and used
// for predictions but fail with ErrForestMember on Add, Delete and Fit.
func (f *Forest) Trees() []*Tree {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]*Tree(nil), f.trees...)
}

// AddStatistics returns the sum of the add statistics of the trees.
func (f *Forest) AddStatistics() stats.Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.addStatistics()
}

func (f *Forest) addStatistics() stats.Snapshot {
	snapshots := []stats.Snapshot{f.retiredAdds}
	for _, dt := range f.trees {
		snapshots = append(snapshots, dt.AddStatistics())
	}
	return stats.Merge(snapshots...)
}

// RemovalStatistics returns the sum of the delete statistics of the trees.
func (f *Forest) RemovalStatistics() stats.Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.removalStatistics()
}

func (f *Forest) removalStatistics() stats.Snapshot {
	snapshots := []stats.Snapshot{f.retiredRemovals}
	for _, dt := range f.trees {
		snapshots = append(snapshots, dt.RemovalStatistics())
	}
	return stats.Merge(snapshots...)
}

// Len returns the number of instances the forest holds.
func (f *Forest) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.instances)
}

// NodeCount returns the number of nodes of all the trees.
func (f *Forest) NodeCount() int {
	var total int
	for _, dt := range f.Trees() {
		total += dt.NodeCount()
	}
	return total
}

// MemoryUsage returns an estimate in bytes of the memory held by the trees.
func (f *Forest) MemoryUsage() int {
	var total int
	for _, dt := range f.Trees() {
		total += dt.MemoryUsage()
	}
	return total
}

/*
CheckInvariants checks every tree and that each of them holds exactly the
copies its membership records.
*/
func (f *Forest) CheckInvariants() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.trees == nil {
		return ErrNotFitted
	}
	for t, dt := range f.trees {
		if err := dt.CheckInvariants(); err != nil {
			return errors.Wrapf(err, "tree %d", t)
		}
		var copies int
		for id, keys := range f.members[t].keys {
			if _, ok := f.instances[id]; !ok {
				return errors.Errorf("tree %d holds unknown instance %d", t, id)
			}
			copies += len(keys)
		}
		if n := dt.Len(); n != copies {
			return errors.Errorf("tree %d holds %d instances, membership records %d", t, n, copies)
		}
	}
	return nil
}

func (f *Forest) String() string {
	var b strings.Builder
	for t, dt := range f.Trees() {
		fmt.Fprintf(&b, "tree %d:\n%v\n", t, dt)
	}
	return b.String()
}
