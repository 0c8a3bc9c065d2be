/*
Package dare grows decision trees and random forests over binary attributes
that can unlearn training instances, and learn new ones, without being
retrained from scratch.

Split attributes are drawn with the exponential mechanism, so most adds and
deletes only update the tallies cached along the path of the instance. A
node is rebuilt from its instances once it has absorbed more changes than
its retrain threshold allows.
*/
package dare

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jjbrophy47/dare/dataset"
	"github.com/jjbrophy47/dare/feature"
	"github.com/jjbrophy47/dare/queue"
	"github.com/jjbrophy47/dare/tree"
)

var log = logrus.WithField("component", "dare")

const emptyQueueSleep = time.Millisecond

// Seed takes a context, a tree, the instances to grow it from, a random
// seed and a queue and sets everything up so that workers that consume
// from the queue afterwards grow the tree.
// Specifically it will create the root node of the tree on its node
// store and push a task to branch it out on the queue.
func Seed(ctx context.Context, t *tree.Tree, instances []dataset.Instance, seed int64, q queue.Queue) error {
	n := tree.NewLeaf(0, nil)
	t.Create(n)
	t.RootID = n.ID
	task := &queue.Task{
		NodeID:     n.ID,
		Instances:  instances,
		Candidates: t.Available(n.ID),
		Seed:       seed,
	}
	err := q.Push(ctx, task)
	if err != nil {
		t.Delete(n)
		t.RootID = -1
		return err
	}
	return nil
}

/*
Reseed takes a context, a tree, the index of one of its nodes, a random
seed and a queue, discards the subtree under the node and pushes a task to
grow it again in place from the instances it held. The label tallies cached
by an internal node are reused. It returns the number of instances the
subtree will be grown from.
*/
func Reseed(ctx context.Context, t *tree.Tree, nodeID int, seed int64, q queue.Queue) (int, error) {
	n := t.Get(nodeID)
	if n == nil {
		return 0, errors.Errorf("reseeding unknown node %d", nodeID)
	}
	instances := t.Collect(nodeID)
	task := &queue.Task{
		NodeID:     nodeID,
		Depth:      n.Depth,
		Instances:  instances,
		Candidates: t.Available(nodeID),
		Seed:       seed,
	}
	if !n.Leaf {
		task.Counts = n.Counts
		task.Branches = append([][2]int(nil), n.Branches...)
	}
	t.Discard(nodeID)
	return len(instances), q.Push(ctx, task)
}

// BranchOut takes a context, a task, a tree, a sampler and a pruning
// strategy and develops the node in the task using the task's instances
// and candidate attributes. The node becomes a leaf holding the instances
// or an internal node, in which case tasks to develop both of its children
// are returned.
func BranchOut(ctx context.Context, task *queue.Task, t *tree.Tree, s *Sampler, ps *PruningStrategy) ([]*queue.Task, error) {
	old := t.Get(task.NodeID)
	if old == nil {
		return nil, errors.Errorf("branching out unknown node %d", task.NodeID)
	}
	counts, branches := task.Counts, task.Branches
	if branches == nil {
		counts, branches = BranchCounts(task.Instances, task.Candidates)
	}
	var selected *Partition
	if !ps.Leaf(task.Depth, counts, len(task.Candidates)) {
		r := rand.New(rand.NewSource(task.Seed))
		n := counts[0] + counts[1]
		partitions := s.Partitions(counts, task.Candidates, branches)
		if s.Random(task.Depth) {
			selected = s.Uniform(r, partitions)
		} else {
			selected = s.Select(r, partitions, n)
		}
		if selected != nil {
			return split(task, t, s, old.Parent, counts, branches, selected, r), nil
		}
	}
	leaf := tree.NewLeaf(task.Depth, task.Instances)
	leaf.ID = task.NodeID
	leaf.Parent = old.Parent
	t.Store(leaf)
	t.Assign(leaf)
	return nil, nil
}

func split(task *queue.Task, t *tree.Tree, s *Sampler, parent int, counts [2]int, branches [][2]int, p *Partition, r *rand.Rand) []*queue.Task {
	n := tree.NewInternal(task.Depth, p.Attribute, counts, task.Candidates, branches, s.Threshold(counts[0]+counts[1]))
	n.ID = task.NodeID
	n.Parent = parent
	n.Random = s.Random(task.Depth)
	var sides [2][]dataset.Instance
	for _, i := range task.Instances {
		v := i.Features[p.Attribute]
		sides[v] = append(sides[v], i)
	}
	candidates := feature.Mask(task.Candidates).Without(p.Attribute)
	tasks := make([]*queue.Task, 2)
	for v, instances := range sides {
		child := tree.NewLeaf(task.Depth+1, nil)
		child.Parent = n.ID
		t.Create(child)
		if v == 0 {
			n.Left = child.ID
		} else {
			n.Right = child.ID
		}
		tasks[v] = &queue.Task{
			NodeID:     child.ID,
			Depth:      task.Depth + 1,
			Instances:  instances,
			Candidates: candidates,
			Seed:       r.Int63(),
		}
	}
	t.Store(n)
	return tasks
}

// Work takes a context, a tree, a queue, a sampler, a pruning strategy
// and an emptyQueueSleep duration and enters a loop in which it:
//   - pulls a task from the queue,
//   - branches its node out using BranchOut,
//   - pushes the tasks for the new children into the queue,
//   - marks the task as completed on the queue.
//
// If no task can be pulled and there are no tasks pending or running
// on the queue, the worker ends returning nil. If no task can be pulled
// but others are running, the worker sleeps for emptyQueueSleep and
// retries.
//
// Work returns a non-nil error if the context is cancelled, if
// BranchOut fails or if an operation on the queue fails.
func Work(ctx context.Context, t *tree.Tree, q queue.Queue, s *Sampler, ps *PruningStrategy, emptyQueueSleep time.Duration) error {
	for {
		task, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if task == nil {
			p, r, err := q.Count(ctx)
			if err != nil {
				return err
			}
			if p+r == 0 {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(emptyQueueSleep):
			}
			continue
		}
		err = workTask(ctx, task, t, q, s, ps)
		if err != nil {
			return err
		}
	}
}

func workTask(ctx context.Context, task *queue.Task, t *tree.Tree, q queue.Queue, s *Sampler, ps *PruningStrategy) (e error) {
	defer func() {
		if e != nil {
			q.Drop(context.Background(), task.ID())
		}
	}()
	tasks, err := BranchOut(ctx, task, t, s, ps)
	if err != nil {
		return err
	}
	for _, st := range tasks {
		err = q.Push(ctx, st)
		if err != nil {
			return err
		}
	}
	return q.Complete(ctx, task.ID())
}

/*
Grow takes a context, a tree, a queue with its seed tasks, a sampler, a
pruning strategy and a number of workers and runs the workers until the
queue is drained. A single worker runs on the calling goroutine.
*/
func Grow(ctx context.Context, t *tree.Tree, q queue.Queue, s *Sampler, ps *PruningStrategy, workers int) error {
	if workers <= 1 {
		return Work(ctx, t, q, s, ps, emptyQueueSleep)
	}
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			return Work(gctx, t, q, s, ps, emptyQueueSleep)
		})
	}
	return g.Wait()
}
