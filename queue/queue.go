package queue

import (
	"context"
	"fmt"
	"sync"
)

// Queue represents a queue where tasks to develop
// tree nodes can be pushed and pulled. A worker
// will use the Pull method to obtain a task, process
// it and then either complete it or drop it halfway.
//
// All its methods have a context.Context as first
// parameter and fail with its error once it is done.
type Queue interface {
	// Push takes a task and stores it in the queue or
	// returns an error. The task will count as pending.
	Push(context.Context, *Task) error
	// Pull returns the oldest pending task or an error.
	// The pulled task will be counted as running from
	// then on. If there are no tasks to pull it returns
	// nil values.
	Pull(context.Context) (*Task, error)
	// Drop takes the ID of a running task and makes it
	// pending again. Dropping a completed task does
	// nothing.
	Drop(context.Context, int) error
	// Complete takes the ID of a task and removes it
	// from the running state.
	Complete(context.Context, int) error
	// Count returns the number of pending and running
	// tasks in the queue or an error.
	Count(context.Context) (int, int, error)
}

type memQueue struct {
	pendingTasks []*Task
	head         int
	tail         int
	pending      int
	runningTasks map[int]*Task
	lock         *sync.Mutex
}

// New returns a queue backed only by the process memory
func New() Queue {
	return &memQueue{
		runningTasks: make(map[int]*Task),
		lock:         &sync.Mutex{},
	}
}

func (mq *memQueue) Push(ctx context.Context, t *Task) error {
	return mq.withLock(ctx, func() {
		mq.push(t)
	})
}

func (mq *memQueue) Pull(ctx context.Context) (*Task, error) {
	var task *Task
	err := mq.withLock(ctx, func() {
		if mq.pending == 0 {
			return
		}
		mq.pending--
		task = mq.pendingTasks[mq.head]
		mq.pendingTasks[mq.head] = nil
		mq.head = (mq.head + 1) % len(mq.pendingTasks)
		mq.runningTasks[task.ID()] = task
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (mq *memQueue) Drop(ctx context.Context, id int) error {
	return mq.withLock(ctx, func() {
		t, ok := mq.runningTasks[id]
		if !ok {
			return
		}
		delete(mq.runningTasks, id)
		mq.push(t)
	})
}

func (mq *memQueue) Complete(ctx context.Context, id int) error {
	return mq.withLock(ctx, func() {
		delete(mq.runningTasks, id)
	})
}

func (mq *memQueue) Count(ctx context.Context) (int, int, error) {
	var pending, running int
	err := mq.withLock(ctx, func() {
		pending = mq.pending
		running = len(mq.runningTasks)
	})
	if err != nil {
		return 0, 0, err
	}
	return pending, running, nil
}

func (mq *memQueue) String() string {
	return fmt.Sprintf("{Queue pending: %d running: %d head:%d tail:%d}", mq.pending, len(mq.runningTasks), mq.head, mq.tail)
}

func (mq *memQueue) push(t *Task) {
	if mq.pending == len(mq.pendingTasks) {
		mq.reorder()
		mq.pendingTasks = append(mq.pendingTasks, t)
		mq.tail = 0
	} else {
		mq.pendingTasks[mq.tail] = t
	}
	mq.pending++
	mq.tail = (mq.head + mq.pending) % len(mq.pendingTasks)
}

// reorder moves the pending tasks to the front of the ring so
// that it can grow by appending.
func (mq *memQueue) reorder() {
	if mq.head == 0 {
		return
	}
	mq.pendingTasks = append(mq.pendingTasks[mq.head:], mq.pendingTasks[:mq.head]...)
	mq.head = 0
}

func (mq *memQueue) withLock(ctx context.Context, f func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mq.lock.Lock()
	defer mq.lock.Unlock()
	f()
	return nil
}
