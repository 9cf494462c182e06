package queue

import (
	"sync"
	"time"

	"github.com/lattice-io/reactorcore/xerrors"
)

// WeightFunc assigns a weight to an item, used by WeightQueue to decide
// when a producer should block.
type WeightFunc[T any] func(T) int

// WeightQueue is a condvar FIFO where each item carries a weight; Push
// blocks while adding the item would exceed the configured limit (spec.md
// §3: "a producer blocks if adding exceeds a configured limit").
type WeightQueue[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []T
	weightOf WeightFunc[T]
	limit    int
	total    int
	state    State
}

// NewWeightQueue creates a WeightQueue with capacity limit, weighing items
// via weightOf.
func NewWeightQueue[T any](limit int, weightOf WeightFunc[T]) *WeightQueue[T] {
	q := &WeightQueue[T]{weightOf: weightOf, limit: limit, state: Alive}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push blocks until total+weight(v) <= limit (or the queue stops being
// Alive), then enqueues v.
func (q *WeightQueue[T]) Push(v T) error {
	w := q.weightOf(v)
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.state == Alive && q.total+w > q.limit && q.limit > 0 {
		q.cond.Wait()
	}
	if q.state != Alive {
		return xerrors.New(xerrors.BrokenPipe, "queue is not alive")
	}
	q.items = append(q.items, v)
	q.total += w
	q.cond.Signal()
	return nil
}

// Pop waits up to timeout for an item, returning it and waking any producer
// blocked on capacity.
func (q *WeightQueue[T]) Pop(timeout time.Duration) (T, error) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()

	deadline, hasDeadline := deadlineOf(timeout)
	if hasDeadline {
		timer := time.AfterFunc(time.Until(deadline), func() {
			q.mu.Lock()
			q.cond.Broadcast()
			q.mu.Unlock()
		})
		defer timer.Stop()
	}

	for len(q.items) == 0 {
		if q.state == Closed || q.state == Aborted {
			return zero, xerrors.New(xerrors.BrokenPipe, "queue closed")
		}
		if hasDeadline && !time.Now().Before(deadline) {
			return zero, xerrors.New(xerrors.Timeout, "pop timed out")
		}
		q.cond.Wait()
	}
	v := q.items[0]
	q.items = q.items[1:]
	q.total -= q.weightOf(v)
	if len(q.items) == 0 && q.state == Closing {
		q.state = Closed
	}
	q.cond.Broadcast()
	return v, nil
}

// Close transitions to Closing/Closed as Queue.Close does.
func (q *WeightQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != Alive {
		return
	}
	if len(q.items) == 0 {
		q.state = Closed
	} else {
		q.state = Closing
	}
	q.cond.Broadcast()
}

// Abort discards pending items and unblocks every waiter immediately.
func (q *WeightQueue[T]) Abort() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.total = 0
	q.state = Aborted
	q.cond.Broadcast()
}

// State returns the current lifecycle state.
func (q *WeightQueue[T]) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}
