package queue

import (
	"sync"
	"time"

	"github.com/lattice-io/reactorcore/xerrors"
)

// JobQueue wraps Queue, additionally tracking an "uncommitted" count: Get
// retrieves an item and increments it, Commit decrements it. The
// Closing->Closed transition is the embedded Queue's: it happens when the
// last item is popped, whether or not that item has been committed yet;
// the uncommitted count gates only WaitFinished.
type JobQueue[T any] struct {
	*Queue[T]

	mu          sync.Mutex
	uncommitted int
	finishedAt  *sync.Cond
}

// NewJobQueue creates an Alive, empty JobQueue.
func NewJobQueue[T any]() *JobQueue[T] {
	jq := &JobQueue[T]{Queue: New[T]()}
	jq.finishedAt = sync.NewCond(&jq.mu)
	return jq
}

// Get pops an item and counts it uncommitted until Commit is called.
func (jq *JobQueue[T]) Get(timeout time.Duration) (T, error) {
	v, err := jq.Queue.Pop(timeout)
	if err != nil {
		var zero T
		return zero, err
	}
	jq.mu.Lock()
	jq.uncommitted++
	jq.mu.Unlock()
	return v, nil
}

// Commit acknowledges one previously-Get item.
func (jq *JobQueue[T]) Commit() {
	jq.mu.Lock()
	if jq.uncommitted > 0 {
		jq.uncommitted--
	}
	idle := jq.uncommitted == 0
	jq.mu.Unlock()
	if idle {
		jq.finishedAt.Broadcast()
	}
}

// Abort aborts the underlying queue and wakes any WaitFinished caller so it
// returns Error(BrokenPipe).
func (jq *JobQueue[T]) Abort() {
	jq.Queue.Abort()
	jq.mu.Lock()
	jq.finishedAt.Broadcast()
	jq.mu.Unlock()
}

// Uncommitted returns the number of items Get has returned without a
// matching Commit.
func (jq *JobQueue[T]) Uncommitted() int {
	jq.mu.Lock()
	defer jq.mu.Unlock()
	return jq.uncommitted
}

// WaitFinished blocks until the queue is empty and every fetched item has
// been committed, or until timeout elapses / the queue is aborted.
func (jq *JobQueue[T]) WaitFinished(timeout time.Duration) error {
	deadline, hasDeadline := deadlineOf(timeout)
	if hasDeadline {
		timer := time.AfterFunc(time.Until(deadline), func() {
			jq.mu.Lock()
			jq.finishedAt.Broadcast()
			jq.mu.Unlock()
		})
		defer timer.Stop()
	}

	jq.mu.Lock()
	defer jq.mu.Unlock()
	for {
		if jq.Queue.State() == Aborted {
			return xerrors.New(xerrors.BrokenPipe, "queue aborted")
		}
		if jq.uncommitted == 0 && jq.Queue.Len() == 0 {
			return nil
		}
		if hasDeadline && !time.Now().Before(deadline) {
			return xerrors.New(xerrors.Timeout, "wait_finished timed out")
		}
		jq.finishedAt.Wait()
	}
}
