package fsm

import (
	"reflect"
	"sync"
)

// Machine couples a Driver with a condition-variable-guarded queue, giving
// callers a blocking loop() per spec.md §4.E.
type Machine[S comparable, E comparable] struct {
	driver *Driver[S, E]

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []E
	closed bool
}

// NewMachine wraps driver.
func NewMachine[S comparable, E comparable](driver *Driver[S, E]) *Machine[S, E] {
	m := &Machine[S, E]{driver: driver}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Commit enqueues event for the loop goroutine to process.
func (m *Machine[S, E]) Commit(event E) {
	m.mu.Lock()
	if !m.closed {
		m.queue = append(m.queue, event)
		m.cond.Signal()
	}
	m.mu.Unlock()
}

// Close stops Loop once the queue drains.
func (m *Machine[S, E]) Close() {
	m.mu.Lock()
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()
}

// Loop starts the driver with trigger, then repeatedly waits for the next
// queued event and transits until the current-state vector equals
// terminals, or the machine is closed.
func (m *Machine[S, E]) Loop(ctx any, trigger E, terminals []S) error {
	if err := m.driver.Start(); err != nil {
		return err
	}
	if err := m.driver.Transit(ctx, trigger); err != nil {
		return err
	}
	if stateVectorEqual(m.driver.Current(), terminals) {
		return nil
	}

	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.cond.Wait()
		}
		if len(m.queue) == 0 && m.closed {
			m.mu.Unlock()
			return nil
		}
		ev := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		_ = m.driver.Transit(ctx, ev)
		if stateVectorEqual(m.driver.Current(), terminals) {
			return nil
		}
	}
}

func stateVectorEqual[S comparable](a, b []S) bool {
	return reflect.DeepEqual(a, b)
}
