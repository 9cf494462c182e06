// Package fsmprovider implements the FSM provider of spec.md §4.D/§4.E: an
// eventfd-backed provider that drains a queue of committed events into a
// fsm.Driver from inside the monitor loop, rather than a dedicated thread
// (that's fsm.Machine's job).
package fsmprovider

import (
	"sync"

	"github.com/lattice-io/reactorcore/fsm"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/xerrors"
)

// Provider couples an eventfd with a fsm.Driver[S, E]. Commit is safe from
// any goroutine; OnEvent (driving the actual transitions) only ever runs on
// the monitor's loop goroutine.
type Provider[S comparable, E comparable] struct {
	reactor.BaseProvider

	fd     int
	driver *fsm.Driver[S, E]

	mu    sync.Mutex
	queue []E
}

// Manage creates the eventfd, registers the provider under key, and starts
// driver (validating its combined/partial invariants).
func Manage[S comparable, E comparable](m *reactor.Monitor, key string, driver *fsm.Driver[S, E]) (*Provider[S, E], error) {
	if err := driver.Start(); err != nil {
		return nil, err
	}
	fd, err := createEventFD()
	if err != nil {
		return nil, xerrors.Errno(err, "create fsm eventfd")
	}
	p := &Provider[S, E]{fd: fd, driver: driver}
	if err := m.ManageKeyed(key, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Find looks up a keyed fsmprovider.Provider[S, E] on m, downcasting the
// generic reactor.Provider the monitor actually stores.
func Find[S comparable, E comparable](m *reactor.Monitor, key string) (*Provider[S, E], bool) {
	p, ok := m.Find(key)
	if !ok {
		return nil, false
	}
	tp, ok := p.(*Provider[S, E])
	return tp, ok
}

func (p *Provider[S, E]) Fd() int { return p.fd }

// Driver exposes the underlying driver, e.g. for Current()/Reset().
func (p *Provider[S, E]) Driver() *fsm.Driver[S, E] { return p.driver }

// Commit enqueues event and wakes the loop thread.
func (p *Provider[S, E]) Commit(event E) error {
	p.mu.Lock()
	p.queue = append(p.queue, event)
	p.mu.Unlock()
	return postOne(p.fd)
}

// OnEvent drains the eventfd counter and transits the driver once per
// queued event, in commit order.
func (p *Provider[S, E]) OnEvent(m *reactor.Monitor, fd int, events uint32) {
	n, err := drain(fd)
	if err != nil || n == 0 {
		return
	}
	for i := uint64(0); i < n; i++ {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.mu.Unlock()
			break
		}
		ev := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		_ = p.driver.Transit(nil, ev)
	}
}
