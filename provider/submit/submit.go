// Package submit implements the submit provider of spec.md §4.D: a
// long-lived provider owning an eventfd and a work queue, letting any
// thread schedule a closure onto the monitor's loop thread in FIFO order.
package submit

import (
	"sync"

	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/xerrors"
)

// Provider is the submit provider. Construct with New, register it with a
// Monitor via ManageKeyed so other goroutines can Find and Submit to it.
type Provider struct {
	reactor.BaseProvider

	fd int

	mu     sync.Mutex
	closed bool
	queue  []func()
}

// New creates the eventfd and queue. The caller still must Manage it on a
// monitor before Submit can make progress.
func New() (*Provider, error) {
	fd, err := createEventFD()
	if err != nil {
		return nil, xerrors.Errno(err, "create submit eventfd")
	}
	return &Provider{fd: fd}, nil
}

func (p *Provider) Fd() int { return p.fd }

// Submit enqueues fn and posts one wake-up unit. Safe from any goroutine.
// Between successive Submit calls from the same caller, fn runs on the
// loop thread in enqueue order; across callers, order is lock-acquisition
// order into the queue.
func (p *Provider) Submit(fn func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return xerrors.New(xerrors.Closed, "submit provider closed")
	}
	p.queue = append(p.queue, fn)
	p.mu.Unlock()
	return postOne(p.fd)
}

// OnEvent drains the eventfd counter n and dequeues exactly n closures,
// invoking each on the loop thread.
func (p *Provider) OnEvent(m *reactor.Monitor, fd int, events uint32) {
	n, err := drain(fd)
	if err != nil || n == 0 {
		return
	}

	p.mu.Lock()
	take := int(n)
	if take > len(p.queue) {
		take = len(p.queue)
	}
	jobs := p.queue[:take]
	p.queue = p.queue[take:]
	p.mu.Unlock()

	for _, fn := range jobs {
		fn()
	}
}

// Close marks the provider closed; further Submit calls fail. It does not
// unmanage the fd — call Monitor.Unmanage separately if needed.
func (p *Provider) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

var _ reactor.Provider = (*Provider)(nil)
