package reactor

import (
	"fmt"
	"sync"
	"time"

	"github.com/lattice-io/reactorcore/xerrors"
)

// DispatchHook is called after every OnEvent dispatch, naming the concrete
// provider type and how long the handler took. Monitor stays agnostic of
// *what* observes this (metrics, logging, ...); SetDispatchHook wires it in
// from the outermost layer, keeping reactor itself free of a prometheus
// dependency (SPEC_FULL.md §4.D).
type DispatchHook func(providerKind string, dur time.Duration)

// ManagedHook is called after Manage/Unmanage with the new provider count.
type ManagedHook func(count int)

// Monitor is the single-threaded event loop of spec.md §4.D. Exactly one
// goroutine is expected to call Loop/Forever; the primary fd->provider map
// is touched only from that goroutine, so it needs no lock. The keyed
// lookup map is guarded separately since Find may be called cross-thread
// (e.g. to resolve the submit provider at setup time).
type Monitor struct {
	p *poller

	// primary map: owned exclusively by the loop goroutine.
	providers map[int]Provider
	suspended map[int]uint32 // fds currently suspended (value is always 0)

	keyMu sync.Mutex
	keyed map[string]Provider

	dispatchHook DispatchHook
	managedHook  ManagedHook
}

// SetDispatchHook installs fn to observe every OnEvent call. Pass nil to
// disable.
func (m *Monitor) SetDispatchHook(fn DispatchHook) { m.dispatchHook = fn }

// SetManagedHook installs fn to observe the managed-provider count after
// every Manage/Unmanage. Pass nil to disable.
func (m *Monitor) SetManagedHook(fn ManagedHook) { m.managedHook = fn }

// New creates a Monitor and its underlying epoll/kqueue fd.
func New() (*Monitor, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}
	return &Monitor{
		p:         p,
		providers: make(map[int]Provider),
		suspended: make(map[int]uint32),
		keyed:     make(map[string]Provider),
	}, nil
}

// Close tears down the underlying poller fd. Callers should Unmanage every
// provider first.
func (m *Monitor) Close() error {
	return m.p.close()
}

// Manage registers provider under its own fd, with events defaulting to the
// provider's DefaultEvents(), and calls OnManage.
func (m *Monitor) Manage(provider Provider, events ...uint32) error {
	return m.manage("", provider, events...)
}

// ManageKeyed additionally records provider under key, retrievable via
// Find.
func (m *Monitor) ManageKeyed(key string, provider Provider, events ...uint32) error {
	return m.manage(key, provider, events...)
}

func (m *Monitor) manage(key string, provider Provider, events ...uint32) error {
	fd := provider.Fd()
	if _, exists := m.providers[fd]; exists {
		return xerrors.New(xerrors.AlreadyExists, "fd already managed")
	}
	ev := provider.DefaultEvents()
	if len(events) > 0 {
		ev = events[0]
	}
	if err := m.p.add(fd, ev); err != nil {
		return err
	}
	m.providers[fd] = provider
	if key != "" {
		m.keyMu.Lock()
		m.keyed[key] = provider
		m.keyMu.Unlock()
	}
	provider.OnManage(m, fd)
	if m.managedHook != nil {
		m.managedHook(len(m.providers))
	}
	return nil
}

// ChangeFD transfers a provider's identity from oldFd to newFd, without a
// window where the fd is unregistered: the connector uses this so another
// thread can't claim a recycled fd number in between.
func (m *Monitor) ChangeFD(oldFd, newFd int, events uint32) error {
	provider, ok := m.providers[oldFd]
	if !ok {
		return xerrors.New(xerrors.NotFound, "fd not managed")
	}
	if err := m.p.add(newFd, events); err != nil {
		return err
	}
	_ = m.p.remove(oldFd)
	delete(m.providers, oldFd)
	delete(m.suspended, oldFd)
	m.providers[newFd] = provider
	return nil
}

// ChangeEvent updates the epoll/kqueue interest set for fd.
func (m *Monitor) ChangeEvent(fd int, events uint32) error {
	if _, ok := m.providers[fd]; !ok {
		return xerrors.New(xerrors.NotFound, "fd not managed")
	}
	return m.p.modify(fd, events)
}

// ChangeProvider atomically swaps the provider registered at fd (e.g. the
// connector replacing itself with a receiver on successful connect), without
// touching the poller registration.
func (m *Monitor) ChangeProvider(fd int, newProvider Provider) error {
	if _, ok := m.providers[fd]; !ok {
		return xerrors.New(xerrors.NotFound, "fd not managed")
	}
	m.providers[fd] = newProvider
	return nil
}

// Suspend removes fd from the poller's interest set without discarding the
// provider, so Resume can re-add it later.
func (m *Monitor) Suspend(fd int) error {
	if _, ok := m.providers[fd]; !ok {
		return xerrors.New(xerrors.NotFound, "fd not managed")
	}
	if err := m.p.remove(fd); err != nil {
		return err
	}
	m.suspended[fd] = 0
	return nil
}

// Resume re-adds a previously suspended fd with the given interest set.
func (m *Monitor) Resume(fd int, events uint32) error {
	if _, ok := m.providers[fd]; !ok {
		return xerrors.New(xerrors.NotFound, "fd not managed")
	}
	delete(m.suspended, fd)
	return m.p.add(fd, events)
}

// Unmanage removes fd from the poller, calls OnUnmanage, and drops the
// owning reference.
func (m *Monitor) Unmanage(fd int) error {
	provider, ok := m.providers[fd]
	if !ok {
		return xerrors.New(xerrors.NotFound, "fd not managed")
	}
	_ = m.p.remove(fd)
	delete(m.providers, fd)
	delete(m.suspended, fd)
	provider.OnUnmanage(m, fd)
	if m.managedHook != nil {
		m.managedHook(len(m.providers))
	}
	return nil
}

// Find returns the provider registered under key via ManageKeyed.
func (m *Monitor) Find(key string) (Provider, bool) {
	m.keyMu.Lock()
	defer m.keyMu.Unlock()
	p, ok := m.keyed[key]
	return p, ok
}

// Len reports how many fds are currently in the primary map.
func (m *Monitor) Len() int {
	return len(m.providers)
}

// Loop runs epoll_wait/dispatch until the primary map is empty.
func (m *Monitor) Loop() error {
	for len(m.providers) > 0 {
		if err := m.p.wait(-1, m.dispatch); err != nil {
			return err
		}
	}
	return nil
}

// Forever runs Loop, ignoring the empty-map exit condition by blocking
// indefinitely even if a caller adds providers back after draining to zero.
// Use Loop for the spec's default "run until the primary map is empty"
// semantics.
func (m *Monitor) Forever() error {
	for {
		if err := m.p.wait(-1, m.dispatch); err != nil {
			return err
		}
	}
}

func (m *Monitor) dispatch(fd int, events uint32) {
	provider, ok := m.providers[fd]
	if !ok {
		return
	}
	if m.dispatchHook == nil {
		provider.OnEvent(m, fd, events)
		return
	}
	start := time.Now()
	provider.OnEvent(m, fd, events)
	m.dispatchHook(fmt.Sprintf("%T", provider), time.Since(start))
}
