// Package flagsync implements the flag-sync provider of spec.md §4.D: a
// long-lived eventfd-backed provider that serialises updates to a shared
// flags word and notifies subscribers once their required bits are all
// set, clearing those bits before invoking the callback.
package flagsync

import (
	"sync"

	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/xerrors"
)

// DefaultKey is the ManageKeyed key service.FlagSync looks the provider up
// under, mirroring ext/flagsync.hpp's manage_key.
const DefaultKey = "reactorcore.flagsync"

// Flags is the shared bitset type.
type Flags = uint32

// Callback receives the flags word (post-clear of its own required bits)
// when a subscription's requirement is satisfied.
type Callback func(flags *Flags)

// CallbackID identifies a subscription for later Unassign.
type CallbackID uint64

type pendingUpdate struct{ on, off Flags }

type subscription struct {
	id       CallbackID
	required Flags
	cb       Callback
}

// Provider is the flag-sync provider. Construct with New or Manage.
//
// Unlike the original's std::weak_ptr<void> owner field, subscriptions here
// have no independent liveness check; callers must Unassign explicitly when
// the owning object goes away (see DESIGN.md).
type Provider struct {
	reactor.BaseProvider

	fd int

	queueMu sync.Mutex
	queue   []pendingUpdate

	subMu  sync.Mutex
	subs   []subscription
	nextID uint64

	flags Flags // touched only from the loop goroutine
}

// New creates the eventfd; the caller must Manage or ManageKeyed it on a
// Monitor before Update takes effect.
func New() (*Provider, error) {
	fd, err := createEventFD()
	if err != nil {
		return nil, xerrors.Errno(err, "create flagsync eventfd")
	}
	return &Provider{fd: fd}, nil
}

// Manage creates a Provider and registers it under DefaultKey.
func Manage(m *reactor.Monitor) (*Provider, error) {
	p, err := New()
	if err != nil {
		return nil, err
	}
	if err := m.ManageKeyed(DefaultKey, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) Fd() int { return p.fd }

// Assign registers a subscription: once flags&required == required,
// callback fires (with required cleared from flags first), and the
// subscription is NOT automatically removed — register a one-shot
// unsubscribe from inside the callback if that's the desired behaviour.
func (p *Provider) Assign(required Flags, cb Callback) CallbackID {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	p.nextID++
	id := CallbackID(p.nextID)
	p.subs = append(p.subs, subscription{id: id, required: required, cb: cb})
	return id
}

// Unassign removes a subscription.
func (p *Provider) Unassign(id CallbackID) {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for i, s := range p.subs {
		if s.id == id {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

// Update enqueues an (on, off) bit update and posts one eventfd unit.
func (p *Provider) Update(on, off Flags) error {
	p.queueMu.Lock()
	p.queue = append(p.queue, pendingUpdate{on: on, off: off})
	p.queueMu.Unlock()
	return postOne(p.fd)
}

// OnEvent dequeues each pending update, applies it, and for any update that
// actually changed the flags word, scans subscriptions from the head
// (re-scanning after every invocation, since a callback may mutate the
// subscription list — spec.md §9 open question (a), behaviour preserved
// deliberately).
func (p *Provider) OnEvent(m *reactor.Monitor, fd int, events uint32) {
	n, err := drain(fd)
	if err != nil || n == 0 {
		return
	}

	for i := uint64(0); i < n; i++ {
		p.queueMu.Lock()
		if len(p.queue) == 0 {
			p.queueMu.Unlock()
			break
		}
		u := p.queue[0]
		p.queue = p.queue[1:]
		p.queueMu.Unlock()

		prev := p.flags
		p.flags = (p.flags | u.on) &^ u.off
		if p.flags == prev {
			continue
		}

		for {
			p.subMu.Lock()
			idx := -1
			for j, s := range p.subs {
				if p.flags&s.required == s.required {
					idx = j
					break
				}
			}
			if idx < 0 {
				p.subMu.Unlock()
				break
			}
			s := p.subs[idx]
			p.subMu.Unlock()

			p.flags &^= s.required
			if s.cb != nil {
				s.cb(&p.flags)
			}
		}
	}
}

var _ reactor.Provider = (*Provider)(nil)
