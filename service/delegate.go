package service

import (
	"sync"

	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/reactor"
)

// Delegate is the fan-out composition primitive (mirrors ext/delegate.hpp's
// broker): it runs Base's callback first, then forwards the same call to
// every currently-subscribed Service, except OnPreConnect, which goes to
// Base only. Unlike the
// original's std::weak_ptr broker, subscribers here are plain strong
// references removed explicitly via Unsubscribe — Go's GC gives no cheap
// "has this been collected" check the way a weak_ptr does.
type Delegate struct {
	Base Service

	mu          sync.Mutex
	subscribers []Service
}

// NewDelegate wraps base.
func NewDelegate(base Service) *Delegate {
	return &Delegate{Base: base}
}

// Subscribe adds s to the fan-out set.
func (d *Delegate) Subscribe(s Service) {
	d.mu.Lock()
	d.subscribers = append(d.subscribers, s)
	d.mu.Unlock()
}

// Unsubscribe removes s from the fan-out set (identity comparison).
func (d *Delegate) Unsubscribe(s Service) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, sub := range d.subscribers {
		if sub == s {
			d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
			return
		}
	}
}

func (d *Delegate) snapshot() []Service {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Service(nil), d.subscribers...)
}

func (d *Delegate) OnAttached(m *reactor.Monitor, sock port.Socket, hint any) AttachToken {
	tok := d.Base.OnAttached(m, sock, hint)
	for _, s := range d.snapshot() {
		s.OnAttached(m, sock, hint)
	}
	return tok
}

func (d *Delegate) OnDetached(m *reactor.Monitor, sock port.Socket, hint any) DetachToken {
	tok := d.Base.OnDetached(m, sock, hint)
	for _, s := range d.snapshot() {
		s.OnDetached(m, sock, hint)
	}
	return tok
}

func (d *Delegate) OnMessage(m *reactor.Monitor, sock port.Socket, msg *port.MsgBuf) {
	d.Base.OnMessage(m, sock, msg)
	for _, s := range d.snapshot() {
		s.OnMessage(m, sock, msg)
	}
}

func (d *Delegate) OnDisconnected(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	d.Base.OnDisconnected(m, sock, res)
	for _, s := range d.snapshot() {
		s.OnDisconnected(m, sock, res)
	}
}

func (d *Delegate) OnError(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	d.Base.OnError(m, sock, res)
	for _, s := range d.snapshot() {
		s.OnError(m, sock, res)
	}
}

func (d *Delegate) OnPreConnect(m *reactor.Monitor, sock port.Socket) {
	d.Base.OnPreConnect(m, sock)
}

var _ Service = (*Delegate)(nil)
