package service

import (
	"sync"

	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/reactor"
)

// Attached wraps a Service, tracking whether OnAttached/OnDetached have
// fired for the current connection (mirrors ext/attached.hpp's
// ext_attached bookkeeping, simplified from its full portgroup to a single
// bool since each receiver owns exactly one Attached instance per port).
type Attached struct {
	Inner Service

	mu       sync.Mutex
	attached bool
}

// NewAttached wraps inner.
func NewAttached(inner Service) *Attached {
	return &Attached{Inner: inner}
}

// IsAttached reports whether OnAttached has fired without a matching
// OnDetached yet.
func (a *Attached) IsAttached() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attached
}

func (a *Attached) OnAttached(m *reactor.Monitor, sock port.Socket, hint any) AttachToken {
	tok := a.Inner.OnAttached(m, sock, hint)
	a.mu.Lock()
	a.attached = true
	a.mu.Unlock()
	return tok
}

func (a *Attached) OnDetached(m *reactor.Monitor, sock port.Socket, hint any) DetachToken {
	tok := a.Inner.OnDetached(m, sock, hint)
	a.mu.Lock()
	a.attached = false
	a.mu.Unlock()
	return tok
}

func (a *Attached) OnMessage(m *reactor.Monitor, sock port.Socket, msg *port.MsgBuf) {
	a.Inner.OnMessage(m, sock, msg)
}

func (a *Attached) OnDisconnected(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	a.Inner.OnDisconnected(m, sock, res)
}

func (a *Attached) OnError(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	a.Inner.OnError(m, sock, res)
}

func (a *Attached) OnPreConnect(m *reactor.Monitor, sock port.Socket) {
	a.Inner.OnPreConnect(m, sock)
}

var _ Service = (*Attached)(nil)
