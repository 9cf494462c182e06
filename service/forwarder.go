package service

import (
	"sync"

	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/reactor"
)

// Forwarder is like Delegate but lets a caller swap the wrapped service at
// runtime behind a mutex, instead of fanning out to a fixed subscriber set
// (mirrors the "swap inner target" shape of ext/forwarder.hpp's proxy
// contract, adapted to a single active target).
type Forwarder struct {
	mu    sync.Mutex
	inner Service
}

// NewForwarder wraps inner.
func NewForwarder(inner Service) *Forwarder {
	return &Forwarder{inner: inner}
}

// Swap installs next as the active inner service, returning the previous
// one.
func (f *Forwarder) Swap(next Service) Service {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.inner
	f.inner = next
	return prev
}

func (f *Forwarder) get() Service {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inner
}

func (f *Forwarder) OnAttached(m *reactor.Monitor, sock port.Socket, hint any) AttachToken {
	return f.get().OnAttached(m, sock, hint)
}

func (f *Forwarder) OnDetached(m *reactor.Monitor, sock port.Socket, hint any) DetachToken {
	return f.get().OnDetached(m, sock, hint)
}

func (f *Forwarder) OnMessage(m *reactor.Monitor, sock port.Socket, msg *port.MsgBuf) {
	f.get().OnMessage(m, sock, msg)
}

func (f *Forwarder) OnDisconnected(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	f.get().OnDisconnected(m, sock, res)
}

func (f *Forwarder) OnError(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	f.get().OnError(m, sock, res)
}

func (f *Forwarder) OnPreConnect(m *reactor.Monitor, sock port.Socket) {
	f.get().OnPreConnect(m, sock)
}

var _ Service = (*Forwarder)(nil)
