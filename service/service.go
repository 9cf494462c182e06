// Package service implements the service contract of spec.md §6 (the
// capability set the receiver/acceptor/connector dispatch to) plus the
// composition mixins the original c7event/ext/{attached,delegate,forwarder,
// noop}.hpp ship to make "overrides MUST call the base implementation"
// tractable without duplicating attach/detach bookkeeping in every service.
package service

import (
	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/reactor"
)

// AttachToken and DetachToken are the opaque values spec.md §6 requires
// OnAttached/OnDetached to return, so that a composed service is forced to
// route through (and therefore invoke) the wrapped base implementation
// rather than silently replacing it.
type AttachToken struct{ _ byte }
type DetachToken struct{ _ byte }

// Service is the capability set a receiver (or acceptor/connector, for
// OnPreConnect) dispatches to, per spec.md §6.
type Service interface {
	OnAttached(m *reactor.Monitor, sock port.Socket, hint any) AttachToken
	OnDetached(m *reactor.Monitor, sock port.Socket, hint any) DetachToken
	OnMessage(m *reactor.Monitor, sock port.Socket, msg *port.MsgBuf)
	OnDisconnected(m *reactor.Monitor, sock port.Socket, res port.IoResult)
	OnError(m *reactor.Monitor, sock port.Socket, res port.IoResult)
	OnPreConnect(m *reactor.Monitor, sock port.Socket)
}

// Base is a no-op implementation of every optional callback (mirrors
// ext/noop.hpp's noop_service). Embed it in a concrete service so only the
// callbacks actually needed have to be overridden; OnMessage is the one
// spec.md marks required, so Base still implements it (as a no-op) purely
// so embedders compile without providing it, the same relaxation the
// original's noop_service makes over the pure-virtual base.
type Base struct{}

func (Base) OnAttached(*reactor.Monitor, port.Socket, any) AttachToken { return AttachToken{} }
func (Base) OnDetached(*reactor.Monitor, port.Socket, any) DetachToken { return DetachToken{} }
func (Base) OnMessage(*reactor.Monitor, port.Socket, *port.MsgBuf)     {}
func (Base) OnDisconnected(*reactor.Monitor, port.Socket, port.IoResult) {}
func (Base) OnError(*reactor.Monitor, port.Socket, port.IoResult)        {}
func (Base) OnPreConnect(*reactor.Monitor, port.Socket)                  {}

var _ Service = Base{}
