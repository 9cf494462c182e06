// Package acceptor implements the acceptor provider of spec.md §4.D: wraps
// a listening port and a service factory, building a fresh receiver for
// each accepted connection.
package acceptor

import (
	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/provider/receiver"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/service"
)

// Factory builds a fresh Service instance for each accepted connection.
type Factory func() service.Service

// Provider is the acceptor provider. The wrapped port must already be
// listening.
type Provider struct {
	reactor.BaseProvider

	listener    *port.Port
	factory     Factory
	hint        any
	msgBufSlots int
	onError     func(p *port.Port, err error)
}

// New wraps a listening port with a service factory. hint is passed through
// to every receiver's OnAttached/OnDetached; msgBufSlots sizes each
// connection's multipart message buffer.
func New(listener *port.Port, factory Factory, hint any, msgBufSlots int) *Provider {
	return &Provider{listener: listener, factory: factory, hint: hint, msgBufSlots: msgBufSlots}
}

// OnError installs a callback for accept(2) failures (spec.md §7: "the
// acceptor reports accept errors via on_error and continues listening").
func (a *Provider) OnError(fn func(p *port.Port, err error)) {
	a.onError = fn
}

func (a *Provider) Fd() int { return a.listener.Fd() }

func (a *Provider) OnManage(m *reactor.Monitor, fd int) {
	a.listener.AddOnClose(func() { _ = m.Unmanage(fd) })
}

// OnEvent accepts one connection, builds a receiver with a fresh service
// instance, and manages it on the same monitor.
func (a *Provider) OnEvent(m *reactor.Monitor, fd int, events uint32) {
	p, err := a.listener.Accept()
	if err != nil {
		if a.onError != nil {
			a.onError(a.listener, err)
		}
		return
	}
	rp := receiver.New(p, a.factory(), a.hint, a.msgBufSlots)
	_ = m.Manage(rp)
}

var _ reactor.Provider = (*Provider)(nil)
