// Package receiver implements the receiver provider of spec.md §4.D: a port
// plus a service, reading multipart messages off the port and dispatching
// them to the service's callback set.
package receiver

import (
	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/service"
)

// Provider holds one connection: the accepted/connected port, the service
// instance that owns it, and its multipart message buffer.
type Provider struct {
	reactor.BaseProvider

	sock port.Socket
	svc  service.Service
	msg  *port.MsgBuf
	hint any
}

// New constructs a receiver for sock, with svc handling callbacks and a
// message buffer sized for slots payload slots.
func New(sock port.Socket, svc service.Service, hint any, slots int) *Provider {
	return &Provider{sock: sock, svc: svc, msg: port.NewMsgBuf(slots), hint: hint}
}

func (r *Provider) Fd() int { return r.sock.Fd() }

// OnManage registers a close-delegate that unmanages this fd, then calls
// the service's OnAttached (spec.md §4.D receiver provider).
func (r *Provider) OnManage(m *reactor.Monitor, fd int) {
	r.sock.AddOnClose(func() { _ = m.Unmanage(fd) })
	r.svc.OnAttached(m, r.sock, r.hint)
}

// OnEvent reads one message; on success dispatches OnMessage, on a clean
// peer-close dispatches OnDisconnected, on any other error dispatches
// OnError — closing the port in both failure cases if it's still alive.
func (r *Provider) OnEvent(m *reactor.Monitor, fd int, events uint32) {
	res := r.msg.Recv(r.sock)
	switch res.Status {
	case port.IoOk:
		r.svc.OnMessage(m, r.sock, r.msg)
	case port.IoClosed:
		r.svc.OnDisconnected(m, r.sock, res)
		if r.sock.Alive() {
			_ = r.sock.Close()
		}
	default:
		r.svc.OnError(m, r.sock, res)
		if r.sock.Alive() {
			_ = r.sock.Close()
		}
	}
}

// OnUnmanage calls the service's OnDetached.
func (r *Provider) OnUnmanage(m *reactor.Monitor, fd int) {
	r.svc.OnDetached(m, r.sock, r.hint)
}

var _ reactor.Provider = (*Provider)(nil)
