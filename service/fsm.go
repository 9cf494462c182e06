package service

import (
	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/provider/fsmprovider"
	"github.com/lattice-io/reactorcore/reactor"
)

// FSM wraps a Service, resolving the monitor's fsmprovider.Provider[S, E]
// on first attach and exposing Commit so the wrapped service's own
// callbacks can drive a shared state machine (mirrors ext/fsm.hpp's
// fsm_service bridge).
type FSM[S comparable, E comparable] struct {
	Inner Service
	Key   string

	provider *fsmprovider.Provider[S, E]
}

// NewFSM wraps inner, resolved under key when the monitor attaches this
// service for the first time.
func NewFSM[S comparable, E comparable](inner Service, key string) *FSM[S, E] {
	return &FSM[S, E]{Inner: inner, Key: key}
}

// Commit posts event through the resolved provider. Returns false if the
// provider hasn't been found yet (i.e. OnAttached hasn't run).
func (s *FSM[S, E]) Commit(event E) bool {
	if s.provider == nil {
		return false
	}
	_ = s.provider.Commit(event)
	return true
}

func (s *FSM[S, E]) OnAttached(m *reactor.Monitor, sock port.Socket, hint any) AttachToken {
	if s.provider == nil {
		s.provider, _ = fsmprovider.Find[S, E](m, s.Key)
	}
	return s.Inner.OnAttached(m, sock, hint)
}

func (s *FSM[S, E]) OnDetached(m *reactor.Monitor, sock port.Socket, hint any) DetachToken {
	return s.Inner.OnDetached(m, sock, hint)
}

func (s *FSM[S, E]) OnMessage(m *reactor.Monitor, sock port.Socket, msg *port.MsgBuf) {
	s.Inner.OnMessage(m, sock, msg)
}

func (s *FSM[S, E]) OnDisconnected(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	s.Inner.OnDisconnected(m, sock, res)
}

func (s *FSM[S, E]) OnError(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	s.Inner.OnError(m, sock, res)
}

func (s *FSM[S, E]) OnPreConnect(m *reactor.Monitor, sock port.Socket) {
	s.Inner.OnPreConnect(m, sock)
}

var _ Service = (*FSM[string, string])(nil)
