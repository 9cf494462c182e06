package service

import (
	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/provider/flagsync"
	"github.com/lattice-io/reactorcore/reactor"
)

// FlagSync wraps a Service, resolving the monitor's flagsync.Provider on
// first attach and exposing Assign/Update so the wrapped service's own
// methods can poke shared flags (mirrors ext/flagsync.hpp's
// flagsync_service bridge).
type FlagSync struct {
	Inner Service
	Key   string // defaults to flagsync.DefaultKey if empty

	provider *flagsync.Provider
}

// NewFlagSync wraps inner, using flagsync.DefaultKey.
func NewFlagSync(inner Service) *FlagSync {
	return &FlagSync{Inner: inner}
}

func (s *FlagSync) key() string {
	if s.Key == "" {
		return flagsync.DefaultKey
	}
	return s.Key
}

// Assign registers a flag-requirement subscription once the provider has
// been resolved (i.e. after the first OnAttached). Returns false if the
// provider hasn't been found yet.
func (s *FlagSync) Assign(required flagsync.Flags, cb flagsync.Callback) (flagsync.CallbackID, bool) {
	if s.provider == nil {
		return 0, false
	}
	return s.provider.Assign(required, cb), true
}

// Update posts a flag update through the resolved provider.
func (s *FlagSync) Update(on, off flagsync.Flags) error {
	if s.provider == nil {
		return nil
	}
	return s.provider.Update(on, off)
}

func (s *FlagSync) OnAttached(m *reactor.Monitor, sock port.Socket, hint any) AttachToken {
	if s.provider == nil {
		if p, ok := m.Find(s.key()); ok {
			s.provider, _ = p.(*flagsync.Provider)
		}
	}
	return s.Inner.OnAttached(m, sock, hint)
}

func (s *FlagSync) OnDetached(m *reactor.Monitor, sock port.Socket, hint any) DetachToken {
	return s.Inner.OnDetached(m, sock, hint)
}

func (s *FlagSync) OnMessage(m *reactor.Monitor, sock port.Socket, msg *port.MsgBuf) {
	s.Inner.OnMessage(m, sock, msg)
}

func (s *FlagSync) OnDisconnected(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	s.Inner.OnDisconnected(m, sock, res)
}

func (s *FlagSync) OnError(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	s.Inner.OnError(m, sock, res)
}

func (s *FlagSync) OnPreConnect(m *reactor.Monitor, sock port.Socket) {
	s.Inner.OnPreConnect(m, sock)
}

var _ Service = (*FlagSync)(nil)
