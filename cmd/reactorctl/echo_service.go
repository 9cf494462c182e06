package main

import (
	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/rlog"
	"github.com/lattice-io/reactorcore/service"
)

// echoService implements scenario S1: every received message is written
// straight back to the peer. It embeds service.Base, which supplies the
// one callback it does not override (OnPreConnect); OnMessage echoes and
// the other four only log.
type echoService struct {
	service.Base
	log *rlog.Logger
}

func newEchoService(log *rlog.Logger) func() service.Service {
	return func() service.Service {
		return &echoService{log: rlog.Component(log, "echo")}
	}
}

func (s *echoService) OnAttached(m *reactor.Monitor, sock port.Socket, hint any) service.AttachToken {
	s.log.Info().Int("fd", sock.Fd()).Log("connection attached")
	return service.AttachToken{}
}

func (s *echoService) OnDetached(m *reactor.Monitor, sock port.Socket, hint any) service.DetachToken {
	s.log.Info().Int("fd", sock.Fd()).Log("connection detached")
	return service.DetachToken{}
}

func (s *echoService) OnMessage(m *reactor.Monitor, sock port.Socket, msg *port.MsgBuf) {
	if res := msg.Send(sock); res.Status != port.IoOk {
		s.log.Err().Int("fd", sock.Fd()).Log("echo write failed")
	}
}

func (s *echoService) OnDisconnected(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	s.log.Info().Int("fd", sock.Fd()).Log("peer disconnected")
}

func (s *echoService) OnError(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	s.log.Err().Int("fd", sock.Fd()).Log("io error")
}

var _ service.Service = (*echoService)(nil)
