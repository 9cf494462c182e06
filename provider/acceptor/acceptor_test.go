package acceptor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/provider/acceptor"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/service"
)

type attachOnlyService struct {
	service.Base
	attached chan struct{}
}

func (s *attachOnlyService) OnAttached(m *reactor.Monitor, sock port.Socket, hint any) service.AttachToken {
	s.attached <- struct{}{}
	return service.AttachToken{}
}

func TestAcceptorBuildsReceiverPerConnection(t *testing.T) {
	ln, addr, err := port.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)

	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	attached := make(chan struct{}, 2)
	ap := acceptor.New(ln, func() service.Service {
		return &attachOnlyService{attached: attached}
	}, nil, 1)
	require.NoError(t, m.Manage(ap))

	go func() { _ = m.Loop() }()

	c1, err := port.TCP(addr.String())
	require.NoError(t, err)
	defer c1.Close()
	c2, err := port.TCP(addr.String())
	require.NoError(t, err)
	defer c2.Close()

	for i := 0; i < 2; i++ {
		select {
		case <-attached:
		case <-time.After(2 * time.Second):
			t.Fatal("expected a receiver to attach for each accepted connection")
		}
	}

	require.NoError(t, ln.Close())
}
