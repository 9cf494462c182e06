package connector_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/provider/connector"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/service"
)

type attachService struct {
	service.Base
	attached chan struct{}
}

func (s *attachService) OnAttached(m *reactor.Monitor, sock port.Socket, hint any) service.AttachToken {
	s.attached <- struct{}{}
	return service.AttachToken{}
}

func TestConnectorSucceedsAndBecomesReceiver(t *testing.T) {
	ln, addr, err := port.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	attached := make(chan struct{}, 1)
	svc := &attachService{attached: attached}
	cp, err := connector.New("tcp", addr.String(), svc, nil, 1)
	require.NoError(t, err)

	var connErr error
	cp.OnError(func(p *port.Port, err error) { connErr = err })
	require.NoError(t, m.Manage(cp))

	// Accept the connector's pending connection so SO_ERROR resolves to success.
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
		}
	}()

	go func() { _ = m.Loop() }()

	select {
	case <-attached:
	case <-time.After(2 * time.Second):
		t.Fatalf("connector never became an attached receiver (last error: %v)", connErr)
	}

	assert.Equal(t, reactor.EPOLLOUT, cp.DefaultEvents())
}

func TestSetBackoffOverridesDefaults(t *testing.T) {
	ln, addr, err := port.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	svc := &attachService{attached: make(chan struct{}, 1)}
	cp, err := connector.New("tcp", addr.String(), svc, nil, 1)
	require.NoError(t, err)

	cp.SetBackoff(5*time.Millisecond, 10*time.Millisecond)
	// A zero value must leave the corresponding bound untouched.
	cp.SetBackoff(0, 0)
}
