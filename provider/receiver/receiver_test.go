package receiver_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/provider/receiver"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/service"
)

type recordingService struct {
	service.Base
	attached   chan struct{}
	detached   chan struct{}
	messages   chan *port.MsgBuf
	disconnect chan struct{}
}

func newRecordingService() *recordingService {
	return &recordingService{
		attached:   make(chan struct{}, 1),
		detached:   make(chan struct{}, 1),
		messages:   make(chan *port.MsgBuf, 4),
		disconnect: make(chan struct{}, 1),
	}
}

func (r *recordingService) OnAttached(m *reactor.Monitor, sock port.Socket, hint any) service.AttachToken {
	r.attached <- struct{}{}
	return service.AttachToken{}
}

func (r *recordingService) OnDetached(m *reactor.Monitor, sock port.Socket, hint any) service.DetachToken {
	r.detached <- struct{}{}
	return service.DetachToken{}
}

func (r *recordingService) OnMessage(m *reactor.Monitor, sock port.Socket, msg *port.MsgBuf) {
	r.messages <- msg.DeepCopy()
}

func (r *recordingService) OnDisconnected(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	r.disconnect <- struct{}{}
}

func TestReceiverDispatchesAttachMessageAndDetach(t *testing.T) {
	ln, addr, err := port.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	client, err := port.TCP(addr.String())
	require.NoError(t, err)
	defer client.Close()

	server, err := ln.Accept()
	require.NoError(t, err)

	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	svc := newRecordingService()
	rp := receiver.New(server, svc, "hint", 1)
	require.NoError(t, m.Manage(rp))

	select {
	case <-svc.attached:
	case <-time.After(time.Second):
		t.Fatal("OnAttached did not fire")
	}

	msg := port.NewMsgBuf(1)
	msg.Slots[0] = []byte("ping")
	require.Equal(t, port.IoOk, msg.Send(client).Status)

	go func() { _ = m.Loop() }()

	select {
	case got := <-svc.messages:
		assert.Equal(t, []byte("ping"), got.Slots[0])
	case <-time.After(2 * time.Second):
		t.Fatal("OnMessage did not fire")
	}

	require.NoError(t, client.Close())

	select {
	case <-svc.disconnect:
	case <-time.After(2 * time.Second):
		t.Fatal("OnDisconnected did not fire")
	}

	select {
	case <-svc.detached:
	case <-time.After(2 * time.Second):
		t.Fatal("OnDetached did not fire")
	}
}
