package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/service"
)

// recordingService counts how many times each callback fired.
type recordingService struct {
	service.Base
	attached, detached, messages, disconnected, errors, preconnect int
}

func (r *recordingService) OnAttached(m *reactor.Monitor, sock port.Socket, hint any) service.AttachToken {
	r.attached++
	return service.AttachToken{}
}

func (r *recordingService) OnDetached(m *reactor.Monitor, sock port.Socket, hint any) service.DetachToken {
	r.detached++
	return service.DetachToken{}
}

func (r *recordingService) OnMessage(m *reactor.Monitor, sock port.Socket, msg *port.MsgBuf) {
	r.messages++
}

func (r *recordingService) OnDisconnected(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	r.disconnected++
}

func (r *recordingService) OnError(m *reactor.Monitor, sock port.Socket, res port.IoResult) {
	r.errors++
}

func (r *recordingService) OnPreConnect(m *reactor.Monitor, sock port.Socket) {
	r.preconnect++
}

func TestBaseIsNoOp(t *testing.T) {
	var b service.Base
	assert.NotPanics(t, func() {
		b.OnAttached(nil, nil, nil)
		b.OnDetached(nil, nil, nil)
		b.OnMessage(nil, nil, nil)
		b.OnDisconnected(nil, nil, port.IoResult{})
		b.OnError(nil, nil, port.IoResult{})
		b.OnPreConnect(nil, nil)
	})
}

func TestAttachedTracksAttachState(t *testing.T) {
	inner := &recordingService{}
	a := service.NewAttached(inner)

	assert.False(t, a.IsAttached())
	a.OnAttached(nil, nil, nil)
	assert.True(t, a.IsAttached())
	assert.Equal(t, 1, inner.attached)

	a.OnDetached(nil, nil, nil)
	assert.False(t, a.IsAttached())
	assert.Equal(t, 1, inner.detached)
}

func TestDelegateFansOutToSubscribersAfterBase(t *testing.T) {
	base := &recordingService{}
	sub1 := &recordingService{}
	sub2 := &recordingService{}

	d := service.NewDelegate(base)
	d.Subscribe(sub1)
	d.Subscribe(sub2)

	d.OnMessage(nil, nil, nil)
	assert.Equal(t, 1, base.messages)
	assert.Equal(t, 1, sub1.messages)
	assert.Equal(t, 1, sub2.messages)

	d.Unsubscribe(sub1)
	d.OnMessage(nil, nil, nil)
	assert.Equal(t, 2, base.messages)
	assert.Equal(t, 1, sub1.messages, "unsubscribed service should not receive further calls")
	assert.Equal(t, 2, sub2.messages)
}

func TestDelegateOnPreConnectOnlyHitsBase(t *testing.T) {
	base := &recordingService{}
	sub := &recordingService{}
	d := service.NewDelegate(base)
	d.Subscribe(sub)

	d.OnPreConnect(nil, nil)
	assert.Equal(t, 1, base.preconnect)
	assert.Equal(t, 0, sub.preconnect, "ext/delegate.hpp never forwards on_pre_connect to subscribers")
}

func TestForwarderSwapChangesActiveTarget(t *testing.T) {
	first := &recordingService{}
	second := &recordingService{}

	f := service.NewForwarder(first)
	f.OnMessage(nil, nil, nil)
	assert.Equal(t, 1, first.messages)

	prev := f.Swap(second)
	require.Same(t, first, prev)

	f.OnMessage(nil, nil, nil)
	assert.Equal(t, 1, first.messages)
	assert.Equal(t, 1, second.messages)
}
