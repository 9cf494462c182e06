package port_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/port"
)

func TestLoopbackMsgBufRoundTrip(t *testing.T) {
	ln, addr, err := port.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	client, err := port.TCP(addr.String())
	require.NoError(t, err)
	defer client.Close()

	server, err := ln.Accept()
	require.NoError(t, err)
	defer server.Close()

	send := port.NewMsgBuf(2)
	send.Slots[0] = []byte("hello")
	send.Slots[1] = []byte("world")
	res := send.Send(client)
	require.Equal(t, port.IoOk, res.Status)

	recv := &port.MsgBuf{}
	res = recv.Recv(server)
	require.Equal(t, port.IoOk, res.Status)
	require.Equal(t, 2, recv.NumSlots)
	assert.Equal(t, []byte("hello"), recv.Slots[0])
	assert.Equal(t, []byte("world"), recv.Slots[1])
	// Sender and receiver share this host's byte order, so the marker is
	// not byte-reversed and the reverse-endian flag stays clear.
	assert.False(t, server.DifferentEndian())
}

func TestCloseFiresDelegatesExactlyOnce(t *testing.T) {
	ln, addr, err := port.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	client, err := port.TCP(addr.String())
	require.NoError(t, err)

	var fired int
	client.AddOnClose(func() { fired++ })

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.Equal(t, 1, fired)
	assert.False(t, client.Alive())
}

func TestSharedPortReleaseClosesOnLastRef(t *testing.T) {
	ln, addr, err := port.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	client, err := port.TCP(addr.String())
	require.NoError(t, err)

	sp := port.NewShared(client)
	sp.Retain()

	require.NoError(t, sp.Release())
	assert.True(t, client.Alive())

	require.NoError(t, sp.Release())
	assert.False(t, client.Alive())
}

func TestWeakPortUpgradeFailsAfterRelease(t *testing.T) {
	ln, addr, err := port.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	client, err := port.TCP(addr.String())
	require.NoError(t, err)

	sp := port.NewShared(client)
	weak := sp.Weak()

	got, ok := weak.Lock()
	require.True(t, ok)
	assert.Equal(t, sp, got)
	require.NoError(t, sp.Release()) // drops the ref Lock just added
	require.NoError(t, sp.Release()) // drops the original ref, closes

	_, ok = weak.Lock()
	assert.False(t, ok)
}
