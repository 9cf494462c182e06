package flagsync_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/provider/flagsync"
	"github.com/lattice-io/reactorcore/reactor"
)

func TestAssignFiresOnceRequiredBitsSet(t *testing.T) {
	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	p, err := flagsync.Manage(m)
	require.NoError(t, err)

	fired := make(chan flagsync.Flags, 1)
	p.Assign(0b011, func(flags *flagsync.Flags) {
		fired <- *flags
	})

	require.NoError(t, p.Update(0b001, 0))
	require.NoError(t, p.Update(0b010, 0))

	go func() { _ = m.Loop() }()

	select {
	case flags := <-fired:
		assert.Equal(t, flagsync.Flags(0), flags&0b011, "required bits are cleared before callback fires")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for flagsync callback")
	}

	_ = m.Unmanage(p.Fd())
}

func TestUnassignPreventsFutureDelivery(t *testing.T) {
	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	p, err := flagsync.Manage(m)
	require.NoError(t, err)

	called := make(chan struct{}, 1)
	id := p.Assign(0b1, func(*flagsync.Flags) { called <- struct{}{} })
	p.Unassign(id)

	require.NoError(t, p.Update(0b1, 0))

	go func() { _ = m.Loop() }()

	select {
	case <-called:
		t.Fatal("unassigned subscription should not fire")
	case <-time.After(100 * time.Millisecond):
	}

	_ = m.Unmanage(p.Fd())
}
