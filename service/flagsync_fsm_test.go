package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/fsm"
	"github.com/lattice-io/reactorcore/provider/flagsync"
	"github.com/lattice-io/reactorcore/provider/fsmprovider"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/service"
)

func TestFlagSyncMixinResolvesProviderOnAttach(t *testing.T) {
	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	_, err = flagsync.Manage(m)
	require.NoError(t, err)

	fs := service.NewFlagSync(&recordingService{})
	_, ok := fs.Assign(0b1, func(*flagsync.Flags) {})
	assert.False(t, ok, "provider not resolved until OnAttached fires")

	fs.OnAttached(m, nil, nil)

	fired := make(chan struct{}, 1)
	id, ok := fs.Assign(0b1, func(*flagsync.Flags) { fired <- struct{}{} })
	require.True(t, ok)
	require.NoError(t, fs.Update(0b1, 0))

	go func() { _ = m.Loop() }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("flagsync callback never fired through the mixin")
	}
	_ = id
}

type fsmState int
type fsmEvent int

const (
	fsA fsmState = iota
	fsB
)

const (
	evGo fsmEvent = iota
)

func TestFSMMixinResolvesProviderOnAttach(t *testing.T) {
	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	d := fsm.NewDriver[fsmState, fsmEvent](fsA)
	done := make(chan struct{})
	require.NoError(t, d.AddTransition(fsA, evGo, fsB, func(ctx any, from, to fsmState, ev fsmEvent) {
		close(done)
	}))
	_, err = fsmprovider.Manage[fsmState, fsmEvent](m, "svc-fsm", d)
	require.NoError(t, err)

	fsvc := service.NewFSM[fsmState, fsmEvent](&recordingService{}, "svc-fsm")
	assert.False(t, fsvc.Commit(evGo), "provider not resolved until OnAttached fires")

	fsvc.OnAttached(m, nil, nil)
	assert.True(t, fsvc.Commit(evGo))

	go func() { _ = m.Loop() }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fsm transition never fired through the mixin")
	}
}
