package fsmprovider_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/fsm"
	"github.com/lattice-io/reactorcore/provider/fsmprovider"
	"github.com/lattice-io/reactorcore/reactor"
)

type state int
type event int

const (
	stateIdle state = iota
	stateRunning
)

const (
	evStart event = iota
	evStop
)

func TestCommitDrivesTransitionsInOrder(t *testing.T) {
	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	d := fsm.NewDriver[state, event](stateIdle)
	var transitions []state
	done := make(chan struct{})
	require.NoError(t, d.AddTransition(stateIdle, evStart, stateRunning, func(ctx any, from, to state, ev event) {
		transitions = append(transitions, to)
	}))
	require.NoError(t, d.AddTransition(stateRunning, evStop, stateIdle, func(ctx any, from, to state, ev event) {
		transitions = append(transitions, to)
		close(done)
	}))

	p, err := fsmprovider.Manage[state, event](m, "test-fsm", d)
	require.NoError(t, err)

	require.NoError(t, p.Commit(evStart))
	require.NoError(t, p.Commit(evStop))

	go func() { _ = m.Loop() }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fsm transitions")
	}

	assert.Equal(t, []state{stateRunning, stateIdle}, transitions)
	assert.Equal(t, []state{stateIdle}, p.Driver().Current())

	_ = m.Unmanage(p.Fd())
}

func TestFindResolvesKeyedProvider(t *testing.T) {
	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	d := fsm.NewDriver[state, event](stateIdle)
	p, err := fsmprovider.Manage[state, event](m, "keyed-fsm", d)
	require.NoError(t, err)

	found, ok := fsmprovider.Find[state, event](m, "keyed-fsm")
	require.True(t, ok)
	assert.Same(t, p, found)

	_, ok = fsmprovider.Find[state, event](m, "missing")
	assert.False(t, ok)
}
