package fsm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/fsm"
	"github.com/lattice-io/reactorcore/xerrors"
)

func TestCombinedEventFiresOnceAllPartialsSeen(t *testing.T) {
	d := fsm.NewDriver[string, string]("S0")
	var calls int
	require.NoError(t, d.AddTransition("S0", "AB", "S1", func(ctx any, from, to, ev string) {
		calls++
	}))
	require.NoError(t, d.DefineCombined("AB", "a", "b"))
	require.NoError(t, d.Start())

	require.NoError(t, d.Transit(nil, "a"))
	assert.Equal(t, []string{"S0"}, d.Current())
	assert.Equal(t, 0, calls)

	require.NoError(t, d.Transit(nil, "b"))
	assert.Equal(t, []string{"S1"}, d.Current())
	assert.Equal(t, 1, calls)

	// from S1 there is no entry for AB, so the next 'a' does nothing and
	// fires no callback
	err := d.Transit(nil, "a")
	assert.Equal(t, []string{"S1"}, d.Current())
	assert.Equal(t, 1, calls)
	_ = err
}

func TestDuplicateTransitionIsAlreadyExists(t *testing.T) {
	d := fsm.NewDriver[string, string]("S0")
	require.NoError(t, d.AddTransition("S0", "go", "S1", nil))
	err := d.AddTransition("S0", "go", "S2", nil)
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.AlreadyExists))
}

func TestNoEntryReturnsNoEntryKind(t *testing.T) {
	d := fsm.NewDriver[string, string]("S0")
	require.NoError(t, d.Start())
	err := d.Transit(nil, "missing")
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.NoEntry))
}

func TestMachineLoopRunsUntilTerminal(t *testing.T) {
	d := fsm.NewDriver[string, string]("S0")
	require.NoError(t, d.AddTransition("S0", "start", "S1", nil))
	require.NoError(t, d.AddTransition("S1", "finish", "S2", nil))

	m := fsm.NewMachine(d)
	done := make(chan error, 1)
	go func() {
		done <- m.Loop(nil, "start", []string{"S2"})
	}()
	m.Commit("finish")
	require.NoError(t, <-done)
	assert.Equal(t, []string{"S2"}, d.Current())
}
