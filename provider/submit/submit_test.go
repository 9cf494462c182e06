package submit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/provider/submit"
	"github.com/lattice-io/reactorcore/reactor"
)

func TestSubmitRunsClosuresInFIFOOrderOnLoopThread(t *testing.T) {
	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	p, err := submit.New()
	require.NoError(t, err)
	require.NoError(t, m.ManageKeyed("submit", p))

	var order []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, p.Submit(func() {
			order = append(order, i)
			if i == 4 {
				close(done)
			}
		}))
	}

	go func() { _ = m.Loop() }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for submitted closures")
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestFindResolvesKeyedSubmitProvider(t *testing.T) {
	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	p, err := submit.New()
	require.NoError(t, err)
	require.NoError(t, m.ManageKeyed("submit", p))

	found, ok := m.Find("submit")
	require.True(t, ok)
	assert.Same(t, p, found)
}
