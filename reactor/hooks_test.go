package reactor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/lattice-io/reactorcore/reactor"
)

func TestMonitorDispatchAndManagedHooks(t *testing.T) {
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	r, w := fds[0], fds[1]

	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	var dispatches int
	var lastKind string
	m.SetDispatchHook(func(kind string, dur time.Duration) {
		dispatches++
		lastKind = kind
		assert.GreaterOrEqual(t, dur, time.Duration(0))
	})

	var managedCounts []int
	m.SetManagedHook(func(n int) { managedCounts = append(managedCounts, n) })

	p := &pipeProvider{fd: r, want: 3, done: make(chan struct{})}
	require.NoError(t, m.Manage(p))
	assert.Equal(t, []int{1}, managedCounts)

	go func() { _, _ = unix.Write(w, []byte("hi!")) }()

	done := make(chan error, 1)
	go func() { done <- m.Loop() }()

	<-p.done
	require.NoError(t, <-done)

	assert.GreaterOrEqual(t, dispatches, 1)
	assert.Contains(t, lastKind, "pipeProvider")
	assert.Equal(t, []int{1, 0}, managedCounts)

	_ = unix.Close(w)
}
