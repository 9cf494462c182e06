package reactor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/lattice-io/reactorcore/reactor"
)

// pipeProvider reads whatever's available on a pipe and unmanages itself
// once it has seen the expected byte count.
type pipeProvider struct {
	reactor.BaseProvider
	fd       int
	want     int
	got      int
	done     chan struct{}
}

func (p *pipeProvider) Fd() int { return p.fd }

func (p *pipeProvider) OnEvent(m *reactor.Monitor, fd int, events uint32) {
	buf := make([]byte, 16)
	n, err := unix.Read(fd, buf)
	if err != nil {
		return
	}
	p.got += n
	if p.got >= p.want {
		_ = m.Unmanage(fd)
		close(p.done)
	}
}

func TestMonitorManageAndDispatch(t *testing.T) {
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	r, w := fds[0], fds[1]

	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	p := &pipeProvider{fd: r, want: 5, done: make(chan struct{})}
	require.NoError(t, m.Manage(p))

	go func() {
		_, _ = unix.Write(w, []byte("hello"))
	}()

	done := make(chan error, 1)
	go func() { done <- m.Loop() }()

	<-p.done
	require.NoError(t, <-done)
	assert.Equal(t, 5, p.got)
	assert.Equal(t, 0, m.Len())

	_ = unix.Close(w)
}

func TestManageDuplicateFdIsAlreadyExists(t *testing.T) {
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	p1 := &pipeProvider{fd: fds[0], done: make(chan struct{})}
	p2 := &pipeProvider{fd: fds[0], done: make(chan struct{})}
	require.NoError(t, m.Manage(p1))
	err = m.Manage(p2)
	require.Error(t, err)
	_ = m.Unmanage(fds[0])
}
