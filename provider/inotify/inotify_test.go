package inotify_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lattice-io/reactorcore/provider/inotify"
	"github.com/lattice-io/reactorcore/reactor"
)

func TestAddWatchFiresOnModify(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "inotify-*")
	require.NoError(t, err)
	path := f.Name()
	require.NoError(t, f.Close())

	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	p, err := inotify.Manage(m)
	require.NoError(t, err)

	fired := make(chan inotify.Event, 1)
	_, err = p.AddWatch(path, inotify.Modified, func(ev inotify.Event) {
		fired <- ev
	})
	require.NoError(t, err)

	go func() { _ = m.Loop() }()

	require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for modify event")
	}

	_ = m.Unmanage(p.Fd())
}

func TestFindResolvesDefaultKey(t *testing.T) {
	m, err := reactor.New()
	require.NoError(t, err)
	defer m.Close()

	p, err := inotify.Manage(m)
	require.NoError(t, err)

	found, ok := m.Find(inotify.DefaultKey)
	require.True(t, ok)
	require.Same(t, p, found)
}
