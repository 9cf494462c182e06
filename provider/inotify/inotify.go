// Package inotify implements the inotify provider of spec.md §4.D: a
// long-lived provider owning an inotify fd and a map from watch descriptor
// to callback, dispatching a batch of inotify_event structs per readiness
// event.
package inotify

import (
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/xerrors"
)

// DefaultKey is the ManageKeyed key this provider is conventionally
// registered under (mirrors the original's manage_key constant).
const DefaultKey = "reactorcore.inotify"

// WatchDescriptor identifies an active watch, returned by AddWatch.
type WatchDescriptor int32

// Event is a decoded inotify_event: the watch it fired on, the mask of bits
// that triggered it, and (for directory watches) the name of the affected
// entry.
type Event struct {
	WD    WatchDescriptor
	Mask  uint32
	Name  string
	Cookie uint32
}

// Callback handles one decoded Event.
type Callback func(Event)

// Provider is the inotify provider. Construct with New.
type Provider struct {
	reactor.BaseProvider

	fd        int
	callbacks map[WatchDescriptor]Callback
}

// New creates the inotify fd. The caller must Manage/ManageKeyed it on a
// Monitor before AddWatch's callbacks can fire.
func New() (*Provider, error) {
	fd, err := initInotify()
	if err != nil {
		return nil, xerrors.Errno(err, "inotify_init1")
	}
	return &Provider{fd: fd, callbacks: make(map[WatchDescriptor]Callback)}, nil
}

// Manage creates a Provider and registers it under DefaultKey.
func Manage(m *reactor.Monitor) (*Provider, error) {
	p, err := New()
	if err != nil {
		return nil, err
	}
	if err := m.ManageKeyed(DefaultKey, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) Fd() int { return p.fd }

// AddWatch installs a watch on path with the given event mask, invoking cb
// for every matching event.
func (p *Provider) AddWatch(path string, mask uint32, cb Callback) (WatchDescriptor, error) {
	wd, err := addWatch(p.fd, path, mask)
	if err != nil {
		return 0, xerrors.Errno(err, "inotify_add_watch")
	}
	p.callbacks[wd] = cb
	return wd, nil
}

// RmWatch removes a previously installed watch.
func (p *Provider) RmWatch(wd WatchDescriptor) error {
	delete(p.callbacks, wd)
	if err := rmWatch(p.fd, wd); err != nil {
		return xerrors.Errno(err, "inotify_rm_watch")
	}
	return nil
}

// OnEvent reads a batch of inotify_event structs and dispatches each to its
// registered callback, removing watches that have no callback (already
// removed or stale).
func (p *Provider) OnEvent(m *reactor.Monitor, fd int, events uint32) {
	batch, err := readEvents(fd)
	if err != nil {
		_ = m.Unmanage(fd)
		return
	}
	for _, ev := range batch {
		cb, ok := p.callbacks[ev.WD]
		if !ok {
			_ = p.RmWatch(ev.WD)
			continue
		}
		cb(ev)
	}
}

var _ reactor.Provider = (*Provider)(nil)
