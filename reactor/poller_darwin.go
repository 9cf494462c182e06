//go:build darwin

package reactor

import (
	"golang.org/x/sys/unix"

	"github.com/lattice-io/reactorcore/xerrors"
)

// poller wraps kqueue, registering a single filter per direction we care
// about (read, write) so add/modify/remove can be expressed uniformly with
// the epoll backend's semantics.
type poller struct {
	kq int
}

func newPoller() (*poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, xerrors.Errno(err, "kqueue")
	}
	unix.CloseOnExec(kq)
	return &poller{kq: kq}, nil
}

func (p *poller) close() error {
	return unix.Close(p.kq)
}

func (p *poller) add(fd int, events uint32) error {
	return p.set(fd, events)
}

func (p *poller) modify(fd int, events uint32) error {
	// kqueue has no atomic "replace interest set"; clear both filters then
	// re-register whichever the new mask requests.
	_ = p.applyChange(fd, unix.EVFILT_READ, unix.EV_DELETE)
	_ = p.applyChange(fd, unix.EVFILT_WRITE, unix.EV_DELETE)
	return p.set(fd, events)
}

func (p *poller) remove(fd int) error {
	_ = p.applyChange(fd, unix.EVFILT_READ, unix.EV_DELETE)
	_ = p.applyChange(fd, unix.EVFILT_WRITE, unix.EV_DELETE)
	return nil
}

func (p *poller) set(fd int, events uint32) error {
	if events&EPOLLIN != 0 {
		if err := p.applyChange(fd, unix.EVFILT_READ, unix.EV_ADD|unix.EV_ENABLE); err != nil {
			return err
		}
	}
	if events&EPOLLOUT != 0 {
		if err := p.applyChange(fd, unix.EVFILT_WRITE, unix.EV_ADD|unix.EV_ENABLE); err != nil {
			return err
		}
	}
	return nil
}

func (p *poller) applyChange(fd int, filter int16, flags uint16) error {
	ev := unix.Kevent_t{Ident: uint64(fd), Filter: filter, Flags: flags}
	_, err := unix.Kevent(p.kq, []unix.Kevent_t{ev}, nil, nil)
	if err != nil && err != unix.ENOENT {
		return xerrors.Errno(err, "kevent")
	}
	return nil
}

func (p *poller) wait(timeoutMs int, dispatch func(fd int, events uint32)) error {
	var buf [256]unix.Kevent_t
	var ts *unix.Timespec
	if timeoutMs >= 0 {
		t := unix.NsecToTimespec(int64(timeoutMs) * int64(1_000_000))
		ts = &t
	}
	n, err := unix.Kevent(p.kq, nil, buf[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return xerrors.Errno(err, "kevent wait")
	}
	for i := 0; i < n; i++ {
		fd := int(buf[i].Ident)
		var events uint32
		switch buf[i].Filter {
		case unix.EVFILT_READ:
			events |= EPOLLIN
		case unix.EVFILT_WRITE:
			events |= EPOLLOUT
		}
		if buf[i].Flags&unix.EV_EOF != 0 {
			events |= EPOLLHUP
		}
		if buf[i].Flags&unix.EV_ERROR != 0 {
			events |= EPOLLERR
		}
		dispatch(fd, events)
	}
	return nil
}
