//go:build linux

package reactor

import (
	"golang.org/x/sys/unix"

	"github.com/lattice-io/reactorcore/xerrors"
)

type poller struct {
	epfd int
}

func newPoller() (*poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, xerrors.Errno(err, "epoll_create1")
	}
	return &poller{epfd: fd}, nil
}

func (p *poller) close() error {
	return unix.Close(p.epfd)
}

func (p *poller) add(fd int, events uint32) error {
	ev := &unix.EpollEvent{Events: toEpoll(events), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return xerrors.Errno(err, "epoll_ctl add")
	}
	return nil
}

func (p *poller) modify(fd int, events uint32) error {
	ev := &unix.EpollEvent{Events: toEpoll(events), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev); err != nil {
		return xerrors.Errno(err, "epoll_ctl mod")
	}
	return nil
}

func (p *poller) remove(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return xerrors.Errno(err, "epoll_ctl del")
	}
	return nil
}

// wait blocks up to timeoutMs (-1 indefinite) and invokes dispatch(fd,
// events) for each ready descriptor.
func (p *poller) wait(timeoutMs int, dispatch func(fd int, events uint32)) error {
	var buf [256]unix.EpollEvent
	n, err := unix.EpollWait(p.epfd, buf[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return xerrors.Errno(err, "epoll_wait")
	}
	for i := 0; i < n; i++ {
		dispatch(int(buf[i].Fd), fromEpoll(buf[i].Events))
	}
	return nil
}

func toEpoll(events uint32) uint32 {
	var out uint32
	if events&EPOLLIN != 0 {
		out |= unix.EPOLLIN
	}
	if events&EPOLLOUT != 0 {
		out |= unix.EPOLLOUT
	}
	return out
}

func fromEpoll(events uint32) uint32 {
	var out uint32
	if events&unix.EPOLLIN != 0 {
		out |= EPOLLIN
	}
	if events&unix.EPOLLOUT != 0 {
		out |= EPOLLOUT
	}
	if events&unix.EPOLLERR != 0 {
		out |= EPOLLERR
	}
	if events&unix.EPOLLHUP != 0 {
		out |= EPOLLHUP
	}
	return out
}
