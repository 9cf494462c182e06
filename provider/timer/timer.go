// Package timer implements the timer provider of spec.md §4.D: a timerfd
// (or, on Darwin, a self-pipe + goroutine sleeper standing in for one),
// armed as one-shot or periodic, delivering expirations through the
// monitor's normal readiness dispatch.
package timer

import (
	"time"

	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/xerrors"
)

// Callback runs once per OnEvent drain, receiving the accumulated
// expiration count (normally 1, but may be >1 if the loop fell behind a
// periodic timer).
type Callback func(expirations uint64)

// Provider is a single armed timer. Create and register it with Manage;
// periodic timers keep firing until the caller Unmanages the fd or
// the callback does so itself (see spec.md §8 scenario S6).
type Provider struct {
	reactor.BaseProvider

	fd       int
	cb       Callback
	oneShot  bool
	unmanage bool // unused: OnEvent unmanages directly on a read error
}

// Manage creates, arms, and registers a timer on m. begin is the delay (or
// absolute deadline, if absolute is true) to the first expiration; interval
// is the period for subsequent expirations, or 0 for a one-shot timer.
func Manage(m *reactor.Monitor, begin, interval time.Duration, absolute bool, cb Callback) (*Provider, error) {
	fd, err := createTimerFD()
	if err != nil {
		return nil, xerrors.Errno(err, "create timerfd")
	}
	if err := armTimerFD(fd, begin, interval, absolute); err != nil {
		return nil, xerrors.Errno(err, "arm timerfd")
	}
	p := &Provider{fd: fd, cb: cb, oneShot: interval <= 0}
	if err := m.Manage(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) Fd() int { return p.fd }

// OnEvent reads the expiration counter and invokes the callback. One-shot
// timers (and any timer whose fd read errors) unmanage themselves
// afterwards, per spec.md §4.D.
func (p *Provider) OnEvent(m *reactor.Monitor, fd int, events uint32) {
	n, err := readExpirations(fd)
	if err != nil {
		_ = m.Unmanage(fd)
		return
	}
	if n == 0 {
		return
	}
	if p.cb != nil {
		p.cb(n)
	}
	if p.oneShot {
		_ = m.Unmanage(fd)
	}
}

// OnUnmanage closes the timerfd, matching the original's RAII timerfd
// destructor. Without this, every one-shot timer (e.g. the connector's
// backoff retry, spec.md §8 scenario S2) would leak its fd on every firing.
func (p *Provider) OnUnmanage(m *reactor.Monitor, fd int) {
	_ = closeTimerFD(fd)
}

var _ reactor.Provider = (*Provider)(nil)
