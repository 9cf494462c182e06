// Package connector implements the connector provider of spec.md §4.D: a
// non-blocking connect against a target address, replaced in-place by a
// receiver once the connection succeeds, with exponential backoff retries
// (2s, x1.5, capped at 30s) on failure.
package connector

import (
	"time"

	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/provider/receiver"
	"github.com/lattice-io/reactorcore/provider/timer"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/service"
	"github.com/lattice-io/reactorcore/xerrors"
)

const (
	initialDelay = 2 * time.Second
	maxDelay     = 30 * time.Second
)

// Provider is the connector provider. network is "tcp" or "unix"; addr is a
// "host:port" string or a filesystem path respectively.
type Provider struct {
	reactor.BaseProvider

	network     string
	addr        string
	svc         service.Service
	hint        any
	msgBufSlots int

	sock         *port.Port
	delay        time.Duration
	initialDelay time.Duration
	maxDelay     time.Duration
	onError      func(p *port.Port, err error)
}

// New builds a connector targeting addr over network, creating (but not
// connecting) the initial socket. Backoff starts at 2s and is capped at 30s;
// use SetBackoff before Manage to override either bound.
func New(network, addr string, svc service.Service, hint any, msgBufSlots int) (*Provider, error) {
	c := &Provider{
		network:      network,
		addr:         addr,
		svc:          svc,
		hint:         hint,
		msgBufSlots:  msgBufSlots,
		delay:        initialDelay,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
	sock, err := c.makeSocket()
	if err != nil {
		return nil, err
	}
	c.sock = sock
	return c, nil
}

// SetBackoff overrides the connector's initial retry delay and the cap it
// backs off to (x1.5 per attempt). Zero values leave the corresponding bound
// unchanged. Must be called before the connector is managed.
func (c *Provider) SetBackoff(initial, max time.Duration) {
	if initial > 0 {
		c.initialDelay = initial
		c.delay = initial
	}
	if max > 0 {
		c.maxDelay = max
	}
}

// OnError installs a callback for connect/retry failures.
func (c *Provider) OnError(fn func(p *port.Port, err error)) {
	c.onError = fn
}

func (c *Provider) makeSocket() (*port.Port, error) {
	if c.network == "unix" {
		return port.NewUnixSocket()
	}
	return port.NewTCPSocket()
}

func (c *Provider) Fd() int                { return c.sock.Fd() }
func (c *Provider) DefaultEvents() uint32 { return reactor.EPOLLOUT }

// OnManage sets the socket non-blocking and issues the first connect. A
// close-delegate that unmanages the fd is deliberately NOT registered here
// (unlike receiver): a failed-connect retry must recreate the socket while
// this same provider object stays alive to keep retrying, per spec.md §4.D.
func (c *Provider) OnManage(m *reactor.Monitor, fd int) {
	_ = c.sock.SetNonblocking(true)
	if err := c.doConnect(m); err != nil && !xerrors.Is(err, xerrors.InProgress) {
		c.startTimer(m, fd)
	}
}

func (c *Provider) doConnect(m *reactor.Monitor) error {
	c.svc.OnPreConnect(m, c.sock)
	return c.sock.Connect(c.network, c.addr)
}

// OnEvent fires on EPOLLOUT: it checks SO_ERROR to learn whether the
// deferred connect succeeded, replacing itself with a receiver on success
// or arming a backoff retry on failure.
func (c *Provider) OnEvent(m *reactor.Monitor, fd int, events uint32) {
	errno, err := c.sock.SOError()
	if err != nil {
		if c.onError != nil {
			c.onError(c.sock, err)
		}
		_ = m.Unmanage(fd)
		return
	}
	if errno != 0 {
		if c.onError != nil {
			c.onError(c.sock, xerrors.Newf(xerrors.System, "connect failed: errno %d", errno))
		}
		c.startTimer(m, fd)
		return
	}

	_ = c.sock.SetNonblocking(false)
	rp := receiver.New(c.sock, c.svc, c.hint, c.msgBufSlots)
	_ = m.ChangeProvider(fd, rp)
	_ = m.ChangeEvent(fd, reactor.EPOLLIN)
	rp.OnManage(m, fd)
}

// startTimer suspends the connector's fd and arms a one-shot timer with
// exponential backoff (x1.5, capped at maxDelay, 30s unless SetBackoff
// changed it) before retrying.
func (c *Provider) startTimer(m *reactor.Monitor, fd int) {
	_ = m.Suspend(fd)

	delay := c.delay
	c.delay += c.delay / 2
	if c.delay > c.maxDelay {
		c.delay = c.maxDelay
	}

	if _, err := timer.Manage(m, delay, 0, false, func(uint64) {
		c.retryConnect(m, fd)
	}); err != nil {
		if c.onError != nil {
			c.onError(c.sock, err)
		}
		_ = m.Unmanage(fd)
	}
}

// retryConnect creates a brand new socket and atomically transfers the
// provider's identity to its fd via ChangeFD before the old fd is closed,
// so no window exists where another thread's fd could collide with the
// recycled number (spec.md §4.D / §9 open question (b): the monitor is
// single-threaded, but the workaround costs nothing and is retained).
func (c *Provider) retryConnect(m *reactor.Monitor, oldFd int) {
	newSock, err := c.makeSocket()
	if err != nil {
		if c.onError != nil {
			c.onError(c.sock, err)
		}
		_ = m.Unmanage(oldFd)
		return
	}
	newFd := newSock.Fd()
	_ = m.ChangeFD(oldFd, newFd, reactor.EPOLLOUT)
	_ = c.sock.Close()
	c.sock = newSock
	_ = c.sock.SetNonblocking(true)

	if err := c.doConnect(m); err != nil && !xerrors.Is(err, xerrors.InProgress) {
		c.startTimer(m, newFd)
		return
	}
	// ChangeFD above already registered newFd with the poller at
	// EPOLLOUT; no separate Resume is needed (and would just hit EEXIST).
}

var _ reactor.Provider = (*Provider)(nil)
