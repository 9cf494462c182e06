// Package port implements the socket/fd abstraction described in spec.md
// §4.C: an exclusive (move-only) RAII wrapper and a shared, refcounted
// variant with an explicit I/O mutex, plus the multipart message buffer and
// iovec proxy used to frame messages over it.
//
// Fd plumbing (read/writev, non-blocking toggle, SO_ERROR) is
// grounded directly on the teacher's golang.org/x/sys/unix usage in
// eventloop/fd_unix.go.
package port

import (
	"net"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/lattice-io/reactorcore/xerrors"
)

// IoStatus is the three-way outcome of a read/write operation.
type IoStatus uint8

const (
	IoOk IoStatus = iota
	IoClosed
	IoError
)

// IoResult is the result of a Port I/O operation.
type IoResult struct {
	Status IoStatus
	N      int
	Err    error
}

// DelegateID identifies a registered close-delegate for later removal.
type DelegateID uint64

// Socket is the common surface exclusive and shared ports both satisfy, so
// providers can be written against either.
type Socket interface {
	Fd() int
	Alive() bool
	Close() error
	SetNonblocking(bool) error
	ReadN(buf []byte) IoResult
	WriteV(iovs [][]byte) IoResult
	AddOnClose(func()) DelegateID
	RemoveOnClose(DelegateID)
	DifferentEndian() bool
	SetDifferentEndian(bool)
}

// Port is the exclusive, move-only socket handle. Copy by value is a
// programmer error (mirrors the C++ "moved, not copied" invariant); Go
// cannot enforce this statically, so callers must pass *Port.
type Port struct {
	fd              int32
	alive           atomic.Bool
	differentEndian atomic.Bool

	mu        sync.Mutex
	delegates map[DelegateID]func()
	nextID    DelegateID
}

// FromFD wraps an already-open fd.
func FromFD(fd int) *Port {
	p := &Port{fd: int32(fd), delegates: make(map[DelegateID]func())}
	p.alive.Store(true)
	return p
}

// TCP dials addr over TCP and wraps the resulting fd.
func TCP(addr string) (*Port, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, xerrors.Errno(err, "tcp dial")
	}
	return fromConn(conn)
}

// Unix dials addr over a Unix domain socket and wraps the resulting fd.
func Unix(addr string) (*Port, error) {
	conn, err := net.Dial("unix", addr)
	if err != nil {
		return nil, xerrors.Errno(err, "unix dial")
	}
	return fromConn(conn)
}

// ListenTCP binds and listens on addr (e.g. "127.0.0.1:0"), returning the
// listening Port and the assigned address.
func ListenTCP(addr string) (*Port, *net.TCPAddr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, xerrors.Errno(err, "tcp listen")
	}
	p, err := fromListener(ln)
	if err != nil {
		return nil, nil, err
	}
	return p, ln.Addr().(*net.TCPAddr), nil
}

func fromListener(ln net.Listener) (*Port, error) {
	type filer interface {
		File() (*os.File, error)
	}
	fl, ok := ln.(filer)
	if !ok {
		_ = ln.Close()
		return nil, xerrors.New(xerrors.Invalid, "listener type exposes no raw fd")
	}
	f, err := fl.File()
	if err != nil {
		_ = ln.Close()
		return nil, xerrors.Errno(err, "dup listener fd")
	}
	fd := int(f.Fd())
	runtime.SetFinalizer(f, nil)
	_ = ln.Close()
	return FromFD(fd), nil
}

// fromConn takes ownership of conn's underlying file descriptor. File()
// hands back a dup()'d os.File; we detach its GC finalizer so only our Port
// (via Close) ever closes that duplicate, then close the original conn,
// which still owns its own, separate copy of the descriptor.
func fromConn(conn net.Conn) (*Port, error) {
	type filer interface {
		File() (*os.File, error)
	}
	fc, ok := conn.(filer)
	if !ok {
		_ = conn.Close()
		return nil, xerrors.New(xerrors.Invalid, "connection type exposes no raw fd")
	}
	f, err := fc.File()
	if err != nil {
		_ = conn.Close()
		return nil, xerrors.Errno(err, "dup connection fd")
	}
	fd := int(f.Fd())
	runtime.SetFinalizer(f, nil)
	_ = conn.Close()
	return FromFD(fd), nil
}

// Fd returns the underlying file descriptor.
func (p *Port) Fd() int { return int(atomic.LoadInt32(&p.fd)) }

// Alive reports whether the port is still open.
func (p *Port) Alive() bool { return p.alive.Load() }

// DifferentEndian reports the reverse-endian flag.
func (p *Port) DifferentEndian() bool { return p.differentEndian.Load() }

// SetDifferentEndian sets the reverse-endian flag (set by the first header
// read that carries an endian marker differing from the local order).
func (p *Port) SetDifferentEndian(v bool) { p.differentEndian.Store(v) }

// SetNonblocking toggles O_NONBLOCK on the underlying fd.
func (p *Port) SetNonblocking(v bool) error {
	if err := unix.SetNonblock(p.Fd(), v); err != nil {
		return xerrors.Errno(err, "set nonblocking")
	}
	return nil
}

// SOError returns the pending SO_ERROR on the socket (used by the connector
// to discover a failed non-blocking connect).
func (p *Port) SOError() (int, error) {
	errno, err := unix.GetsockoptInt(p.Fd(), unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return 0, xerrors.Errno(err, "getsockopt SO_ERROR")
	}
	return errno, nil
}

// Accept accepts a connection on a listening port, returning a new Port
// wrapping the accepted fd.
func (p *Port) Accept() (*Port, error) {
	fd, _, err := unix.Accept(p.Fd())
	if err != nil {
		if err == unix.EAGAIN {
			return nil, xerrors.New(xerrors.WouldBlock, "accept would block")
		}
		return nil, xerrors.Errno(err, "accept")
	}
	np := FromFD(fd)
	return np, nil
}

// ReadN reads into buf, classifying the result as IoOk/IoClosed/IoError.
func (p *Port) ReadN(buf []byte) IoResult {
	n, err := unix.Read(p.Fd(), buf)
	switch {
	case err != nil:
		if err == unix.EAGAIN {
			return IoResult{Status: IoError, Err: xerrors.New(xerrors.WouldBlock, "read")}
		}
		return IoResult{Status: IoError, Err: xerrors.Errno(err, "read")}
	case n == 0:
		return IoResult{Status: IoClosed}
	default:
		return IoResult{Status: IoOk, N: n}
	}
}

// WriteV writes iovs via writev, the scatter/gather path spec.md requires
// for multipart message sends.
func (p *Port) WriteV(iovs [][]byte) IoResult {
	n, err := unix.Writev(p.Fd(), iovs)
	if err != nil {
		if err == unix.EAGAIN {
			return IoResult{Status: IoError, Err: xerrors.New(xerrors.WouldBlock, "writev")}
		}
		return IoResult{Status: IoError, Err: xerrors.Errno(err, "writev")}
	}
	return IoResult{Status: IoOk, N: n}
}

// AddOnClose registers a close-delegate, invoked exactly once when Close is
// first called (or never, if the port is never closed).
func (p *Port) AddOnClose(fn func()) DelegateID {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.delegates[id] = fn
	return id
}

// RemoveOnClose unregisters a close-delegate.
func (p *Port) RemoveOnClose(id DelegateID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.delegates, id)
}

// Close closes the fd and fires every close-delegate exactly once. Safe to
// call more than once; subsequent calls are no-ops.
func (p *Port) Close() error {
	if !p.alive.CompareAndSwap(true, false) {
		return nil
	}
	p.mu.Lock()
	delegates := make([]func(), 0, len(p.delegates))
	for _, fn := range p.delegates {
		delegates = append(delegates, fn)
	}
	p.mu.Unlock()

	err := unix.Close(p.Fd())
	for _, fn := range delegates {
		fn()
	}
	if err != nil {
		return xerrors.Errno(err, "close")
	}
	return nil
}

var _ Socket = (*Port)(nil)
