package port

import "sync"

// SharedPort wraps an exclusive Port with an explicit I/O mutex and
// reference counting, per spec.md §4.C: "Adds an explicit I/O mutex...
// serialisation is the caller's duty unless the provider grabs lock()."
// Fd-mutating operations themselves are NOT serialised by SharedPort; only
// Lock/Unlock around composite operations gives that guarantee.
type SharedPort struct {
	io sync.Mutex

	mu   sync.Mutex
	refs int
	p    *Port
}

// NewShared wraps p with a refcount of 1.
func NewShared(p *Port) *SharedPort {
	return &SharedPort{p: p, refs: 1}
}

// Lock acquires the I/O mutex and returns an unlock func, so callers can
// write `defer sp.Lock()()` for a composite read-modify-write.
func (sp *SharedPort) Lock() func() {
	sp.io.Lock()
	return sp.io.Unlock
}

// Retain increments the refcount and returns sp for chaining.
func (sp *SharedPort) Retain() *SharedPort {
	sp.mu.Lock()
	sp.refs++
	sp.mu.Unlock()
	return sp
}

// Release decrements the refcount, closing the underlying port once it
// reaches zero.
func (sp *SharedPort) Release() error {
	sp.mu.Lock()
	sp.refs--
	last := sp.refs == 0
	sp.mu.Unlock()
	if last {
		return sp.p.Close()
	}
	return nil
}

// Port returns the wrapped exclusive port. Valid only while the caller
// holds a reference (via Retain or the original NewShared).
func (sp *SharedPort) Port() *Port { return sp.p }

// Weak returns a non-owning observer of sp.
func (sp *SharedPort) Weak() *WeakPort {
	return &WeakPort{sp: sp}
}

// WeakPort lets a provider reference a SharedPort without keeping it alive.
// Lock attempts to upgrade to a live reference.
type WeakPort struct {
	mu sync.Mutex
	sp *SharedPort
}

// Lock attempts to upgrade the weak reference to a strong one, retaining
// it for the caller. ok is false if the underlying port has already been
// fully released.
func (w *WeakPort) Lock() (sp *SharedPort, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sp == nil {
		return nil, false
	}
	w.sp.mu.Lock()
	alive := w.sp.refs > 0
	if alive {
		w.sp.refs++
	}
	w.sp.mu.Unlock()
	if !alive {
		w.sp = nil
		return nil, false
	}
	return w.sp, true
}

// Clear drops the weak reference, e.g. once the observer is notified the
// port has gone away.
func (w *WeakPort) Clear() {
	w.mu.Lock()
	w.sp = nil
	w.mu.Unlock()
}

var _ Socket = (*Port)(nil)

// SharedSocket adapts SharedPort to the Socket interface for providers that
// want to treat exclusive and shared ports uniformly; callers are expected
// to bracket composite operations with Lock/Unlock themselves since Socket
// methods here simply delegate to the wrapped Port.
type SharedSocket struct {
	*SharedPort
}

func (s SharedSocket) Fd() int                          { return s.Port().Fd() }
func (s SharedSocket) Alive() bool                       { return s.Port().Alive() }
func (s SharedSocket) Close() error                      { return s.Release() }
func (s SharedSocket) SetNonblocking(v bool) error        { return s.Port().SetNonblocking(v) }
func (s SharedSocket) ReadN(buf []byte) IoResult          { return s.Port().ReadN(buf) }
func (s SharedSocket) WriteV(iovs [][]byte) IoResult      { return s.Port().WriteV(iovs) }
func (s SharedSocket) AddOnClose(fn func()) DelegateID    { return s.Port().AddOnClose(fn) }
func (s SharedSocket) RemoveOnClose(id DelegateID)        { s.Port().RemoveOnClose(id) }
func (s SharedSocket) DifferentEndian() bool              { return s.Port().DifferentEndian() }
func (s SharedSocket) SetDifferentEndian(v bool)          { s.Port().SetDifferentEndian(v) }

var _ Socket = SharedSocket{}
