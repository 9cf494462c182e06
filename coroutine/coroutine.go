// Package coroutine implements a cooperative fiber on top of a goroutine and
// a pair of unbuffered channels, standing in for the architecture-specific
// context-switch primitive (getcontext/makecontext/swapcontext) of the
// original C++ core. Go exposes no supported API for manual register/stack
// switching, so the "exactly one coroutine runs at a time" invariant is
// instead enforced by exactly one side of a resume/yield channel pair being
// receivable at any instant — see DESIGN.md.
package coroutine

import (
	"sync"

	"github.com/lattice-io/reactorcore/xerrors"
)

// Status mirrors the C++ Alive/Exited/Aborted tri-state.
type Status uint8

const (
	Alive Status = iota
	Exited
	Aborted
)

func (s Status) String() string {
	switch s {
	case Exited:
		return "exited"
	case Aborted:
		return "aborted"
	default:
		return "alive"
	}
}

// Func is the body of a coroutine. It receives the coroutine itself so it
// can call Yield.
type Func func(c *Coroutine)

// Coroutine is a cooperative fiber. The zero value is not usable; construct
// with New.
type Coroutine struct {
	target Func
	status Status

	from *Coroutine // the coroutine that most recently resumed us

	resume chan struct{} // closed/sent-to by the resumer to wake the body
	yield  chan struct{} // sent-to by the body to hand control back

	mu      sync.Mutex
	started bool
}

// New creates a coroutine bound to target. The stack size parameter exists
// to preserve the original constructor's shape (stack, body) but has no
// effect: goroutine stacks grow dynamically.
func New(stackSize int, target Func) *Coroutine {
	_ = stackSize
	return &Coroutine{
		target: target,
		status: Alive,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
}

// Status returns the coroutine's current status.
func (c *Coroutine) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SwitchTo resumes c, marking the calling coroutine (which may be nil, the
// goroutine's implicit "main" fiber) as c.from, and blocks the caller until
// c yields, exits, or aborts.
func (c *Coroutine) SwitchTo(caller *Coroutine) Status {
	c.mu.Lock()
	if c.status != Alive {
		st := c.status
		c.mu.Unlock()
		return st
	}
	c.from = caller
	first := !c.started
	c.started = true
	c.mu.Unlock()

	if first {
		go c.run()
	} else {
		c.resume <- struct{}{}
	}
	<-c.yield

	return c.Status()
}

func (c *Coroutine) run() {
	setCurrent(c)
	defer clearCurrent()
	defer func() {
		if r := recover(); r != nil {
			s := Aborted
			if t, ok := r.(terminal); ok {
				s = t.status
			}
			c.mu.Lock()
			c.status = s
			c.mu.Unlock()
			c.yield <- struct{}{}
			return
		}
	}()
	c.target(c)
	c.mu.Lock()
	if c.status == Alive {
		c.status = Exited
	}
	c.mu.Unlock()
	c.yield <- struct{}{}
}

// Yield switches back to the coroutine that resumed us, and returns once we
// are resumed again. Calling Yield on an already-terminal coroutine (from
// inside a deferred cleanup, say) is a no-op.
func (c *Coroutine) Yield() {
	c.mu.Lock()
	if c.status != Alive {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.yield <- struct{}{}
	<-c.resume
}

// Exit marks the coroutine Exited and switches to from forever: every
// subsequent SwitchTo returns immediately with that status.
func (c *Coroutine) Exit() {
	c.exitWith(Exited)
}

// Abort marks the coroutine Aborted and switches to from forever.
func (c *Coroutine) Abort() {
	c.exitWith(Aborted)
}

func (c *Coroutine) exitWith(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
	panic(terminal{s})
}

// terminal is recovered by run to unwind the body's goroutine stack cleanly
// when Exit/Abort is called mid-body.
type terminal struct{ status Status }

// From returns the coroutine that most recently resumed c, or nil if c is
// the outermost fiber or has never been resumed.
func (c *Coroutine) From() *Coroutine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.from
}

// ErrNotAlive is an Invalid-kind error describing a coroutine that is no
// longer Alive. SwitchTo and Yield do not return it: they report a terminal
// coroutine through its Status.
var ErrNotAlive = xerrors.New(xerrors.Invalid, "coroutine is not alive")
