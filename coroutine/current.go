package coroutine

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// currentByGoroutine implements the "per-thread current coroutine pointer"
// design note (spec.md §9) for Go, where the unit of execution is a
// goroutine rather than an OS thread. Lookups are keyed by the runtime's
// goroutine id, parsed from runtime.Stack the same way third-party
// goroutine-id packages do it, since the runtime exposes no public API for
// this. Prefer passing a *Coroutine explicitly; Current exists only for API
// entry points that cannot take one.
var (
	currentMu sync.Mutex
	current   = map[int64]*Coroutine{}
)

func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}

func setCurrent(c *Coroutine) {
	currentMu.Lock()
	current[goroutineID()] = c
	currentMu.Unlock()
}

func clearCurrent() {
	id := goroutineID()
	currentMu.Lock()
	delete(current, id)
	currentMu.Unlock()
}

// Current returns the coroutine running on the calling goroutine, or nil if
// the caller is the implicit "main" fiber (no coroutine has been started on
// this goroutine, or the goroutine is one spawned outside a Coroutine's run
// loop).
func Current() *Coroutine {
	currentMu.Lock()
	defer currentMu.Unlock()
	return current[goroutineID()]
}
