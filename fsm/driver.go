// Package fsm implements the transition-table finite-state-machine driver
// described in spec.md §4.E: a table of (state, event) -> (next, callback),
// combined events synthesised from a set of partial events, and a blocking
// queue-backed Machine wrapper.
package fsm

import (
	"sync"

	"github.com/lattice-io/reactorcore/xerrors"
)

// Callback runs after a transition has been committed, outside the driver's
// internal lock.
type Callback[S comparable, E comparable] func(ctx any, from, to S, ev E)

type transitionKey[S comparable, E comparable] struct {
	state S
	event E
}

type transitionValue[S comparable, E comparable] struct {
	next S
	cb   Callback[S, E]
}

// Driver is a single finite-state-machine instance, supporting parallel
// current states (spec.md: "a vector of current states").
type Driver[S comparable, E comparable] struct {
	mu sync.Mutex

	initial  []S
	current  []S
	table    map[transitionKey[S, E]]transitionValue[S, E]
	partials map[E]struct{}
	combined map[E][]E // combined event -> partial events
	pending  map[E]struct{}
	started  bool
}

// NewDriver constructs a Driver with the given initial state vector.
func NewDriver[S comparable, E comparable](initial ...S) *Driver[S, E] {
	return &Driver[S, E]{
		initial:  append([]S(nil), initial...),
		table:    make(map[transitionKey[S, E]]transitionValue[S, E]),
		partials: make(map[E]struct{}),
		combined: make(map[E][]E),
		pending:  make(map[E]struct{}),
	}
}

// AddTransition inserts (cur, ev) -> (next, callback). Duplicate keys yield
// Error(AlreadyExists).
func (d *Driver[S, E]) AddTransition(cur S, ev E, next S, cb Callback[S, E]) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := transitionKey[S, E]{cur, ev}
	if _, ok := d.table[key]; ok {
		return xerrors.New(xerrors.AlreadyExists, "transition already defined")
	}
	d.table[key] = transitionValue[S, E]{next: next, cb: cb}
	return nil
}

// DefineCombined declares that evCombined fires only once every event in
// partials has individually been observed (in any order) since the last
// firing. Neither may overlap a role the other already holds.
func (d *Driver[S, E]) DefineCombined(evCombined E, partials ...E) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.combined[evCombined]; ok {
		return xerrors.New(xerrors.AlreadyExists, "combined event already defined")
	}
	d.combined[evCombined] = append([]E(nil), partials...)
	for _, p := range partials {
		d.partials[p] = struct{}{}
	}
	return nil
}

// Start validates the combined/partial invariants and resets the driver.
func (d *Driver[S, E]) Start() error {
	d.mu.Lock()
	defer func() { d.mu.Unlock() }()

	for key := range d.table {
		if _, ok := d.partials[key.event]; ok {
			return xerrors.New(xerrors.Invalid, "partial event used directly as a transition trigger")
		}
	}
	for ev := range d.combined {
		if _, ok := d.partials[ev]; ok {
			return xerrors.New(xerrors.Invalid, "combined event also registered as a partial")
		}
	}

	d.resetLocked()
	d.started = true
	return nil
}

// Reset clears pending partials and restores the current state vector to
// the initial states.
func (d *Driver[S, E]) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

func (d *Driver[S, E]) resetLocked() {
	d.current = append([]S(nil), d.initial...)
	d.pending = make(map[E]struct{})
}

// Current returns a copy of the current state vector.
func (d *Driver[S, E]) Current() []S {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]S(nil), d.current...)
}

// Transit steps the machine with event, per spec.md §4.E: if event is
// partial, it is recorded as pending; once all partials of some combined
// event have been seen, that combined event fires instead (pending-set
// cleared for that combined event's partials). The effective event is then
// applied to every current state with a matching table entry.
func (d *Driver[S, E]) Transit(ctx any, event E) error {
	d.mu.Lock()

	effective := event
	isEffective := true

	if _, ok := d.partials[event]; ok {
		d.pending[event] = struct{}{}
		isEffective = false
		for combinedEv, parts := range d.combined {
			if d.allPending(parts) {
				for _, p := range parts {
					delete(d.pending, p)
				}
				effective = combinedEv
				isEffective = true
				break
			}
		}
	}

	if !isEffective {
		d.mu.Unlock()
		return nil
	}

	type firing struct {
		idx      int
		from, to S
		cb       Callback[S, E]
	}
	var fired []firing
	matched := false
	for i, s := range d.current {
		key := transitionKey[S, E]{s, effective}
		tv, ok := d.table[key]
		if !ok {
			continue
		}
		matched = true
		d.current[i] = tv.next
		fired = append(fired, firing{idx: i, from: s, to: tv.next, cb: tv.cb})
	}
	d.mu.Unlock()

	if !matched {
		return xerrors.New(xerrors.NoEntry, "no transition for effective event")
	}

	for _, f := range fired {
		if f.cb != nil {
			f.cb(ctx, f.from, f.to, effective)
		}
	}
	return nil
}

func (d *Driver[S, E]) allPending(parts []E) bool {
	for _, p := range parts {
		if _, ok := d.pending[p]; !ok {
			return false
		}
	}
	return len(parts) > 0
}
