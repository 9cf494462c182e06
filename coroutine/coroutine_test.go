package coroutine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lattice-io/reactorcore/coroutine"
)

func TestSwitchToRunsBodyToCompletion(t *testing.T) {
	var ran bool
	co := coroutine.New(0, func(c *coroutine.Coroutine) {
		ran = true
	})
	st := co.SwitchTo(nil)
	assert.True(t, ran)
	assert.Equal(t, coroutine.Exited, st)
	assert.Equal(t, coroutine.Exited, co.Status())
}

func TestYieldReturnsControlAndResumes(t *testing.T) {
	var order []string
	co := coroutine.New(0, func(c *coroutine.Coroutine) {
		order = append(order, "a")
		c.Yield()
		order = append(order, "b")
	})

	st := co.SwitchTo(nil)
	assert.Equal(t, coroutine.Alive, st)
	assert.Equal(t, []string{"a"}, order)

	st = co.SwitchTo(nil)
	assert.Equal(t, coroutine.Exited, st)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestExitWithIsSticky(t *testing.T) {
	co := coroutine.New(0, func(c *coroutine.Coroutine) {
		c.Abort()
	})
	st := co.SwitchTo(nil)
	assert.Equal(t, coroutine.Aborted, st)

	// every subsequent entry returns immediately with the same status
	st = co.SwitchTo(nil)
	assert.Equal(t, coroutine.Aborted, st)
}

func TestGeneratorYieldsValuesInOrder(t *testing.T) {
	g := coroutine.NewGenerator[int](1, func(y func(int)) {
		y(1)
		y(2)
		y(3)
	})
	assert.Equal(t, []int{1, 2, 3}, g.Collect())
	assert.Equal(t, coroutine.Exited, g.Status())
}

func TestGeneratorAbortedBodyLeavesStatusAborted(t *testing.T) {
	g := coroutine.NewGenerator[int](4, func(y func(int)) {
		y(1)
		panic(abortSentinel{})
	})
	_, ok := g.Next()
	assert.True(t, ok)
	// the buffer never filled, so the first resume already ran the body
	// into the panic, recovered as Aborted; the generator is now exhausted
	v, ok := g.Next()
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.Equal(t, coroutine.Aborted, g.Status())
}

type abortSentinel struct{}
