// Package singleflight coalesces concurrent loads of the same key.
package singleflight

import (
	"context"
	"fmt"
	"sync"
)

// Group runs fn at most once per key among concurrent callers; the others
// wait for the shared result. The zero value is ready to use.
//
// Cancelling ctx unblocks only the waiting follower; it does not stop the
// leader's fn. Thread ctx into fn if the work itself must be cancelled.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed once val/err are published
	val  V
	err  error
}

// Do runs fn for key unless a call is already in flight, in which case it
// waits for that call's result (or ctx). A panic in fn is converted into an
// error for every waiter and re-raised in the leader.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(key, c, fn)
	return c.val, c.err
}

// run executes fn outside the lock and always publishes and forgets c.
func (g *Group[K, V]) run(key K, c *call[V], fn func() (V, error)) {
	defer func() {
		r := recover()
		if r != nil {
			c.err = fmt.Errorf("singleflight: load panicked: %v", r)
		}
		close(c.done)

		g.mu.Lock()
		delete(g.m, key)
		g.mu.Unlock()

		if r != nil {
			panic(r)
		}
	}()
	c.val, c.err = fn()
}
