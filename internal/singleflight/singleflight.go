package singleflight

import "sync"

// Group coalesces concurrent value builds keyed by the bucket hash, so a
// burst of Intern misses for the same parameters constructs one value
// instead of racing duplicates into the same way.
//
// There is deliberately no context parameter: builds are short and CPU
// bound, the engine never awaits I/O, and a follower that cannot be
// cancelled merely waits out one construction.
//
// Concurrency notes:
//   - The first caller for a key becomes the leader and runs build.
//   - Followers block on f.done; the leader publishes f.val before
//     close(f.done), so reads after <-done observe the final value.
//   - Keys are reduced 16-bit hashes, not full identities, so two distinct
//     parameter tuples can share a flight. The leader flag in the result
//     lets the caller detect that case and re-verify the value.
type Group[V any] struct {
	mu sync.Mutex
	m  map[uint32]*flight[V]
}

type flight[V any] struct {
	done chan struct{} // closed once val is published
	val  *V
}

// Do runs build at most once per in-flight key and hands every concurrent
// caller the same result. The boolean reports whether this caller was the
// leader; a follower must match the value against its own parameters
// before trusting it, since hash-colliding builds share flights.
func (g *Group[V]) Do(key uint32, build func() *V) (*V, bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[uint32]*flight[V])
	}
	if f, ok := g.m[key]; ok {
		g.mu.Unlock()
		<-f.done
		return f.val, false
	}

	f := &flight[V]{done: make(chan struct{})}
	g.m[key] = f
	g.mu.Unlock()

	// Build outside the lock, publish, wake followers.
	f.val = build()
	close(f.done)

	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()

	return f.val, true
}
