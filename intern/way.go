package intern

import "sync/atomic"

// way is one slot within a bucket. The arena is a flat slice; bucket b of a
// cache with associativity A spans ways[b*A : (b+1)*A].
//
// Every field is atomic regardless of the configured Concurrency: the Go
// memory model has no benign data race, so even the None discipline uses
// plain atomic stores. What the disciplines vary is the claim and publish
// protocol, not the store width.
type way[V any] struct {
	// value is the cached object; nil denotes an empty way.
	value atomic.Pointer[V]

	// hash holds the 16-bit stored hash in the low bits. 0 doubles as the
	// empty sentinel, so a legitimate zero hash is indistinguishable from
	// an empty way (a documented limitation).
	hash atomic.Uint32

	// stamp is the logical tick of the last write to this way. Only the
	// LRUApprox policy reads it.
	stamp atomic.Uint32

	// version is the CasAlways write handshake: even = stable, odd =
	// write in progress. Unused by the other disciplines.
	version atomic.Uint32
}

// empty reports whether the way is insertable. Both conditions count: a
// non-nil value under a zero hash is still treated as free and will be
// overwritten.
func (w *way[V]) empty() bool {
	return w.hash.Load() == 0 || w.value.Load() == nil
}
