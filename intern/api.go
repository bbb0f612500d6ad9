package intern

// Identity binds a value type to the engine. The per-type glue, written by
// hand or emitted by a generator, implements it once per cacheable type.
//
// P is a borrowed parameter view over the identity-defining fields of a
// candidate value: a plain value type that must not escape the call that
// produced it. Hash and Match must agree: if Match(v, p) is true for some
// v built from p, then Hash(p) must equal the hash v was added under. The
// engine assumes this consistency and does not enforce it.
type Identity[V any, P any] interface {
	// Hash reduces the parameter view to the engine's 16-bit hash.
	// The low bits carry the bucket-selection signal; 0 is the empty-way
	// sentinel (see the package documentation for the consequences).
	Hash(p P) uint16

	// Match reports whether the cached value was built from parameters
	// structurally equal to p.
	Match(v *V, p P) bool
}

// Interner is a fixed-size, set-associative memoization cache for one value
// type. All methods are safe for concurrent use; how much the writers are
// actually synchronized is decided by Options.Concurrency.
//
// Every operation is a short, bounded sequence of loads and stores: no
// I/O, no background goroutine, nothing to close.
type Interner[V any, P any] interface {
	// Add records v under the given (unsalted) hash. It always succeeds:
	// an empty way is claimed if one exists, otherwise the eviction policy
	// picks a victim and v replaces it.
	Add(v *V, hash uint16)

	// Get returns the cached value structurally equal to p, if any.
	// A hit returns the original pointer, enabling identity-based
	// fast paths downstream.
	Get(p P) (*V, bool)

	// Intern returns the cached value for p, building and recording a
	// fresh one on a miss. build must return a non-nil value.
	Intern(p P, build func(P) *V) *V

	// Len counts the occupied ways. It scans the arena; intended for
	// diagnostics and metrics, not hot paths.
	Len() int

	// Size returns the number of buckets (the derived cache size).
	Size() int

	// Stats returns a snapshot of the debug counters. All zeros unless
	// the interner was built with EnableDebugMetrics.
	Stats() Stats
}
