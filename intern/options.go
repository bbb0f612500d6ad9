package intern

// Concurrency selects the write-synchronization discipline. The disciplines
// share one probe/victim skeleton and differ only in how a way is claimed
// and how the final write is published.
type Concurrency uint8

const (
	// None performs unsynchronized writes: no claim protocol, no handshake.
	// Concurrent writers to the same way may silently lose updates and a
	// reader may pair a hash with a value from a different write. Maximum
	// throughput, accepted trade-off.
	None Concurrency = iota

	// CasOnEmpty claims empty ways with a compare-and-swap on the value
	// and publishes the hash afterwards, so the fast path is race free.
	// Eviction writes remain as racy as under None.
	CasOnEmpty

	// CasAlways guards every way mutation with a per-way version counter:
	// even = stable, odd = write in progress. Writers acquire a way by
	// CASing the version to odd, publish, then store back to even; a
	// failed acquisition falls through (or drops the write) rather than
	// retrying. Readers that observe an even, unchanged version around a
	// (hash, value) read are guaranteed an untorn pair.
	CasAlways

	// Lock serializes the whole probe-through-write sequence under one
	// RWMutex scoped to the entire cache instance. Strongest consistency,
	// highest latency under contention.
	Lock
)

func (c Concurrency) String() string {
	switch c {
	case None:
		return "none"
	case CasOnEmpty:
		return "cas-on-empty"
	case CasAlways:
		return "cas-always"
	case Lock:
		return "lock"
	default:
		return "unknown"
	}
}

// Eviction selects the victim when a bucket has no empty way.
type Eviction uint8

const (
	// Overwrite always victimizes way 0. No bookkeeping, maximal churn.
	Overwrite Eviction = iota

	// LRUApprox victimizes the way with the smallest write stamp, ties
	// going to the lowest index. Stamps are refreshed on writes, not
	// reads, so this approximates write recency, not true LRU.
	LRUApprox
)

func (e Eviction) String() string {
	switch e {
	case Overwrite:
		return "overwrite"
	case LRUApprox:
		return "lru-approx"
	default:
		return "unknown"
	}
}

// Metrics exposes engine-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict()
	// Collision fires when a stored hash matched but the structural
	// comparison did not: a genuine 16-bit hash collision.
	Collision()
}

// Bounds the configuration is normalized into before any bucket is
// allocated.
const (
	minCacheBits = 1
	maxCacheBits = 16
	minAssoc     = 1
	maxAssoc     = 4
)

// Options configures an interner. The zero value is safe: it yields a
// 65536-bucket direct-mapped cache with unsynchronized writes.
type Options struct {
	// CacheBits is the log2 of the nominal bucket count, valid in [1,16].
	// Values outside the range (including 0) are reset to 16.
	CacheBits int

	// Associativity is the number of ways per bucket, clamped to [1,4].
	Associativity int

	// Concurrency is the write discipline; zero value is None.
	Concurrency Concurrency

	// Eviction is the victim-selection policy; zero value is Overwrite.
	Eviction Eviction

	// UseNearestPrime sizes the table to the smallest prime above
	// 1<<CacheBits instead of the power of two, trading the mask for a
	// division-free modulo to reduce clustering. Ignored at 16 bits,
	// where the hash is already exactly index width.
	UseNearestPrime bool

	// GenerateGlobalSeed XORs a once-per-process random 16-bit salt into
	// every hash the engine sees, on both the add and lookup paths.
	GenerateGlobalSeed bool

	// EnableDebugMetrics allocates the hit/miss/eviction/collision
	// counters behind Stats(). Off by default; the counters cost an
	// atomic increment per event.
	EnableDebugMetrics bool

	// CoalesceBuilds makes concurrent Intern calls that miss on the same
	// hash share a single build instead of constructing duplicates.
	CoalesceBuilds bool

	// Metrics receives Hit/Miss/Evict/Collision signals. Nil means
	// NoopMetrics; plug the metrics/prom adapter to export them.
	Metrics Metrics
}

// normalized applies the range rules: out-of-range CacheBits resets to the
// maximum, Associativity clamps into its range.
func (o Options) normalized() Options {
	if o.CacheBits < minCacheBits || o.CacheBits > maxCacheBits {
		o.CacheBits = maxCacheBits
	}
	if o.Associativity < minAssoc {
		o.Associativity = minAssoc
	}
	if o.Associativity > maxAssoc {
		o.Associativity = maxAssoc
	}
	return o
}
