// Package intern provides a fixed-size, N-way set-associative memoization
// cache for immutable value objects. Structurally-equal construction
// requests reuse a previously built instance, so downstream code can rely
// on pointer identity for fast-path comparisons instead of deep equality.
//
// # Design
//
//   - Storage: one flat arena of buckets allocated at construction, each
//     bucket holding 1..4 ways. There is no resizing, no deletion and no
//     iteration; ways are only ever claimed or overwritten in place.
//     Lookup and insert are a handful of loads and compares: hash, mask
//     (or division-free modulo for prime table sizes), linear scan of at
//     most four ways.
//
//   - Hashing: callers supply a 16-bit identity hash through the
//     Identity binding; the hash16 package provides the standard family
//     (XOR-fold, FNV-1a, Murmur-mix, xxhash) plus an optional per-process
//     salt. A stored hash of 0 doubles as the empty-way sentinel, so a
//     legitimately zero hash can be silently treated as free, an accepted
//     limitation of the layout.
//
//   - Eviction: Overwrite always replaces way 0; LRUApprox replaces the
//     way with the oldest write stamp. The stamp is refreshed on writes
//     only, so this approximates write recency, not true LRU.
//
//   - Concurrency: four write disciplines trade consistency for
//     throughput. None writes directly and accepts lost updates;
//     CasOnEmpty makes only the empty-slot claim race free; CasAlways
//     guards every way mutation with a per-way version handshake and drops
//     writes it loses instead of spinning; Lock serializes writers behind
//     one instance-wide RWMutex. Weaker disciplines are the deliberate
//     trade, not a bug: at worst a value fails to stay cached and its
//     caller keeps a perfectly valid uncached instance.
//
//   - Observability: an Options.Metrics hook (NoopMetrics by default, a
//     Prometheus adapter in metrics/prom) plus optional debug counters
//     behind EnableDebugMetrics, readable via Stats.
//
//   - Ownership: instances are constructed explicitly with New, or held by
//     a Registry keyed by (value type, domain) when several packages need
//     to share one arena per type.
//
// # Basic usage
//
//	type span struct{ file string; line, col int }
//
//	type spanParams struct{ file string; line, col int }
//
//	type spanIdentity struct{}
//
//	func (spanIdentity) Hash(p spanParams) uint16 {
//	    d := hash16.New(hash16.FNV)
//	    d.String(p.file)
//	    d.Word(uint64(p.line))
//	    d.Word(uint64(p.col))
//	    return d.Sum16()
//	}
//
//	func (spanIdentity) Match(v *span, p spanParams) bool {
//	    return v.file == p.file && v.line == p.line && v.col == p.col
//	}
//
//	spans, _ := intern.New[span, spanParams](spanIdentity{}, intern.Options{
//	    CacheBits:     12,
//	    Associativity: 2,
//	    Concurrency:   intern.CasOnEmpty,
//	    Eviction:      intern.LRUApprox,
//	})
//
//	s := spans.Intern(spanParams{"main.go", 10, 4}, func(p spanParams) *span {
//	    return &span{file: p.file, line: p.line, col: p.col}
//	})
//	// A second Intern with equal parameters returns the same *span.
//
// # Choosing a discipline
//
// Single-writer or sharded-by-construction callers want None. Mostly-insert
// workloads with rare evictions want CasOnEmpty. Workloads that read
// concurrently with heavy eviction churn and cannot tolerate a torn
// hash/value pairing want CasAlways. Lock is the reference discipline:
// slowest under contention, simplest to reason about.
//
// Every operation is bounded and allocation free on the hit path; there is
// no background work, no context plumbing and nothing to close.
package intern
