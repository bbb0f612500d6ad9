package intern

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/interncache/hash16"
	"github.com/IvanBrykalov/interncache/internal/singleflight"
	"github.com/IvanBrykalov/interncache/internal/util"
)

// ErrNilIdentity is returned by New when no Identity binding is supplied.
var ErrNilIdentity = errors.New("intern: nil Identity binding")

// cache is the set-associative interning engine. The arena is allocated
// once at construction and lives as long as the instance; ways are only
// ever overwritten in place.
type cache[V any, P any] struct {
	ways  []way[V]
	size  uint32 // bucket count
	assoc int

	// Index selection: mask when size is a power of two, otherwise the
	// fixed-point fast-modulo multiplier for the prime size.
	mask  uint32
	magic uint64
	prime bool

	seed  uint16 // 0 when salting is disabled
	conc  Concurrency
	evict Eviction

	id  Identity[V, P]
	met Metrics

	// tick feeds LRUApprox stamps; monotonic, engine local.
	tick atomic.Uint32

	// mu is used only under the Lock discipline: writers exclusive,
	// readers shared. The critical section is the whole instance, not a
	// bucket.
	mu sync.RWMutex

	coalesce bool
	flights  singleflight.Group[V]

	// counters is nil unless EnableDebugMetrics was set.
	counters *counters
}

// New constructs an interner for one value type. Configuration is
// normalized first (CacheBits reset to 16 outside [1,16], Associativity
// clamped to [1,4]); the only construction error left is a missing binding.
func New[V any, P any](id Identity[V, P], opt Options) (Interner[V, P], error) {
	if id == nil {
		return nil, ErrNilIdentity
	}
	opt = opt.normalized()
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}

	c := &cache[V, P]{
		assoc:    opt.Associativity,
		conc:     opt.Concurrency,
		evict:    opt.Eviction,
		id:       id,
		met:      opt.Metrics,
		coalesce: opt.CoalesceBuilds,
	}

	if opt.UseNearestPrime && opt.CacheBits < maxCacheBits {
		p, err := util.NearestPrime(opt.CacheBits)
		if err != nil {
			// Unreachable after normalization; surfaced anyway so a
			// misconfiguration fails at construction, never at runtime.
			return nil, err
		}
		c.size = p
		c.prime = true
		c.magic = util.FastModMultiplier(p)
	} else {
		c.size = 1 << opt.CacheBits
		c.mask = c.size - 1
	}

	if opt.GenerateGlobalSeed {
		c.seed = hash16.GlobalSeed()
	}
	if opt.EnableDebugMetrics {
		c.counters = &counters{}
	}

	c.ways = make([]way[V], int(c.size)*c.assoc)
	return c, nil
}

// index maps a (salted) hash to a bucket in [0, size).
func (c *cache[V, P]) index(h uint16) uint32 {
	if c.prime {
		return util.FastMod(uint32(h), c.size, c.magic)
	}
	return uint32(h) & c.mask
}

// bucket returns the ways of the bucket the hash selects.
func (c *cache[V, P]) bucket(h uint16) []way[V] {
	base := int(c.index(h)) * c.assoc
	return c.ways[base : base+c.assoc]
}

// Add records v under the caller-computed hash.
func (c *cache[V, P]) Add(v *V, hash uint16) {
	c.add(v, hash^c.seed)
}

// Get returns the cached value structurally equal to p, if present.
func (c *cache[V, P]) Get(p P) (*V, bool) {
	v, ok := c.lookup(p, c.id.Hash(p)^c.seed)
	if ok {
		c.noteHit()
	} else {
		c.noteMiss()
	}
	return v, ok
}

// Intern returns the cached value for p, building one on a miss.
//
// Without CoalesceBuilds, concurrent misses for equal parameters may build
// duplicates; all of them are structurally equal and one wins the slot,
// which is harmless for interning. With it, concurrent builders for the
// same hash share one build; a follower whose parameters merely collide on
// the 16-bit hash detects the mismatch and builds independently.
func (c *cache[V, P]) Intern(p P, build func(P) *V) *V {
	h := c.id.Hash(p) ^ c.seed
	if v, ok := c.lookup(p, h); ok {
		c.noteHit()
		return v
	}
	c.noteMiss()

	if !c.coalesce {
		v := build(p)
		c.add(v, h)
		return v
	}

	v, leader := c.flights.Do(uint32(h), func() *V {
		// Double-check after winning the flight: an earlier leader may
		// have published while we queued.
		if v, ok := c.lookup(p, h); ok {
			return v
		}
		v := build(p)
		c.add(v, h)
		return v
	})
	if leader || c.id.Match(v, p) {
		return v
	}
	// Shared a flight with a hash-colliding builder.
	v2 := build(p)
	c.add(v2, h)
	return v2
}

// lookup scans the selected bucket for a way whose stored hash matches AND
// whose value structurally matches p. The hash gate makes most misses a
// couple of integer compares; Match runs only on hash-equal ways.
func (c *cache[V, P]) lookup(p P, h uint16) (*V, bool) {
	if c.conc == Lock {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}

	want := uint32(h)
	ways := c.bucket(h)
	for i := range ways {
		w := &ways[i]

		var wh uint32
		var v *V
		if c.conc == CasAlways {
			// Version handshake: only trust a (hash, value) pair read
			// between two identical even versions. An unstable way is
			// skipped, not retried: the caller treats it as a miss and
			// rebuilds, which interning tolerates.
			ver := w.version.Load()
			if ver&1 != 0 {
				continue
			}
			wh = w.hash.Load()
			v = w.value.Load()
			if w.version.Load() != ver {
				continue
			}
		} else {
			wh = w.hash.Load()
			v = w.value.Load()
		}

		if wh != want || v == nil {
			continue
		}
		if c.id.Match(v, p) {
			return v, true
		}
		c.noteCollision()
	}
	var zero *V
	return zero, false
}

// Len counts occupied ways with a full arena scan.
func (c *cache[V, P]) Len() int {
	if c.conc == Lock {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}
	n := 0
	for i := range c.ways {
		if c.ways[i].value.Load() != nil && c.ways[i].hash.Load() != 0 {
			n++
		}
	}
	return n
}

// Size returns the derived bucket count: 1<<CacheBits, or the nearest
// prime above it.
func (c *cache[V, P]) Size() int { return int(c.size) }
