package intern

import "github.com/IvanBrykalov/interncache/internal/util"

// Stats is a point-in-time snapshot of the debug counters. Counters only
// grow; they reset with the process, never at runtime.
type Stats struct {
	Adds       uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Collisions uint64
}

// counters are the diagnostic tallies, allocated only when
// EnableDebugMetrics is set. Each lives on its own cache line so
// concurrent workers incrementing different counters do not contend.
type counters struct {
	adds       util.PaddedAtomicUint64
	hits       util.PaddedAtomicUint64
	misses     util.PaddedAtomicUint64
	evictions  util.PaddedAtomicUint64
	collisions util.PaddedAtomicUint64
}

func (c *cache[V, P]) noteAdd() {
	if c.counters != nil {
		c.counters.adds.Add(1)
	}
}

func (c *cache[V, P]) noteHit() {
	if c.counters != nil {
		c.counters.hits.Add(1)
	}
	c.met.Hit()
}

func (c *cache[V, P]) noteMiss() {
	if c.counters != nil {
		c.counters.misses.Add(1)
	}
	c.met.Miss()
}

func (c *cache[V, P]) noteEvict() {
	if c.counters != nil {
		c.counters.evictions.Add(1)
	}
	c.met.Evict()
}

func (c *cache[V, P]) noteCollision() {
	if c.counters != nil {
		c.counters.collisions.Add(1)
	}
	c.met.Collision()
}

// Stats implements Interner. Without EnableDebugMetrics it returns zeros.
func (c *cache[V, P]) Stats() Stats {
	if c.counters == nil {
		return Stats{}
	}
	return Stats{
		Adds:       c.counters.adds.Load(),
		Hits:       c.counters.hits.Load(),
		Misses:     c.counters.misses.Load(),
		Evictions:  c.counters.evictions.Load(),
		Collisions: c.counters.collisions.Load(),
	}
}
