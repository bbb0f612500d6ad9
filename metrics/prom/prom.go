package prom

import (
	"github.com/IvanBrykalov/interncache/intern"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements intern.Metrics and exports Prometheus counters.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	evictions  prometheus.Counter
	collisions prometheus.Counter
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Lookups answered from the cache",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Lookups that required building a fresh value",
			ConstLabels: constLabels,
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Victim writes into full buckets",
			ConstLabels: constLabels,
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hash_collisions_total",
			Help:        "Stored hash matched but structural comparison failed",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evictions, a.collisions)
	return a
}

// ObserveOccupancy registers a gauge fed by the interner's Len on every
// scrape. Call it once per cache; lenFn is typically interner.Len.
func (a *Adapter) ObserveOccupancy(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels, lenFn func() int) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   ns,
		Subsystem:   sub,
		Name:        "occupied_ways",
		Help:        "Number of occupied ways at scrape time",
		ConstLabels: constLabels,
	}, func() float64 { return float64(lenFn()) }))
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evictions.Inc() }

// Collision increments the hash-collision counter.
func (a *Adapter) Collision() { a.collisions.Inc() }

// Compile-time check: ensure Adapter implements intern.Metrics.
var _ intern.Metrics = (*Adapter)(nil)
