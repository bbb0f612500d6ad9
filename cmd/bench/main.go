// Command bench runs a synthetic interning workload against the engine and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/interncache/hash16"
	"github.com/IvanBrykalov/interncache/intern"
	pmet "github.com/IvanBrykalov/interncache/metrics/prom"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// sym is the interned value: a synthetic symbol named by its key number.
type sym struct {
	Name string
	Num  uint64
}

type symKey struct {
	Name string
	Num  uint64
}

type symIdentity struct{ kind hash16.Kind }

func (id symIdentity) Hash(k symKey) uint16 {
	d := hash16.New(id.kind)
	d.String(k.Name)
	d.Word(k.Num)
	return d.Sum16()
}

func (symIdentity) Match(s *sym, k symKey) bool {
	return s.Num == k.Num && s.Name == k.Name
}

func parseConcurrency(s string) (intern.Concurrency, error) {
	switch s {
	case "none":
		return intern.None, nil
	case "casempty":
		return intern.CasOnEmpty, nil
	case "casalways":
		return intern.CasAlways, nil
	case "lock":
		return intern.Lock, nil
	}
	return 0, fmt.Errorf("unknown concurrency: %q (use none, casempty, casalways or lock)", s)
}

func parseEviction(s string) (intern.Eviction, error) {
	switch s {
	case "overwrite":
		return intern.Overwrite, nil
	case "lru":
		return intern.LRUApprox, nil
	}
	return 0, fmt.Errorf("unknown eviction: %q (use overwrite or lru)", s)
}

func parseHashKind(s string) (hash16.Kind, error) {
	switch s {
	case "xorfold":
		return hash16.XorFold, nil
	case "fnv":
		return hash16.FNV, nil
	case "murmur":
		return hash16.Murmur, nil
	case "xxhash":
		return hash16.XXHash, nil
	}
	return 0, fmt.Errorf("unknown hash kind: %q (use xorfold, fnv, murmur or xxhash)", s)
}

func main() {
	// ---- Flags ----
	var (
		bits     = flag.Int("bits", 12, "cache bits (bucket count = 1<<bits)")
		assoc    = flag.Int("assoc", 4, "ways per bucket [1..4]")
		conc     = flag.String("concurrency", "casempty", "write discipline: none | casempty | casalways | lock")
		eviction = flag.String("eviction", "lru", "eviction: overwrite | lru")
		prime    = flag.Bool("prime", false, "size buckets to the nearest prime above 1<<bits")
		salt     = flag.Bool("salt", false, "salt hashes with the per-process seed")
		hashKind = flag.String("hash", "murmur", "hash kind: xorfold | fnv | murmur | xxhash")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		getPct   = flag.Int("gets", 80, "plain Get percentage [0..100]; the rest are Intern")

		keys  = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	concVal, err := parseConcurrency(*conc)
	if err != nil {
		log.Fatal(err)
	}
	evictVal, err := parseEviction(*eviction)
	if err != nil {
		log.Fatal(err)
	}
	kindVal, err := parseHashKind(*hashKind)
	if err != nil {
		log.Fatal(err)
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "intern", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build engine ----
	c, err := intern.New[sym, symKey](symIdentity{kind: kindVal}, intern.Options{
		CacheBits:          *bits,
		Associativity:      *assoc,
		Concurrency:        concVal,
		Eviction:           evictVal,
		UseNearestPrime:    *prime,
		GenerateGlobalSeed: *salt,
		EnableDebugMetrics: true,
		Metrics:            metrics,
	})
	if err != nil {
		log.Fatal(err)
	}
	metrics.ObserveOccupancy(nil, "intern", "bench", nil, c.Len)

	build := func(k symKey) *sym { return &sym{Name: k.Name, Num: k.Num} }

	// ---- Preload the hot head of the keyspace ----
	preload := c.Size() * *assoc / 2
	for i := 0; i < preload; i++ {
		k := symKey{Name: "sym:" + strconv.Itoa(i), Num: uint64(i)}
		c.Intern(k, build)
	}

	// ---- Snapshot flags for goroutines ----
	getPctVal := *getPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var gets, interns, hits, total uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			keyByZipf := func() symKey {
				n := localZipf.Uint64()
				return symKey{Name: "sym:" + strconv.FormatUint(n, 10), Num: n}
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				if int(localR.Int31n(100)) < getPctVal {
					atomic.AddUint64(&gets, 1)
					if _, ok := c.Get(keyByZipf()); ok {
						atomic.AddUint64(&hits, 1)
					}
				} else {
					atomic.AddUint64(&interns, 1)
					c.Intern(keyByZipf(), build)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	getsN := atomic.LoadUint64(&gets)
	internsN := atomic.LoadUint64(&interns)
	hitsN := atomic.LoadUint64(&hits)

	hitRate := 0.0
	if getsN > 0 {
		hitRate = float64(hitsN) / float64(getsN) * 100
	}

	fmt.Printf("bits=%d assoc=%d conc=%s evict=%s prime=%v hash=%s workers=%d keys=%d dur=%v seed=%d\n",
		*bits, *assoc, *conc, *eviction, *prime, *hashKind, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  gets=%d  interns=%d\n",
		ops, float64(ops)/elapsed.Seconds(), getsN, internsN)
	fmt.Printf("get hit-rate=%.2f%%  Len()=%d  buckets=%d\n", hitRate, c.Len(), c.Size())
	fmt.Printf("stats: %+v\n", c.Stats())
}
