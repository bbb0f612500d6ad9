package intern

// The write path. All four disciplines share the same skeleton: probe the
// bucket for an empty way, claim it if the discipline allows, otherwise
// pick a victim and perform the final write. Nothing here ever fails:
// Add is best-effort and always writes something (or, under CasAlways,
// deliberately drops a write it lost the handshake for).

// add expects the salted hash; the exported Add applies the seed.
func (c *cache[V, P]) add(v *V, h uint16) {
	if v == nil {
		// A nil value is the empty sentinel and must never be published.
		return
	}
	c.noteAdd()
	ways := c.bucket(h)
	hw := uint32(h)

	switch c.conc {
	case CasOnEmpty:
		c.addCasOnEmpty(ways, v, hw)
	case CasAlways:
		c.addCasAlways(ways, v, hw)
	case Lock:
		c.mu.Lock()
		c.addPlain(ways, v, hw)
		c.mu.Unlock()
	default:
		c.addPlain(ways, v, hw)
	}
}

// publish writes the way's contents. Value first, hash last: a reader that
// observes the non-zero hash is guaranteed to observe the initialized
// value too.
func (c *cache[V, P]) publish(w *way[V], v *V, hw uint32) {
	w.value.Store(v)
	if c.evict == LRUApprox {
		w.stamp.Store(c.tick.Add(1))
	}
	w.hash.Store(hw)
}

// refreshed short-circuits a repeated Add of the same (value, hash) pair:
// the bucket must stay externally unchanged apart from the write stamp.
func (c *cache[V, P]) refreshed(w *way[V], v *V, hw uint32) bool {
	if w.value.Load() != v || w.hash.Load() != hw {
		return false
	}
	if c.evict == LRUApprox {
		w.stamp.Store(c.tick.Add(1))
	}
	return true
}

// addPlain is the None discipline, and the body Lock runs under its mutex:
// direct assignment on both the fast path and the victim write.
func (c *cache[V, P]) addPlain(ways []way[V], v *V, hw uint32) {
	for i := range ways {
		w := &ways[i]
		if c.refreshed(w, v, hw) {
			return
		}
		if w.empty() {
			c.publish(w, v, hw)
			return
		}
	}
	c.noteEvict()
	c.publish(&ways[c.victim(ways)], v, hw)
}

// addCasOnEmpty claims empty ways by CASing the value from nil; the hash
// store afterwards is the publication a reader synchronizes on. A lost
// claim falls through to the next way. The victim write is as
// unsynchronized as under None.
func (c *cache[V, P]) addCasOnEmpty(ways []way[V], v *V, hw uint32) {
	for i := range ways {
		w := &ways[i]
		if c.refreshed(w, v, hw) {
			return
		}
		if !w.empty() {
			continue
		}
		// A way with a zero hash but a live value reads as empty, yet the
		// nil->v claim cannot take it; it falls through like a lost race.
		if w.value.CompareAndSwap(nil, v) {
			if c.evict == LRUApprox {
				w.stamp.Store(c.tick.Add(1))
			}
			w.hash.Store(hw)
			return
		}
	}
	c.noteEvict()
	c.publish(&ways[c.victim(ways)], v, hw)
}

// addCasAlways guards every mutation, fast path and victim write alike, with
// the per-way version handshake, so no reader can ever pair this write's
// hash with another write's value. Failed acquisitions never retry: the
// probe moves to the next way, and a lost victim handshake drops the write
// (the value stays correct at the caller, it just is not cached).
func (c *cache[V, P]) addCasAlways(ways []way[V], v *V, hw uint32) {
	for i := range ways {
		w := &ways[i]
		if c.refreshed(w, v, hw) {
			return
		}
		if !w.empty() {
			continue
		}
		if !c.acquire(w) {
			continue
		}
		if w.empty() {
			c.publish(w, v, hw)
			c.release(w)
			return
		}
		// Filled while we were acquiring; release and keep probing.
		c.release(w)
	}

	w := &ways[c.victim(ways)]
	if !c.acquire(w) {
		return
	}
	c.noteEvict()
	c.publish(w, v, hw)
	c.release(w)
}

// acquire takes write ownership of a way: version must be even (stable)
// and the CAS to odd must win.
func (c *cache[V, P]) acquire(w *way[V]) bool {
	ver := w.version.Load()
	return ver&1 == 0 && w.version.CompareAndSwap(ver, ver+1)
}

// release returns the way to stable. The counter only ever grows, so a
// reader comparing versions across its read cannot be fooled by an ABA.
func (c *cache[V, P]) release(w *way[V]) {
	w.version.Add(1)
}

// victim selects the way to overwrite in a full bucket.
func (c *cache[V, P]) victim(ways []way[V]) int {
	if c.evict == Overwrite {
		return 0
	}
	// LRUApprox: smallest stamp wins, first found on ties.
	vi := 0
	low := ways[0].stamp.Load()
	for i := 1; i < len(ways); i++ {
		if s := ways[i].stamp.Load(); s < low {
			vi, low = i, s
		}
	}
	return vi
}
