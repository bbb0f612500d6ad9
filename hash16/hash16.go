// Package hash16 provides the 16-bit identity hash family used by the
// interning engine.
//
// A Digest accumulates the identity-defining fields of a value (words,
// strings, raw bytes) and folds the running 64-bit state down to 16 bits,
// the width the engine's bucket selection consumes. Four mixing rules are
// provided; all of them are deterministic within a process and allocation
// free, which is the whole contract. The engine never special-cases which
// Kind produced a hash, and a hand-written hash function is just as valid.
//
// The zero hash is the engine's empty-way sentinel, so a value whose fields
// legitimately fold to 0 is indistinguishable from an empty slot. That is a
// documented limitation, not something Digest tries to paper over.
package hash16

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Kind selects the mixing rule of a Digest.
type Kind uint8

const (
	// XorFold XORs field words together and folds. Cheapest and weakest:
	// identical fields cancel pairwise.
	XorFold Kind = iota
	// FNV accumulates bytes with 64-bit FNV-1a and folds.
	FNV
	// Murmur runs each word through the Murmur3 64-bit finalizer.
	Murmur
	// XXHash mixes fields with xxhash (github.com/cespare/xxhash/v2).
	XXHash
)

func (k Kind) String() string {
	switch k {
	case XorFold:
		return "xorfold"
	case FNV:
		return "fnv"
	case Murmur:
		return "murmur"
	case XXHash:
		return "xxhash"
	default:
		return "unknown"
	}
}

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

// Digest is a streaming accumulator over identity fields. It is a plain
// value type: copy it freely, never share one between goroutines mid-stream.
type Digest struct {
	kind Kind
	acc  uint64
}

// New returns a fresh Digest for the given mixing rule.
func New(kind Kind) Digest {
	d := Digest{kind: kind}
	if kind == FNV {
		d.acc = fnvOffset64
	}
	return d
}

// Word feeds one 64-bit field into the digest. Narrower integer fields
// should be widened by the caller; pointer-identity fields should not be
// fed at all (the engine hashes structure, not addresses).
func (d *Digest) Word(x uint64) {
	switch d.kind {
	case FNV:
		acc := d.acc
		for i := 0; i < 8; i++ {
			acc ^= x & 0xff
			acc *= fnvPrime64
			x >>= 8
		}
		d.acc = acc
	case Murmur:
		d.acc = mix64(d.acc ^ mix64(x))
	case XXHash:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], x)
		d.acc = mix64(d.acc) ^ xxhash.Sum64(b[:])
	default: // XorFold
		d.acc ^= x
	}
}

// String feeds a string field without allocating.
func (d *Digest) String(s string) {
	if d.kind == XXHash {
		d.acc = mix64(d.acc) ^ xxhash.Sum64String(s)
		return
	}
	if d.kind == FNV {
		acc := d.acc
		for i := 0; i < len(s); i++ {
			acc ^= uint64(s[i])
			acc *= fnvPrime64
		}
		d.acc = acc
		return
	}
	d.foldChunks(len(s), func(i int) byte { return s[i] })
}

// Bytes feeds a byte-slice field.
func (d *Digest) Bytes(b []byte) {
	if d.kind == XXHash {
		d.acc = mix64(d.acc) ^ xxhash.Sum64(b)
		return
	}
	if d.kind == FNV {
		acc := d.acc
		for _, c := range b {
			acc ^= uint64(c)
			acc *= fnvPrime64
		}
		d.acc = acc
		return
	}
	d.foldChunks(len(b), func(i int) byte { return b[i] })
}

// foldChunks packs bytes little-endian into 64-bit words and feeds them
// through Word. The trailing partial word is length-tagged so "ab"+"c" and
// "abc" do not collide trivially.
func (d *Digest) foldChunks(n int, at func(int) byte) {
	var w uint64
	shift := uint(0)
	for i := 0; i < n; i++ {
		w |= uint64(at(i)) << shift
		shift += 8
		if shift == 64 {
			d.Word(w)
			w, shift = 0, 0
		}
	}
	if shift != 0 {
		d.Word(w | uint64(n)<<shift)
	}
}

// Sum16 folds the accumulated state down to the engine's hash width.
func (d *Digest) Sum16() uint16 {
	acc := d.acc
	if d.kind == Murmur {
		acc = mix64(acc)
	}
	return Fold16(acc)
}

// Fold16 XOR-folds a 64-bit word into 16 bits, preserving entropy from
// every input bit in the low 16 the bucket selector consumes.
func Fold16(x uint64) uint16 {
	x ^= x >> 32
	x ^= x >> 16
	return uint16(x)
}

// mix64 is the Murmur3 fmix64 finalizer: a full-avalanche bijection.
func mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

var (
	seedOnce sync.Once
	seedVal  uint16
)

// GlobalSeed returns the per-process 16-bit salt, generated once on first
// use. Engines configured with GenerateGlobalSeed XOR it into every hash
// for weak collision avoidance and predictability hardening. The seed is
// never zero, so an engine configured for salting actually salts.
func GlobalSeed() uint16 {
	seedOnce.Do(func() {
		var b [2]byte
		if _, err := rand.Read(b[:]); err == nil {
			seedVal = binary.LittleEndian.Uint16(b[:])
		} else {
			seedVal = uint16(time.Now().UnixNano())
		}
		if seedVal == 0 {
			seedVal = 1
		}
	})
	return seedVal
}
