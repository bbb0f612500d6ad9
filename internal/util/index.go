// Package util contains internal helpers (bucket-index arithmetic, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "fmt"

// bucketPrimes[i] is the smallest prime strictly greater than 1<<(i+1).
// It covers cacheBits 1..15; at 16 bits the hash is already exactly table
// width and the power-of-two mask degenerates to a truncating cast, so no
// prime entry is needed there.
var bucketPrimes = [15]uint32{
	3,     // > 1<<1
	5,     // > 1<<2
	11,    // > 1<<3
	17,    // > 1<<4
	37,    // > 1<<5
	67,    // > 1<<6
	131,   // > 1<<7
	257,   // > 1<<8
	521,   // > 1<<9
	1031,  // > 1<<10
	2053,  // > 1<<11
	4099,  // > 1<<12
	8209,  // > 1<<13
	16411, // > 1<<14
	32771, // > 1<<15
}

// NearestPrime returns the smallest prime strictly greater than 1<<bits.
// Only bits in [1,15] have table entries; anything else is an error the
// caller must surface at construction time, never at runtime.
func NearestPrime(bits int) (uint32, error) {
	if bits < 1 || bits > len(bucketPrimes) {
		return 0, fmt.Errorf("util: no nearest-prime entry for %d cache bits (supported: 1..%d)", bits, len(bucketPrimes))
	}
	return bucketPrimes[bits-1], nil
}

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && (x&(x-1)) == 0
}

// FastModMultiplier precomputes the fixed-point multiplier for FastMod.
// d must be non-zero and not a power of two larger than 1<<31.
func FastModMultiplier(d uint32) uint64 {
	return ^uint64(0)/uint64(d) + 1
}

// FastMod reduces h modulo d without a division, using the multiply-shift
// technique (Lemire). m must be FastModMultiplier(d). The wrapping 64-bit
// product is intentional; the result equals h % d for every 32-bit h when
// d fits in 31 bits.
func FastMod(h, d uint32, m uint64) uint32 {
	return uint32((((m * uint64(h)) >> 32) + 1) * uint64(d) >> 32)
}
