package util

import "testing"

func isPrime(x uint32) bool {
	if x < 2 {
		return false
	}
	for d := uint32(2); d*d <= x; d++ {
		if x%d == 0 {
			return false
		}
	}
	return true
}

// Every table entry must be the smallest prime strictly above 1<<bits.
func TestNearestPrime_TableIsMinimal(t *testing.T) {
	t.Parallel()

	for bits := 1; bits <= 15; bits++ {
		p, err := NearestPrime(bits)
		if err != nil {
			t.Fatalf("bits %d: %v", bits, err)
		}
		lo := uint32(1) << bits
		if p <= lo {
			t.Fatalf("bits %d: %d is not above %d", bits, p, lo)
		}
		if !isPrime(p) {
			t.Fatalf("bits %d: %d is not prime", bits, p)
		}
		for x := lo + 1; x < p; x++ {
			if isPrime(x) {
				t.Fatalf("bits %d: %d is a smaller prime than %d", bits, x, p)
			}
		}
	}
}

func TestNearestPrime_OutOfRange(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{-1, 0, 16, 40} {
		if _, err := NearestPrime(bits); err == nil {
			t.Fatalf("bits %d: want error", bits)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	t.Parallel()

	for i := 0; i < 64; i++ {
		if !IsPowerOfTwo(1 << i) {
			t.Fatalf("1<<%d must be a power of two", i)
		}
	}
	for _, x := range []uint64{0, 3, 6, 12, 1<<16 + 1, 1<<63 - 1} {
		if IsPowerOfTwo(x) {
			t.Fatalf("%d must not be a power of two", x)
		}
	}
}

// The multiply-shift reduction must agree with % for every 16-bit hash and
// every prime the engine can be sized with. The full sweep is under a
// million iterations, cheap enough to run exhaustively.
func TestFastMod_MatchesModuloExhaustive(t *testing.T) {
	t.Parallel()

	for bits := 1; bits <= 15; bits++ {
		d, err := NearestPrime(bits)
		if err != nil {
			t.Fatal(err)
		}
		m := FastModMultiplier(d)
		for h := uint32(0); h <= 0xFFFF; h++ {
			if got, want := FastMod(h, d, m), h%d; got != want {
				t.Fatalf("FastMod(%d, %d) = %d, want %d", h, d, got, want)
			}
		}
	}
}

// For power-of-two divisors the reduction and the mask are the same map.
func TestFastMod_AgreesWithMaskForPowersOfTwo(t *testing.T) {
	t.Parallel()

	for bits := 1; bits <= 16; bits++ {
		d := uint32(1) << bits
		m := FastModMultiplier(d)
		mask := d - 1
		for h := uint32(0); h <= 0xFFFF; h += 7 {
			if got, want := FastMod(h, d, m), h&mask; got != want {
				t.Fatalf("FastMod(%d, %d) = %d, want %d", h, d, got, want)
			}
		}
	}
}
