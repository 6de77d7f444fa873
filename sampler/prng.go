package sampler

import (
	"math"
	"os"
	"time"
)

// RNG is a seedable 32-bit uniform source, a PCG32 XSH-RR generator.
//
// Two derived operations ride on top of the raw stream: Bounded draws a
// value uniformly in [0,n) without modulo bias, and ExpGap draws a
// geometric gap length for reservoir skip-sampling. The same seed on the
// same sequence of calls always produces the same output.
type RNG struct {
	state uint64
}

const (
	pcgMultiplier = 0x5851f42d4c957f2d
	pcgIncrement  = 0x1
)

// DeriveSeed produces the "time+pid" fallback seed used whenever a
// Config leaves Seed at zero. Exported so a caller that wants to
// display the seed actually in effect (e.g. --show-seed) can resolve
// it before constructing the Sampler, instead of it staying hidden
// inside the RNG.
func DeriveSeed() uint64 {
	return uint64(time.Now().UnixNano())<<20 ^ uint64(os.Getpid())
}

// NewRNG creates a PRNG from seed. A seed of zero is replaced by one
// derived from wall-clock time XORed with the process id, so repeated
// runs without an explicit seed do not repeat each other's output.
func NewRNG(seed uint64) *RNG {
	if seed == 0 {
		seed = DeriveSeed()
	}
	r := &RNG{}
	r.step()
	r.state += seed
	r.step()
	return r
}

func (r *RNG) step() uint32 {
	old := r.state
	r.state = old*pcgMultiplier + pcgIncrement
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Uint32 returns the next raw 32-bit uniform value.
func (r *RNG) Uint32() uint32 {
	return r.step()
}

// Bounded returns a value uniformly distributed in [0,n), n>0, using
// rejection sampling to avoid the bias a plain modulo would introduce.
func (r *RNG) Bounded(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	// values in [0, threshold) are discarded to debias the modulo below
	threshold := -n % n
	for {
		v := r.Uint32()
		if v >= threshold {
			return v % n
		}
	}
}

// ExpGap draws the next geometric skip distance for reservoir sampling:
// given n < d (the reservoir passes n-K for n and the count of items
// seen for d, so n/d is the per-item rejection probability), returns
// floor(log(1-U) / log(n/d)) for U uniform on [0,1).
func (r *RNG) ExpGap(n, d uint64) uint64 {
	u := float64(r.Uint32()) / 4294967296.0 // 2^32
	lambda := math.Log(float64(n) / float64(d))
	return uint64(math.Log1p(-u) / lambda)
}

// threshold converts a rate in [0,1] to the 32-bit acceptance threshold
// described in spec.md §4.3: a line is accepted iff Uint32() < T.
func threshold(rate float64) uint64 {
	return uint64(math.Floor(rate * 4294967296.0))
}
