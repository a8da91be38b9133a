// Package randutil wraps math/rand/v2 with the draws the simulators need.
// A *rand.Rand is not safe for concurrent use; callers guard their own.
package randutil

import "math/rand/v2"

// New returns a PCG-backed generator. A zero seed draws one from the
// runtime's global source.
func New(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// IntBetween returns a uniform int in [lo, hi].
func IntBetween(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

// Uniform returns a uniform float in [lo, hi).
func Uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Chance reports true with probability p.
func Chance(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// Choice picks a uniform element of items. items must be non-empty.
func Choice[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

// Weighted picks labels[i] with probability weights[i]/sum(weights).
// Weights need not be normalised.
func Weighted[T any](r *rand.Rand, labels []T, weights []float64) T {
	var total float64
	for _, w := range weights {
		total += w
	}
	u := r.Float64() * total
	for i, w := range weights {
		if u < w {
			return labels[i]
		}
		u -= w
	}
	return labels[len(labels)-1]
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
