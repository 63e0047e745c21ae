package main

import (
	"math/rand"
	"time"
)

type Randomizer struct {
	rnd *rand.Rand
}

// NewRandomizer initializes a new Randomizer instance with a seeded random number generator.
func NewRandomizer() *Randomizer {
	return NewSeededRandomizer(time.Now().UnixNano())
}

// NewSeededRandomizer returns a Randomizer whose draws are fully determined by seed.
func NewSeededRandomizer(seed int64) *Randomizer {
	src := rand.NewSource(seed)
	return &Randomizer{
		rnd: rand.New(src),
	}
}

// RandomIntn returns a non-negative pseudo-random int in [0,n)
func (r *Randomizer) RandomIntn(n int) int {
	return r.rnd.Intn(n)
}

// Sample returns n distinct integers drawn uniformly without replacement from
// [lo, hi), in draw order.
func (r *Randomizer) Sample(n, lo, hi int) ([]int, error) {
	size := hi - lo
	if size < 0 {
		size = 0
	}
	if n < 0 || n > size {
		return nil, &SamplingError{Requested: n, Available: size}
	}

	// Partial Fisher-Yates over the virtual slice [0, size); only displaced
	// positions are stored.
	picked := make([]int, n)
	displaced := make(map[int]int, n)
	for i := 0; i < n; i++ {
		j := i + r.RandomIntn(size-i)

		vj, ok := displaced[j]
		if !ok {
			vj = j
		}
		vi, ok := displaced[i]
		if !ok {
			vi = i
		}
		displaced[j] = vi
		picked[i] = lo + vj
	}
	return picked, nil
}
