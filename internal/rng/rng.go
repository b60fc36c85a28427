// Package rng is the engine's only source of randomness.
//
// Every draw comes from crypto/rand: outcomes must stay unpredictable to a
// client who knows bet timing, so time-based or client-influenced seeding is
// not allowed. A failing entropy source is fatal to the process; silently
// falling back to a weaker generator would undermine every game.
package rng

import (
	"crypto/rand"
	"encoding/binary"
)

// Float64 returns a uniform float64 in [0, 1) with 53 bits of precision.
func Float64() float64 {
	return float64(read64()>>11) / (1 << 53)
}

// IntN returns a uniform int in [0, n). It panics if n <= 0.
func IntN(n int) int {
	if n <= 0 {
		panic("rng: IntN called with n <= 0")
	}

	// Rejection sampling to avoid modulo bias.
	limit := ^uint64(0) - ^uint64(0)%uint64(n)
	for {
		v := read64()
		if v < limit {
			return int(v % uint64(n))
		}
	}
}

// PickN returns a uniform random subset of size n drawn from {1, ..., total}.
func PickN(n, total int) []int {
	if n < 0 || n > total {
		panic("rng: PickN called with n out of range")
	}

	positions := make([]int, total)
	for i := range positions {
		positions[i] = i + 1
	}

	Shuffle(positions)

	return positions[:n:n]
}

// Shuffle permutes s uniformly in place (Fisher-Yates).
func Shuffle(s []int) {
	for i := len(s) - 1; i > 0; i-- {
		j := IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func read64() uint64 {
	var b [8]byte

	_, err := rand.Read(b[:])
	if err != nil {
		panic("rng: entropy source unavailable: " + err.Error())
	}

	return binary.BigEndian.Uint64(b[:])
}
