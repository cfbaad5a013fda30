// Package randutil derives reproducible random sources for the game engine.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Every table,
// simulation worker and test goes through here so a logged seed is enough
// to replay a game.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// TimeSeed returns a seed for callers that did not ask for determinism.
func TimeSeed() int64 {
	return time.Now().UnixNano()
}

// Derive returns a child seed for the n-th independent stream of a parent
// seed, so concurrent games never share an RNG.
func Derive(parent int64, n int) int64 {
	return int64(mix(uint64(parent) + uint64(n+1)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
