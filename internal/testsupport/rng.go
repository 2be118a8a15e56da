// Package testsupport holds deterministic-RNG and minimal map-building
// helpers shared across this module's package tests, grounded on the
// teacher's label-derived deterministic RNG
// (server/internal/world/random.go) generalized from a string root seed
// to GameConfig's int64 Seed.
package testsupport

import (
	"hash/fnv"
	"math/rand"
)

// DeterministicSeed derives a stable int64 seed from a root seed and a
// label, so independent test helpers (e.g. one per subsystem under test)
// get reproducible but distinct streams without sharing a single
// *rand.Rand.
func DeterministicSeed(rootSeed int64, label string) int64 {
	hasher := fnv.New64a()
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(rootSeed >> (8 * i))
	}
	hasher.Write(buf[:])
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewRNG builds a *rand.Rand seeded deterministically from (rootSeed, label).
func NewRNG(rootSeed int64, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeed(rootSeed, label)))
}
