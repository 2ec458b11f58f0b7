package corpus

import (
	"math/rand/v2"
)

// Sample picks a card index in [0, n) for draw i of a sweep. The result depends
// only on seed and i, so a sweep re-run with the same seed draws the same cards
// regardless of process state or draw order.
func Sample(seed int64, i, n int) int {
	if n <= 0 {
		return -1
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(i)))
	return r.IntN(n)
}

// SampleIndices returns the card indices for draws 0..count-1.
func SampleIndices(seed int64, count, n int) []int {
	if n <= 0 || count <= 0 {
		return nil
	}
	out := make([]int, count)
	for i := range out {
		out[i] = Sample(seed, i, n)
	}
	return out
}
