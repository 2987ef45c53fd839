package tasks

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"
)

// SortRounds is the number of shuffle/sort rounds per IntensiveSort call.
const SortRounds = 10

// IntensiveSort runs SortRounds rounds over a fresh identity permutation of
// length size: shuffle, sort ascending, reverse, sort descending.
func IntensiveSort(size int) {
	_ = IntensiveSortContext(context.Background(), size)
}

// IntensiveSortContext is IntensiveSort with a cancellation check before
// each round. It returns ctx.Err() when canceled, so the overrun after a stop
// is bounded by one round.
func IntensiveSortContext(ctx context.Context, size int) error {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	for range SortRounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		data := make([]int, size)
		sortRound(data, rng)
	}
	return nil
}

// sortRound fills data with the identity permutation and applies one round.
// On return data holds size-1 .. 0 in descending order.
func sortRound(data []int, rng *rand.Rand) {
	for i := range data {
		data[i] = i
	}
	rng.Shuffle(len(data), func(i, j int) { data[i], data[j] = data[j], data[i] })
	slices.Sort(data)
	slices.Reverse(data)
	slices.SortFunc(data, func(a, b int) int { return cmp.Compare(b, a) })
}
