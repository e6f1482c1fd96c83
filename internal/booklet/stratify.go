package booklet

import (
	"cmp"
	"slices"

	"codeberg.org/snonux/bookletgen/internal/itembank"
)

// Stratum holds the items of one category in stratified order
type Stratum struct {
	Category string
	Items    []itembank.Item
}

// Stratify groups items by category in ascending label order. Within a
// category the items are sorted by difficulty (missing last, input order
// breaking ties) and then permuted with a generator seeded from seed. Every
// category replays the same seed.
func Stratify(items []itembank.Item, seed int64) []Stratum {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b itembank.Item) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return compareDifficulty(a.Difficulty, b.Difficulty)
	})

	var strata []Stratum
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].Category == sorted[start].Category {
			end++
		}

		group := sorted[start:end:end]
		rng := newRand(seed)
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		strata = append(strata, Stratum{Category: group[0].Category, Items: group})
		start = end
	}

	return strata
}

func compareDifficulty(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}
