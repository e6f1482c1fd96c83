package booklet

import (
	"math/rand/v2"

	"codeberg.org/snonux/bookletgen/internal/itembank"
)

// Params configures a generation run
type Params struct {
	ItemsPerBooklet int   // K
	Overlap         int   // linking items per adjacent pair
	Seed            int64 // root seed for every permutation
}

// DefaultParams returns the parameters used for the survey
func DefaultParams() Params {
	return Params{
		ItemsPerBooklet: 30,
		Overlap:         3,
		Seed:            42,
	}
}

// Item is an item bank row placed in a booklet
type Item struct {
	itembank.Item

	BookletID       int
	Position        int  // 1-based
	IsLinking       bool // copy of a primary item of the previous booklet
	OriginalBooklet *int // set only when IsLinking
}

// Booklet is one examinee-facing subset of the item bank
type Booklet struct {
	ID    int
	Items []Item
}

// Primary returns the items assigned to b directly, in current order
func (b *Booklet) Primary() []Item {
	primary := make([]Item, 0, len(b.Items))
	for _, it := range b.Items {
		if !it.IsLinking {
			primary = append(primary, it)
		}
	}
	return primary
}

// LinkingCount returns the number of linking items in b
func (b *Booklet) LinkingCount() int {
	n := 0
	for _, it := range b.Items {
		if it.IsLinking {
			n++
		}
	}
	return n
}

// newRand returns the generator for one scope. Scopes that share a seed
// replay the same sequence.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}
