package booklet

// BookletCount returns ceil(total / perBooklet), 0 for an empty bank
func BookletCount(total, perBooklet int) int {
	if total <= 0 || perBooklet <= 0 {
		return 0
	}
	return (total + perBooklet - 1) / perBooklet
}

// Assign deals each stratum round-robin across count booklets. The i-th
// item of a category goes to booklet i mod count unless that booklet
// already holds perBooklet items, in which case the item is dropped.
//
// When perBooklet is not a multiple of the category count, earlier
// categories fill booklets first and later ones may be short by one.
// The skew is reported by the generator, not corrected.
func Assign(strata []Stratum, count, perBooklet int) (booklets []Booklet, dropped int) {
	booklets = make([]Booklet, count)
	for i := range booklets {
		booklets[i].ID = i
	}
	if count == 0 {
		for _, s := range strata {
			dropped += len(s.Items)
		}
		return booklets, dropped
	}

	for _, s := range strata {
		for i, it := range s.Items {
			b := &booklets[i%count]
			if len(b.Items) >= perBooklet {
				dropped++
				continue
			}
			b.Items = append(b.Items, Item{
				Item:      it.Clone(),
				BookletID: b.ID,
				Position:  len(b.Items) + 1,
			})
		}
	}

	return booklets, dropped
}
