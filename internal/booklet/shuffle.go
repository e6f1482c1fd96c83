package booklet

// Shuffle permutes every booklet with a generator seeded by
// seed + booklet id and renumbers positions 1..n in the new order.
// This is the final, externally visible item order.
func Shuffle(booklets []Booklet, seed int64) {
	for i := range booklets {
		b := &booklets[i]
		rng := newRand(seed + int64(b.ID))
		rng.Shuffle(len(b.Items), func(x, y int) {
			b.Items[x], b.Items[y] = b.Items[y], b.Items[x]
		})
		for pos := range b.Items {
			b.Items[pos].Position = pos + 1
		}
	}
}
