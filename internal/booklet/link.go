package booklet

// Link appends to every booklet i >= 1 copies of the last overlap primary
// items of booklet i-1, tagged as linking items. Only primary items are
// copied, so anchors never travel further than one booklet. A previous
// booklet with fewer primary items contributes all of them.
func Link(booklets []Booklet, overlap int) {
	if overlap <= 0 {
		return
	}

	for i := 1; i < len(booklets); i++ {
		prev := booklets[i-1].Primary()
		tail := prev[max(0, len(prev)-overlap):]

		cur := &booklets[i]
		for _, src := range tail {
			origin := i - 1
			cur.Items = append(cur.Items, Item{
				Item:            src.Item.Clone(),
				BookletID:       cur.ID,
				Position:        len(cur.Items) + 1,
				IsLinking:       true,
				OriginalBooklet: &origin,
			})
		}
	}
}
