package booklet

import (
	"fmt"

	"codeberg.org/snonux/bookletgen/internal/itembank"
)

// bank builds perCategory items for every category with difficulties
// cycling through 0, 0.25, ... and ids unique across the bank
func bank(categories []string, perCategory int) []itembank.Item {
	var items []itembank.Item
	for _, cat := range categories {
		for i := 0; i < perCategory; i++ {
			d := float64(i%5) / 4
			items = append(items, itembank.Item{
				ID:         fmt.Sprintf("%s-%d", cat, i),
				Category:   cat,
				Difficulty: &d,
				Question:   fmt.Sprintf("%s question %d", cat, i),
			})
		}
	}
	return items
}

func primaryCount(b Booklet) int {
	return len(b.Items) - b.LinkingCount()
}
