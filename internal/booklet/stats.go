package booklet

import (
	"slices"
	"strconv"
)

// Stats is the aggregate report written next to the booklets
type Stats struct {
	TotalBooklets        int                       `json:"total_booklets"`
	TotalItems           int                       `json:"total_items"`
	AvgItemsPerBooklet   float64                   `json:"avg_items_per_booklet"`
	CategoryDistribution map[string]map[string]int `json:"category_distribution"`
	CategorySummary      []CategorySummary         `json:"category_summary"`
	LinkingItemsCount    int                       `json:"linking_items_count"`
	DroppedItems         int                       `json:"dropped_items"`
	ItemsPerCategory     int                       `json:"items_per_category"`
	GenerationParams     GenerationParams          `json:"generation_params"`
}

// CategorySummary describes how one category spreads across booklets
type CategorySummary struct {
	Category string  `json:"category"`
	Mean     float64 `json:"mean"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
}

// GenerationParams records the parameters a run used
type GenerationParams struct {
	K            int   `json:"K"`
	OverlapItems int   `json:"OVERLAP_ITEMS"`
	Seed         int64 `json:"SEED"`
}

// ComputeStats summarises booklets. categories fixes the order of the
// per-category summary; counts include linking items.
func ComputeStats(booklets []Booklet, categories []string, dropped int, p Params) Stats {
	stats := Stats{
		TotalBooklets:        len(booklets),
		CategoryDistribution: make(map[string]map[string]int, len(booklets)),
		DroppedItems:         dropped,
		GenerationParams: GenerationParams{
			K:            p.ItemsPerBooklet,
			OverlapItems: p.Overlap,
			Seed:         p.Seed,
		},
	}
	if len(categories) > 0 {
		stats.ItemsPerCategory = p.ItemsPerBooklet / len(categories)
	}

	for _, b := range booklets {
		dist := make(map[string]int)
		for _, it := range b.Items {
			dist[it.Category]++
			if it.IsLinking {
				stats.LinkingItemsCount++
			}
		}
		stats.CategoryDistribution[strconv.Itoa(b.ID)] = dist
		stats.TotalItems += len(b.Items)
	}
	if len(booklets) > 0 {
		stats.AvgItemsPerBooklet = float64(stats.TotalItems) / float64(len(booklets))
	}

	stats.CategorySummary = make([]CategorySummary, 0, len(categories))
	for _, cat := range categories {
		counts := make([]int, len(booklets))
		sum := 0
		for i, b := range booklets {
			counts[i] = stats.CategoryDistribution[strconv.Itoa(b.ID)][cat]
			sum += counts[i]
		}

		summary := CategorySummary{Category: cat}
		if len(counts) > 0 {
			summary.Mean = float64(sum) / float64(len(counts))
			summary.Min = slices.Min(counts)
			summary.Max = slices.Max(counts)
		}
		stats.CategorySummary = append(stats.CategorySummary, summary)
	}

	return stats
}
