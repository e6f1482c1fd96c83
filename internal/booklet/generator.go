package booklet

import (
	"github.com/rs/zerolog"

	"codeberg.org/snonux/bookletgen/internal/itembank"
)

// Result holds the generated booklets and their statistics
type Result struct {
	Booklets   []Booklet
	Categories []string
	Stats      Stats
}

// Generator runs the stratify, assign, link and shuffle stages
type Generator struct {
	params Params
	log    zerolog.Logger
}

// NewGenerator creates a generator for p
func NewGenerator(p Params, log zerolog.Logger) *Generator {
	return &Generator{
		params: p,
		log:    log.With().Str("component", "generator").Logger(),
	}
}

// Generate builds the booklets for items. Short or uneven item banks
// produce shorter booklets rather than an error.
func (g *Generator) Generate(items []itembank.Item) *Result {
	p := g.params

	strata := Stratify(items, p.Seed)
	categories := make([]string, len(strata))
	for i, s := range strata {
		categories[i] = s.Category
	}

	count := BookletCount(len(items), p.ItemsPerBooklet)
	g.log.Info().
		Int("items", len(items)).
		Int("categories", len(categories)).
		Int("booklets", count).
		Int("per_booklet", p.ItemsPerBooklet).
		Msg("assigning items to booklets")
	if len(categories) > 0 && p.ItemsPerBooklet%len(categories) != 0 {
		g.log.Info().
			Int("items_per_category", p.ItemsPerBooklet/len(categories)).
			Msg("items per booklet not divisible by categories, earlier categories get the remainder")
	}

	booklets, dropped := Assign(strata, count, p.ItemsPerBooklet)
	if dropped > 0 {
		g.log.Warn().Int("dropped", dropped).Msg("items dropped because their booklet was full")
	}

	Link(booklets, p.Overlap)
	Shuffle(booklets, p.Seed)

	return &Result{
		Booklets:   booklets,
		Categories: categories,
		Stats:      ComputeStats(booklets, categories, dropped, p),
	}
}
