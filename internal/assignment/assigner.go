package assignment

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Assignment is one booklet handed out
type Assignment struct {
	ID         string    `json:"-"`
	BookletID  int       `json:"booklet_id"`
	AssignedAt time.Time `json:"-"`
}

// Recorder persists assignments
type Recorder interface {
	Record(ctx context.Context, id string, bid int, at time.Time) error
}

// Assigner draws booklet ids uniformly from [0, booklets)
type Assigner struct {
	booklets int
	rng      *rand.Rand
	store    Recorder
	now      func() time.Time
	log      zerolog.Logger
}

// NewAssigner creates an assigner. rng may be nil to use a randomly
// seeded generator; store may be nil to skip recording.
func NewAssigner(booklets int, rng *rand.Rand, store Recorder, log zerolog.Logger) (*Assigner, error) {
	if booklets <= 0 {
		return nil, fmt.Errorf("number of booklets must be positive, got %d", booklets)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Assigner{
		booklets: booklets,
		rng:      rng,
		store:    store,
		now:      time.Now,
		log:      log.With().Str("component", "assigner").Logger(),
	}, nil
}

// Assign picks a booklet. Failing to record it is logged, not returned,
// so a respondent always gets a booklet.
func (a *Assigner) Assign(ctx context.Context) Assignment {
	asg := Assignment{
		ID:         uuid.NewString(),
		BookletID:  a.rng.IntN(a.booklets),
		AssignedAt: a.now(),
	}

	if a.store != nil {
		if err := a.store.Record(ctx, asg.ID, asg.BookletID, asg.AssignedAt); err != nil {
			a.log.Warn().Err(err).Int("booklet_id", asg.BookletID).Msg("failed to record assignment")
		}
	}

	a.log.Debug().Str("id", asg.ID).Int("booklet_id", asg.BookletID).Msg("assigned booklet")
	return asg
}

// PrintCounts writes the per-booklet counters, including booklets that
// were never assigned
func PrintCounts(w io.Writer, counts []Count, booklets int) {
	byID := make(map[int]int, len(counts))
	total := 0
	for _, c := range counts {
		byID[c.BookletID] = c.Count
		total += c.Count
		if c.BookletID >= booklets {
			booklets = c.BookletID + 1
		}
	}

	fmt.Fprintf(w, "=== Assignment Report ===\n")
	for bid := 0; bid < booklets; bid++ {
		fmt.Fprintf(w, "Booklet %d: %d\n", bid, byID[bid])
	}
	fmt.Fprintf(w, "Total assignments: %d\n", total)
}
