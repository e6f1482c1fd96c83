package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/bookletgen/internal"
	"codeberg.org/snonux/bookletgen/internal/booklet"
	"codeberg.org/snonux/bookletgen/internal/itembank"
)

// Errors that make a booklet file unusable. Such files are skipped.
var (
	ErrUndecodable = errors.New("could not decode JSON")
	ErrNotList     = errors.New("expected a list of questions")
)

// DefaultField is the field receiving the translated question
const DefaultField = "question_zh"

// Summary counts what a run did
type Summary struct {
	Files        int
	FilesUpdated int
	FilesSkipped int
	Translated   int
	Cached       int
	Failed       int
	Pending      int // items that still need a translation (dry run)
}

// Augmenter adds translated questions to booklet files
type Augmenter struct {
	translator *Translator
	field      string
	dryRun     bool
	cache      *Cache
	out        io.Writer
	log        zerolog.Logger
}

// NewAugmenter creates an augmenter writing translations into field.
// With dryRun nothing is translated or written. translator may be nil
// for dry runs.
func NewAugmenter(translator *Translator, field string, dryRun bool, out io.Writer, log zerolog.Logger) *Augmenter {
	if field == "" {
		field = DefaultField
	}
	return &Augmenter{
		translator: translator,
		field:      field,
		dryRun:     dryRun,
		cache:      NewCache(),
		out:        out,
		log:        log.With().Str("component", "augmenter").Logger(),
	}
}

// ProcessDir processes every booklet file in dir in name order. Files that
// cannot be used are skipped; only cancellation aborts the run.
func (a *Augmenter) ProcessDir(ctx context.Context, dir string) (Summary, error) {
	var sum Summary

	entries, err := os.ReadDir(dir)
	if err != nil {
		return sum, fmt.Errorf("failed to read booklet directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || e.Name() == booklet.StatsFile {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		fmt.Fprintf(a.out, "Processing %s...\n", path)
		sum.Files++

		err := a.ProcessFile(ctx, path, &sum)
		switch {
		case errors.Is(err, ErrUndecodable), errors.Is(err, ErrNotList):
			a.log.Warn().Err(err).Str("file", name).Msg("skipping booklet file")
			sum.FilesSkipped++
		case err != nil:
			return sum, err
		}
	}

	return sum, nil
}

// ProcessFile translates the missing fields of one booklet file and
// rewrites it when anything changed. Counts are added to sum.
func (a *Augmenter) ProcessFile(ctx context.Context, path string, sum *Summary) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return ErrUndecodable
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil || elems == nil {
		return fmt.Errorf("%w, found %s", ErrNotList, jsonKind(data))
	}

	updated := false
	var runErr error
	for i, raw := range elems {
		if jsonKind(raw) != "object" {
			continue
		}

		obj, err := decodeObject(raw)
		if err != nil {
			a.log.Warn().Err(err).Str("file", filepath.Base(path)).Int("index", i).Msg("skipping malformed question")
			continue
		}

		question := obj.str(itembank.ColumnQuestion)
		if question == "" {
			continue
		}
		if existing := obj.str(a.field); existing != "" {
			a.cache.Add(question, existing)
			continue
		}

		if a.dryRun {
			sum.Pending++
			continue
		}

		translation, fromCache, err := a.translate(ctx, question)
		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			a.log.Warn().Err(err).Str("question", internal.Preview(question, 50)).Msg("translation failed, leaving question untranslated")
			sum.Failed++
			continue
		}

		value, err := internal.MarshalJSON(translation)
		if err != nil {
			return err
		}
		if elems[i], err = obj.set(a.field, value).MarshalJSON(); err != nil {
			return err
		}

		updated = true
		if fromCache {
			sum.Cached++
		} else {
			sum.Translated++
		}
	}

	// keep finished work even when the run was interrupted
	if updated {
		out, err := internal.EncodeIndented(elems)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		if err := internal.WriteFileAtomic(path, out); err != nil {
			return err
		}
		sum.FilesUpdated++
		fmt.Fprintf(a.out, "  - Saved updates for %s\n", filepath.Base(path))
	} else {
		fmt.Fprintf(a.out, "  - No new questions to translate in %s\n", filepath.Base(path))
	}

	return runErr
}

func (a *Augmenter) translate(ctx context.Context, question string) (string, bool, error) {
	if cached, ok := a.cache.Get(question); ok {
		return cached, true, nil
	}

	fmt.Fprintf(a.out, "  - Translating: %s\n", internal.Preview(question, 50))
	translation, err := a.translator.Translate(ctx, question)
	if err != nil {
		return "", false, err
	}

	a.cache.Add(question, translation)
	return translation, false, nil
}

// PrintSummary writes the run totals to w
func PrintSummary(w io.Writer, sum Summary, dryRun bool) {
	fmt.Fprintf(w, "\n=== Translation Summary ===\n")
	fmt.Fprintf(w, "Booklet files: %d\n", sum.Files)
	fmt.Fprintf(w, "Updated: %d\n", sum.FilesUpdated)
	if sum.FilesSkipped > 0 {
		fmt.Fprintf(w, "Skipped (unreadable): %d\n", sum.FilesSkipped)
	}
	if dryRun {
		fmt.Fprintf(w, "Questions needing translation: %d\n", sum.Pending)
	} else {
		fmt.Fprintf(w, "Translated: %d\n", sum.Translated)
		fmt.Fprintf(w, "Reused from earlier booklets: %d\n", sum.Cached)
	}
	if sum.Failed > 0 {
		fmt.Fprintf(w, "Failed (rerun to retry): %d\n", sum.Failed)
	}
	fmt.Fprintf(w, "===========================\n")
}

// jsonKind names the top-level JSON type of data
func jsonKind(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "list"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	}
	return "number"
}
