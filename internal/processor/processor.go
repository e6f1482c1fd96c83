package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/bookletgen/internal/archive"
	"codeberg.org/snonux/bookletgen/internal/assignment"
	"codeberg.org/snonux/bookletgen/internal/booklet"
	"codeberg.org/snonux/bookletgen/internal/cli"
	"codeberg.org/snonux/bookletgen/internal/itembank"
	"codeberg.org/snonux/bookletgen/internal/logger"
	"codeberg.org/snonux/bookletgen/internal/models"
	"codeberg.org/snonux/bookletgen/internal/translation"
)

// Processor runs the subcommands
type Processor struct {
	flags *cli.Flags
	out   io.Writer
	log   zerolog.Logger
	now   func() time.Time

	// newClient is replaced in tests to avoid real API calls
	newClient func(ctx context.Context, cfg translation.ProviderConfig) (translation.Client, error)
}

// NewProcessor creates a processor printing reports to stdout and logging
// to stderr
func NewProcessor(flags *cli.Flags) *Processor {
	return New(flags, os.Stdout, logger.Setup(flags.LogLevel, flags.LogFormat))
}

// New creates a processor with explicit output and logger
func New(flags *cli.Flags, out io.Writer, log zerolog.Logger) *Processor {
	return &Processor{
		flags:     flags,
		out:       out,
		log:       log,
		now:       time.Now,
		newClient: translation.NewClient,
	}
}

// Generate builds the booklets from the item bank
func (p *Processor) Generate(ctx context.Context) error {
	g := p.flags.Generate
	outDir := p.flags.OutputDir

	resolver := itembank.NewResolver(g.ImageRoot, g.ImagePrefix, p.log)
	items, err := itembank.Load(g.InputCSV, resolver)
	if err != nil {
		return err
	}
	p.checkExpected(items)

	if err := ctx.Err(); err != nil {
		return err
	}

	if g.Archive {
		archived, err := archive.ArchiveDir(outDir, p.now())
		switch {
		case errors.Is(err, archive.ErrNotExist):
			p.log.Debug().Str("dir", outDir).Msg("nothing to archive")
		case err != nil:
			return fmt.Errorf("failed to archive booklets: %w", err)
		default:
			fmt.Fprintf(p.out, "Previous booklets archived to: %s\n", archived)
		}
	}

	params := booklet.Params{
		ItemsPerBooklet: g.ItemsPerBooklet,
		Overlap:         g.Overlap,
		Seed:            g.Seed,
	}
	res := booklet.NewGenerator(params, p.log).Generate(items)

	if err := booklet.WriteAll(outDir, res); err != nil {
		return err
	}

	booklet.PrintReport(p.out, res.Stats)
	fmt.Fprintf(p.out, "\nDone! Booklets saved to: %s\n", outDir)
	return nil
}

// checkExpected warns when the item bank differs from the configured
// expectations. The generator copes with any size.
func (p *Processor) checkExpected(items []itembank.Item) {
	g := p.flags.Generate

	if g.TotalItems > 0 && len(items) != g.TotalItems {
		p.log.Warn().Int("expected", g.TotalItems).Int("found", len(items)).Msg("unexpected number of items")
	}

	if g.Categories > 0 {
		seen := make(map[string]bool)
		for _, it := range items {
			seen[it.Category] = true
		}
		if len(seen) != g.Categories {
			p.log.Warn().Int("expected", g.Categories).Int("found", len(seen)).Msg("unexpected number of categories")
		}
	}
}

// Translate adds translations to every booklet in the output directory
func (p *Processor) Translate(ctx context.Context) error {
	tf := p.flags.Translate

	opts := translation.DefaultOptions()
	opts.Language = tf.Language
	opts.Delay = tf.Delay
	opts.Retries = tf.Retries

	var translator *translation.Translator
	if !tf.DryRun {
		// fails on a missing key before any file is touched
		client, err := p.newClient(ctx, translation.ProviderConfig{
			Provider: tf.Provider,
			APIKey:   cli.GetAPIKey(tf.Provider),
			Model:    tf.Model,
			BaseURL:  tf.BaseURL,
		})
		if err != nil {
			return err
		}
		translator = translation.NewTranslator(client, opts, p.log)
	}

	if _, err := os.Stat(p.flags.OutputDir); err != nil {
		return fmt.Errorf("booklet directory not found: %w", err)
	}

	aug := translation.NewAugmenter(translator, tf.Field, tf.DryRun, p.out, p.log)
	sum, err := aug.ProcessDir(ctx, p.flags.OutputDir)
	translation.PrintSummary(p.out, sum, tf.DryRun)
	return err
}

// Assign hands out booklets, or prints the assignment counts with --report
func (p *Processor) Assign(ctx context.Context) error {
	a := p.flags.Assign

	dbPath := a.Database
	if dbPath == "" {
		dbPath = filepath.Join(p.flags.OutputDir, assignment.DefaultDBFile)
	}

	booklets := a.Booklets
	if booklets == 0 {
		stats, err := booklet.ReadStats(p.flags.OutputDir)
		if err != nil && !a.Report {
			return fmt.Errorf("unknown number of booklets, pass --booklets or generate first: %w", err)
		}
		if stats != nil {
			booklets = stats.TotalBooklets
		}
	}

	store, err := assignment.Open(dbPath)
	if err != nil {
		if a.Report {
			return err
		}
		// a respondent still gets a booklet
		p.log.Warn().Err(err).Str("db", dbPath).Msg("assignment store unavailable, counts are not recorded")
	} else {
		defer store.Close()
	}

	if a.Report {
		counts, err := store.Counts(ctx)
		if err != nil {
			return err
		}
		assignment.PrintCounts(p.out, counts, booklets)
		return nil
	}

	var rec assignment.Recorder
	if store != nil {
		rec = store
	}
	assigner, err := assignment.NewAssigner(booklets, nil, rec, p.log)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(p.out)
	for i := 0; i < a.Count; i++ {
		if err := enc.Encode(assigner.Assign(ctx)); err != nil {
			return err
		}
	}
	return nil
}

// Responses stores the submissions of every input file. Invalid
// submissions are skipped with a warning; an unreadable file aborts.
func (p *Processor) Responses(ctx context.Context) error {
	r := p.flags.Responses

	dbPath := r.Database
	if dbPath == "" {
		dbPath = filepath.Join(p.flags.OutputDir, assignment.DefaultDBFile)
	}
	store, err := assignment.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var stored, answers, skipped int
	for _, path := range r.Files {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		responses, errs, err := assignment.ParseResponses(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		for i, resp := range responses {
			if err := ctx.Err(); err != nil {
				return err
			}
			if errs[i] != nil {
				p.log.Warn().Err(errs[i]).Str("file", path).Int("index", i).Msg("skipping submission")
				skipped++
				continue
			}
			if err := store.SaveResponse(ctx, resp); err != nil {
				return fmt.Errorf("%s: submission of %s: %w", path, resp.UserID, err)
			}
			stored++
			answers += len(resp.Answers)
		}
	}

	p.log.Info().Str("db", dbPath).Int("submissions", stored).Int("answers", answers).Int("skipped", skipped).Msg("responses stored")
	fmt.Fprintf(p.out, "Stored %d submissions (%d answers), skipped %d\n", stored, answers, skipped)
	return nil
}

// Models lists the chat models of the configured provider
func (p *Processor) Models(ctx context.Context) error {
	m := p.flags.Models

	apiKey := cli.GetAPIKey(m.Provider)
	if apiKey == "" {
		return fmt.Errorf("%w: set %s", translation.ErrMissingAPIKey, translation.APIKeyEnv(m.Provider))
	}

	baseURL := m.BaseURL
	if baseURL == "" && m.Provider == translation.ProviderDeepSeek {
		baseURL = translation.DeepSeekBaseURL
	}

	return models.NewLister(apiKey, baseURL, p.out).ListAvailableModels(ctx, m.Provider)
}
