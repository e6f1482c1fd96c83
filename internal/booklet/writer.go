package booklet

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"codeberg.org/snonux/bookletgen/internal"
)

// StatsFile is the name of the aggregate report in the output directory
const StatsFile = "stats.json"

// FileName returns the output file name of a booklet
func FileName(id int) string {
	return strconv.Itoa(id) + ".json"
}

// Encode serialises a booklet as an indented JSON array
func Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return internal.EncodeIndented(items)
}

// WriteAll writes one file per booklet plus the stats report to dir
func WriteAll(dir string, res *Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, b := range res.Booklets {
		data, err := Encode(b.Items)
		if err != nil {
			return fmt.Errorf("failed to encode booklet %d: %w", b.ID, err)
		}
		if err := internal.WriteFileAtomic(filepath.Join(dir, FileName(b.ID)), data); err != nil {
			return err
		}
	}

	data, err := internal.EncodeIndented(res.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	return internal.WriteFileAtomic(filepath.Join(dir, StatsFile), data)
}

// ReadStats loads the stats report from dir
func ReadStats(dir string) (*Stats, error) {
	data, err := os.ReadFile(filepath.Join(dir, StatsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return &stats, nil
}

// PrintReport writes the human-readable summary of stats to w
func PrintReport(w io.Writer, stats Stats) {
	fmt.Fprintf(w, "\n=== Booklet Report ===\n")
	fmt.Fprintf(w, "Booklets: %d\n", stats.TotalBooklets)
	fmt.Fprintf(w, "Total items: %d\n", stats.TotalItems)
	fmt.Fprintf(w, "Average items per booklet: %.1f\n", stats.AvgItemsPerBooklet)
	if stats.DroppedItems > 0 {
		fmt.Fprintf(w, "Dropped (booklet full): %d\n", stats.DroppedItems)
	}

	fmt.Fprintf(w, "\nCategory distribution per booklet:\n")
	for _, c := range stats.CategorySummary {
		fmt.Fprintf(w, "  %s: mean %.1f (range %d-%d)\n", c.Category, c.Mean, c.Min, c.Max)
	}

	fmt.Fprintf(w, "\nLinking items: %d\n", stats.LinkingItemsCount)
	fmt.Fprintf(w, "======================\n")
}
