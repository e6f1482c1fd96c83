package itembank

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"codeberg.org/snonux/bookletgen/internal"
)

// Core column names. All other columns are passed through.
const (
	ColumnID         = "id"
	ColumnCategory   = "category"
	ColumnDifficulty = "difficulty"
	ColumnQuestion   = "question"
	ColumnImage      = "image"
)

// Keys the booklet writer adds to every item. Columns may not use them.
const (
	KeyBookletID       = "booklet_id"
	KeyPosition        = "position"
	KeyIsLinking       = "is_linking"
	KeyOriginalBooklet = "original_booklet"
)

// Header errors
var (
	ErrMissingColumn   = errors.New("missing required column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrReservedColumn  = errors.New("reserved column name")
)

// Load reads the item bank CSV at path. Image references are resolved
// through resolver; a nil resolver keeps images empty.
func Load(path string, resolver *Resolver) ([]Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open item bank: %w", err)
	}
	defer file.Close()

	items, err := Parse(file, resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return items, nil
}

// Parse reads item rows from r
func Parse(r io.Reader, resolver *Resolver) ([]Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	index := make(map[string]int)
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = strings.TrimSpace(h)
		key := strings.ToLower(columns[i])
		if isReservedColumn(key) {
			return nil, fmt.Errorf("%w: %s", ErrReservedColumn, columns[i])
		}
		// column names become JSON keys, compared without case
		if _, seen := index[key]; seen {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, columns[i])
		}
		index[key] = i
	}
	if _, ok := index[ColumnCategory]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnCategory)
	}

	var items []Item
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row+1, err)
		}

		item, err := buildItem(row, columns, index, record, resolver)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func buildItem(row int, columns []string, index map[string]int, record []string, resolver *Resolver) (Item, error) {
	cell := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return "", ok
		}
		return record[i], true
	}

	item := Item{ID: strconv.Itoa(row)}
	if id, ok := cell(ColumnID); ok && strings.TrimSpace(id) != "" {
		item.ID = strings.TrimSpace(id)
	}

	category, _ := cell(ColumnCategory)
	item.Category = strings.TrimSpace(category)
	if item.Category == "" {
		item.Category = UnknownCategory
	}

	if raw, ok := cell(ColumnDifficulty); ok {
		item.Difficulty = parseDifficulty(raw)
	}

	item.Question, _ = cell(ColumnQuestion)

	if ref, ok := cell(ColumnImage); ok && resolver != nil {
		item.Image = resolver.Resolve(ref)
	}

	for i, name := range columns {
		if isCoreColumn(name) {
			continue
		}
		value := ""
		if i < len(record) {
			value = record[i]
		}
		raw, err := cellJSON(value)
		if err != nil {
			return Item{}, fmt.Errorf("column %q: %w", name, err)
		}
		item.Extra = append(item.Extra, Field{Key: name, Value: raw})
	}

	return item, nil
}

func isCoreColumn(name string) bool {
	switch strings.ToLower(name) {
	case ColumnID, ColumnCategory, ColumnDifficulty, ColumnQuestion, ColumnImage:
		return true
	}
	return false
}

func isReservedColumn(key string) bool {
	switch key {
	case KeyBookletID, KeyPosition, KeyIsLinking, KeyOriginalBooklet:
		return true
	}
	return false
}

func parseDifficulty(raw string) *float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return nil
	}
	return &d
}

// cellJSON encodes a pass-through cell: empty cells become null, valid
// JSON numbers stay numbers and everything else is a string
func cellJSON(value string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return json.RawMessage("null"), nil
	}
	if isJSONNumber(trimmed) {
		return json.RawMessage(trimmed), nil
	}
	return internal.MarshalJSON(value)
}

func isJSONNumber(s string) bool {
	if s[0] != '-' && (s[0] < '0' || s[0] > '9') {
		return false
	}
	var n json.Number
	return json.Unmarshal([]byte(s), &n) == nil
}
