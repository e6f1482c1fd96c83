package itembank

import "encoding/json"

// UnknownCategory labels rows whose category cell is blank
const UnknownCategory = "Unknown"

// Field is a pass-through column carried verbatim into the booklets.
// Value holds the JSON encoding of the cell.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Item is one row of the item bank
type Item struct {
	ID         string
	Category   string
	Difficulty *float64 // nil when the cell is empty or not numeric
	Question   string
	Image      *string // data URI, nil when absent or unreadable
	Extra      []Field // remaining columns in header order
}

// Clone returns a deep copy that shares no memory with it
func (it Item) Clone() Item {
	out := it
	if it.Difficulty != nil {
		d := *it.Difficulty
		out.Difficulty = &d
	}
	if it.Image != nil {
		img := *it.Image
		out.Image = &img
	}
	if it.Extra != nil {
		out.Extra = make([]Field, len(it.Extra))
		for i, f := range it.Extra {
			out.Extra[i] = Field{Key: f.Key, Value: append(json.RawMessage(nil), f.Value...)}
		}
	}
	return out
}

// Field returns the raw value of a pass-through column
func (it *Item) Field(key string) (json.RawMessage, bool) {
	for _, f := range it.Extra {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// SetField replaces or appends a pass-through column
func (it *Item) SetField(key string, value json.RawMessage) {
	for i := range it.Extra {
		if it.Extra[i].Key == key {
			it.Extra[i].Value = value
			return
		}
	}
	it.Extra = append(it.Extra, Field{Key: key, Value: value})
}

// StringField returns a pass-through column decoded as a string.
// Missing, null and non-string values yield "".
func (it *Item) StringField(key string) string {
	raw, ok := it.Field(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
