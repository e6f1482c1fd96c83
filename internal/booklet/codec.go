package booklet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"codeberg.org/snonux/bookletgen/internal"
	"codeberg.org/snonux/bookletgen/internal/itembank"
)

// JSON keys of the booklet metadata
const (
	keyBookletID       = itembank.KeyBookletID
	keyPosition        = itembank.KeyPosition
	keyIsLinking       = itembank.KeyIsLinking
	keyOriginalBooklet = itembank.KeyOriginalBooklet
)

// MarshalJSON writes the item as an object with a stable key order:
// core item fields, pass-through fields, then booklet metadata.
// original_booklet is present only on linking items.
func (it Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	n := 0
	put := func(key string, raw []byte) {
		if n > 0 {
			buf.WriteByte(',')
		}
		k, _ := internal.MarshalJSON(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(raw)
		n++
	}
	putValue := func(key string, v any) error {
		raw, err := internal.MarshalJSON(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		put(key, raw)
		return nil
	}

	put(itembank.ColumnID, idJSON(it.ID))
	if err := putValue(itembank.ColumnCategory, it.Category); err != nil {
		return nil, err
	}
	if err := putValue(itembank.ColumnDifficulty, it.Difficulty); err != nil {
		return nil, err
	}
	if err := putValue(itembank.ColumnQuestion, it.Question); err != nil {
		return nil, err
	}
	if err := putValue(itembank.ColumnImage, it.Image); err != nil {
		return nil, err
	}
	for _, f := range it.Extra {
		value := f.Value
		if len(value) == 0 {
			value = json.RawMessage("null")
		}
		put(f.Key, value)
	}
	put(keyBookletID, []byte(strconv.Itoa(it.BookletID)))
	put(keyPosition, []byte(strconv.Itoa(it.Position)))
	put(keyIsLinking, []byte(strconv.FormatBool(it.IsLinking)))
	if it.OriginalBooklet != nil {
		put(keyOriginalBooklet, []byte(strconv.Itoa(*it.OriginalBooklet)))
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an item written by MarshalJSON or edited by other
// tools. Unknown keys are kept as pass-through fields in document order.
func (it *Item) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("booklet item must be a JSON object")
	}

	var out Item
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if err := out.set(key, raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*it = out
	return nil
}

func (it *Item) set(key string, raw json.RawMessage) error {
	null := bytes.Equal(bytes.TrimSpace(raw), []byte("null"))

	switch key {
	case itembank.ColumnID:
		var s string
		if json.Unmarshal(raw, &s) == nil {
			it.ID = s
		} else if !null {
			it.ID = string(bytes.TrimSpace(raw))
		}
		return nil
	case itembank.ColumnCategory:
		if null {
			return nil
		}
		return json.Unmarshal(raw, &it.Category)
	case itembank.ColumnDifficulty:
		return json.Unmarshal(raw, &it.Difficulty)
	case itembank.ColumnQuestion:
		if null {
			return nil
		}
		return json.Unmarshal(raw, &it.Question)
	case itembank.ColumnImage:
		return json.Unmarshal(raw, &it.Image)
	case keyBookletID:
		return json.Unmarshal(raw, &it.BookletID)
	case keyPosition:
		return json.Unmarshal(raw, &it.Position)
	case keyIsLinking:
		if null {
			return nil
		}
		return json.Unmarshal(raw, &it.IsLinking)
	case keyOriginalBooklet:
		return json.Unmarshal(raw, &it.OriginalBooklet)
	}

	it.Extra = append(it.Extra, itembank.Field{Key: key, Value: append(json.RawMessage(nil), raw...)})
	return nil
}

// idJSON keeps integer ids numeric and quotes everything else
func idJSON(id string) []byte {
	if n, err := strconv.Atoi(id); err == nil && strconv.Itoa(n) == id {
		return []byte(id)
	}
	raw, _ := internal.MarshalJSON(id)
	return raw
}
