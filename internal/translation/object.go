package translation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"codeberg.org/snonux/bookletgen/internal"
	"codeberg.org/snonux/bookletgen/internal/itembank"
)

// object is a JSON object kept as raw members in document order, so
// values the augmenter does not touch are written back byte for byte
type object []itembank.Field

func decodeObject(data []byte) (object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("not a JSON object")
	}

	obj := object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("member %q: %w", key, err)
		}
		obj = append(obj, itembank.Field{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

// str returns the member key as a string. Missing and non-string members
// yield "".
func (o object) str(key string) string {
	for _, f := range o {
		if f.Key == key {
			var s string
			if json.Unmarshal(f.Value, &s) != nil {
				return ""
			}
			return s
		}
	}
	return ""
}

// set replaces the first member named key or appends a new one
func (o object) set(key string, value json.RawMessage) object {
	for i := range o {
		if o[i].Key == key {
			o[i].Value = value
			return o
		}
	}
	return append(o, itembank.Field{Key: key, Value: value})
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := internal.MarshalJSON(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(f.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
