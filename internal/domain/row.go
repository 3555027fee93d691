package domain

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Row is a loosely typed record as returned by the event-log API. It keeps
// the server's key order, which drives column order and CSV headers.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow builds a row from alternating key/value pairs.
func NewRow(pairs ...any) Row {
	var r Row
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		r.Set(key, pairs[i+1])
	}
	return r
}

func (r Row) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

func (r Row) Len() int {
	return len(r.keys)
}

func (r Row) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

func (r Row) Get(key string) (any, bool) {
	value, ok := r.values[key]
	return value, ok
}

// Set stores value under key, appending the key when it is new.
func (r *Row) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r Row) Clone() Row {
	clone := Row{keys: r.Keys(), values: make(map[string]any, len(r.values))}
	for key, value := range r.values {
		clone.values[key] = value
	}
	return clone
}

// Text renders the value under key as plain text. Missing keys and nulls
// render empty.
func (r Row) Text(key string) string {
	value, ok := r.values[key]
	if !ok {
		return ""
	}
	return ValueText(value)
}

// Bool reports the value under key as a boolean. Strings "true"/"True" count.
func (r Row) Bool(key string) bool {
	switch v := r.values[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

func ValueText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func (r *Row) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "decode row")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Newf("decode row: expected object, got %v", tok)
	}

	r.keys = nil
	r.values = make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "decode row key")
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Newf("decode row: unexpected key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return errors.Wrapf(err, "decode row field %q", key)
		}
		r.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, "decode row")
	}
	return nil
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		encodedValue, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, errors.Wrapf(err, "encode row field %q", key)
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
