// Package jsondoc is a thin document layer over encoding/json: object and
// array lookup plus typed extraction with default fallback.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"sort"
	"strconv"
)

// Object is a decoded JSON object.
type Object map[string]any

// ErrTrailingData is returned when a document has content after the first value.
var ErrTrailingData = errors.New("jsondoc: trailing data after document")

// Parse decodes a single JSON value. Numbers are kept as json.Number so
// integers survive round trips unchanged.
func Parse(text []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return normalize(v), nil
}

// normalize turns every nested map[string]any into Object.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		o := make(Object, len(x))
		for k, e := range x {
			o[k] = normalize(e)
		}
		return o
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	default:
		return v
	}
}

// AsObject reports whether v is a JSON object.
func AsObject(v any) (Object, bool) {
	switch x := v.(type) {
	case Object:
		return x, true
	case map[string]any:
		return Object(x), true
	}
	return nil, false
}

// AsArray reports whether v is a JSON array.
func AsArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

func (o Object) Get(key string) (any, bool) {
	v, ok := o[key]
	return v, ok
}

func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Object returns the nested object under key.
func (o Object) Object(key string) (Object, bool) {
	v, ok := o[key]
	if !ok {
		return nil, false
	}
	return AsObject(v)
}

// Array returns the nested array under key.
func (o Object) Array(key string) ([]any, bool) {
	v, ok := o[key]
	if !ok {
		return nil, false
	}
	return AsArray(v)
}

func (o Object) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// NonEmpty is String with an empty string also falling back to def.
func (o Object) NonEmpty(key, def string) string {
	if s := o.String(key, ""); s != "" {
		return s
	}
	return def
}

func (o Object) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Float returns the number under key, or def when absent or not a number.
func (o Object) Float(key string, def float64) float64 {
	if f, ok := toFloat(o[key]); ok {
		return f
	}
	return def
}

// Int returns the number under key rounded to the nearest integer, or def.
func (o Object) Int(key string, def int64) int64 {
	switch x := o[key].(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
	case int:
		return int64(x)
	case int64:
		return x
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	}
	if f, ok := toFloat(o[key]); ok {
		return int64(math.Round(f))
	}
	return def
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint32:
		return float64(x), true
	}
	return 0, false
}

func (o Object) Set(key string, v any) { o[key] = v }

// Append adds v to the array under key, creating it when absent.
func (o Object) Append(key string, v any) {
	a, _ := o[key].([]any)
	o[key] = append(a, v)
}

// Keys returns the keys in sorted order.
func (o Object) Keys() []string {
	ks := make([]string, 0, len(o))
	for k := range o {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// Single returns the key and value of a single-key object.
func (o Object) Single() (string, any, bool) {
	if len(o) != 1 {
		return "", nil, false
	}
	for k, v := range o {
		return k, v, true
	}
	return "", nil, false
}

// Marshal serializes the object with sorted keys.
func (o Object) Marshal() ([]byte, error) { return json.Marshal(map[string]any(o)) }

// Number wraps an integer the way Parse would have decoded it.
func Number(i int64) json.Number { return json.Number(strconv.FormatInt(i, 10)) }
