package obj

import (
	"encoding/json"
	"math"
)

// Obj wraps an arbitrary decoded JSON value: a map, a list, a scalar, or
// nothing at all. The zero value is the empty Obj.
//
// Obj is a small value type; missing-field access constructs a new empty
// value instead of allocating or failing.
type Obj struct {
	value any
}

// New wraps a decoded JSON value. Maps and lists are wrapped lazily on
// access, so New is O(1) regardless of depth.
func New(v any) Obj {
	if o, ok := v.(Obj); ok {
		return o
	}
	return Obj{value: v}
}

// Empty returns the falsy sentinel Obj.
func Empty() Obj { return Obj{} }

// FromJSON decodes data and wraps the result.
func FromJSON(data []byte) (Obj, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Obj{}, err
	}
	return New(v), nil
}

// Field returns the named field of the underlying map, wrapped. If the
// underlying value is not a map, or the field is absent or null, Field
// returns an empty Obj. Chained access never fails:
//
//	o.Field("a").Field("b").Field("c") // safe at any depth
func (o Obj) Field(name string) Obj {
	m, ok := o.value.(map[string]any)
	if !ok {
		return Obj{}
	}
	return New(m[name])
}

// Set writes a field directly into the underlying map. Used to build
// outgoing payloads ergonomically; no validation is performed. Set is a
// no-op when the underlying value is not a map.
func (o Obj) Set(name string, v any) {
	if m, ok := o.value.(map[string]any); ok {
		m[name] = v
	}
}

// Has reports whether the underlying map contains the named field.
func (o Obj) Has(name string) bool {
	m, ok := o.value.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m[name]
	return ok
}

// Bool reports truthiness: nil, false, 0, "", and empty maps/lists are
// falsy; everything else is truthy. Missing fields are always falsy.
func (o Obj) Bool() bool {
	switch v := o.value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int64:
		return v != 0
	case int:
		return v != 0
	case map[string]any:
		return len(v) > 0
	case []any:
		return len(v) > 0
	default:
		return true
	}
}

// IsEmpty reports whether o holds no value at all (the missing-field
// sentinel). An empty map is not IsEmpty — it is present but falsy.
func (o Obj) IsEmpty() bool { return o.value == nil }

// Str returns the underlying string, or "" for any other type.
func (o Obj) Str() string {
	s, _ := o.value.(string)
	return s
}

// Int returns the underlying number as int64. JSON numbers decode as
// float64; values outside the safe integer range truncate.
func (o Obj) Int() int64 {
	switch v := o.value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}

// Float returns the underlying number as float64, or 0.
func (o Obj) Float() float64 {
	switch v := o.value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// Len returns the length of the underlying list or map, or 0.
func (o Obj) Len() int {
	switch v := o.value.(type) {
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	default:
		return 0
	}
}

// At returns the i-th element of the underlying list, wrapped. Out of
// range or non-list values yield an empty Obj.
func (o Obj) At(i int) Obj {
	l, ok := o.value.([]any)
	if !ok || i < 0 || i >= len(l) {
		return Obj{}
	}
	return New(l[i])
}

// List returns the underlying list with every element wrapped. Non-list
// values yield nil.
func (o Obj) List() []Obj {
	l, ok := o.value.([]any)
	if !ok {
		return nil
	}
	out := make([]Obj, len(l))
	for i, v := range l {
		out[i] = New(v)
	}
	return out
}

// Value returns the raw underlying value.
func (o Obj) Value() any { return o.value }

// Map returns the underlying map, or nil for any other type.
func (o Obj) Map() map[string]any {
	m, _ := o.value.(map[string]any)
	return m
}

// String renders the underlying value as compact JSON. The empty Obj
// prints as "{}".
func (o Obj) String() string {
	if o.value == nil {
		return "{}"
	}
	data, err := json.Marshal(o.value)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// MarshalJSON encodes the underlying value; the empty Obj encodes as {}.
func (o Obj) MarshalJSON() ([]byte, error) {
	if o.value == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o.value)
}
