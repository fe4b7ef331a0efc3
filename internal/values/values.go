package values

import (
	"fmt"
	"slices"
	"unicode/utf16"
)

// Values maps column names to values. A nil Values is empty and readable;
// use New or a literal before calling Put.
type Values map[string]Value

// New returns an empty Values.
func New() Values {
	return make(Values)
}

// FromMap converts decoded JSON/YAML into Values.
func FromMap(m map[string]any) (Values, error) {
	out := make(Values, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// Put sets key to v. A nil v is stored as Null.
func (vs Values) Put(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	vs[key] = v
}

// PutString sets key to a TEXT value.
func (vs Values) PutString(key, s string) { vs[key] = String(s) }

// PutInt sets key to an INTEGER value.
func (vs Values) PutInt(key string, n int64) { vs[key] = Int(n) }

// PutNull sets key to NULL.
func (vs Values) PutNull(key string) { vs[key] = Null{} }

// Has reports whether key is present, including when it holds Null.
func (vs Values) Has(key string) bool {
	_, ok := vs[key]
	return ok
}

// Get returns the value for key.
func (vs Values) Get(key string) (Value, bool) {
	v, ok := vs[key]
	return v, ok
}

// IsNull reports whether key is present and holds Null.
func (vs Values) IsNull(key string) bool {
	v, ok := vs[key]
	if !ok {
		return false
	}
	_, null := v.(Null)
	return null || v == nil
}

// AsString returns the value for key rendered as text.
// ok is false when the key is absent or Null.
func (vs Values) AsString(key string) (string, bool) {
	v, present := vs[key]
	if !present || v == nil {
		return "", false
	}
	return Text(v)
}

// AsInt returns the value for key as an integer.
// ok is false when the key is absent, Null, or not an integer.
func (vs Values) AsInt(key string) (int64, bool) {
	v, present := vs[key]
	if !present || v == nil {
		return 0, false
	}
	return Integer(v)
}

// Len returns the number of keys.
func (vs Values) Len() int { return len(vs) }

// Clone returns a shallow copy. Values themselves are immutable.
func (vs Values) Clone() Values {
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// Native returns the map with plain Go values, for encoders that do not
// know about Value.
func (vs Values) Native() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = Native(v)
	}
	return out
}

// SortedKeys returns keys ordered by UTF-16 code units (RFC 8785).
func (vs Values) SortedKeys() []string {
	keys := make([]string, 0, len(vs))
	for k := range vs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// compareKeys orders strings by UTF-16 code unit, not by UTF-8 byte.
// The two orders differ for characters outside the Basic Multilingual Plane.
func compareKeys(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
