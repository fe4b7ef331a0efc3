package values

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes vs as an object with keys in sorted order.
func (vs Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range vs.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalValue(vs[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of scalars. Integers stay integers.
func (vs *Values) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*vs = nil
		return nil
	}
	out, err := FromMap(raw)
	if err != nil {
		return err
	}
	*vs = out
	return nil
}

// MarshalValue encodes a single Value as JSON.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float64(val))
	case Bool:
		return json.Marshal(bool(val))
	default:
		return nil, fmt.Errorf("unknown value type %T", v)
	}
}

// ParseJSON decodes a JSON object into Values.
func ParseJSON(data []byte) (Values, error) {
	var vs Values
	if err := json.Unmarshal(data, &vs); err != nil {
		return nil, err
	}
	if vs == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return vs, nil
}
