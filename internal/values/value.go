package values

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Value is a sealed interface over the column value kinds.
type Value interface {
	value()
}

// Null is an explicit SQL NULL.
type Null struct{}

func (Null) value() {}

// String is a TEXT value.
type String string

func (String) value() {}

// Int is an INTEGER value.
type Int int64

func (Int) value() {}

// Float is a REAL value.
type Float float64

func (Float) value() {}

// Bool is stored by SQLite as INTEGER 0 or 1.
type Bool bool

func (Bool) value() {}

// FromAny converts a decoded JSON/YAML scalar into a Value.
// Integral float64 values (as produced by encoding/json) become Int.
// Maps and slices are rejected: columns only hold scalars.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", val)
		}
		return Int(val), nil
	case float32:
		return fromFloat(float64(val)), nil
	case float64:
		return fromFloat(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return Float(f), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func fromFloat(f float64) Value {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f))
	}
	return Float(f)
}

// FromSQL converts a value scanned from the database driver.
func FromSQL(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case int64:
		return Int(val), nil
	case float64:
		return Float(val), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case []byte:
		return String(val), nil
	case time.Time:
		return String(val.Format(time.RFC3339Nano)), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", v)
	}
}

// ToSQL converts a Value into a database/sql argument.
func ToSQL(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// Native returns v as a plain Go value (nil, string, int64, float64, bool).
func Native(v Value) any {
	return ToSQL(v)
}

// Text renders v the way a TEXT column would hold it.
// ok is false for Null.
func Text(v Value) (s string, ok bool) {
	switch val := v.(type) {
	case String:
		return string(val), true
	case Int:
		return strconv.FormatInt(int64(val), 10), true
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64), true
	case Bool:
		return strconv.FormatBool(bool(val)), true
	default:
		return "", false
	}
}

// Integer interprets v as an integer. Strings are parsed as base-10
// integers after trimming nothing; integral floats are accepted.
// ok is false for Null, fractional floats and non-numeric strings.
func Integer(v Value) (n int64, ok bool) {
	switch val := v.(type) {
	case Int:
		return int64(val), true
	case Float:
		f := float64(val)
		if f != math.Trunc(f) || math.Abs(f) >= 1<<63 {
			return 0, false
		}
		return int64(f), true
	case Bool:
		if val {
			return 1, true
		}
		return 0, true
	case String:
		i, err := strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
