package dataset

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ValueKind discriminates the scalar types a record field can hold.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
)

// Value is a dynamically-typed scalar cell from an ingested row.
// CSV columns are heterogeneous, so every accessor tolerates any kind.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// String wraps a string cell. Empty strings normalize to null so that
// "missing" has a single representation throughout the engine.
func String(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null()
	}
	return Value{Kind: KindString, Str: s}
}

// Number wraps a numeric cell.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Parse converts a raw cell into the most specific Value kind.
func Parse(raw string) Value {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Null()
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Value{Kind: KindNumber, Num: f, Str: raw}
	}
	return Value{Kind: KindString, Str: raw}
}

// IsEmpty reports whether the value represents a missing cell.
func (v Value) IsEmpty() bool {
	return v.Kind == KindNull
}

// Text returns the string form of the value, "" for null.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		if v.Str != "" {
			return v.Str
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the numeric form of the value and whether one exists.
// String cells that happen to parse as numbers count.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindString:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// MarshalJSON emits the underlying scalar (string, number, or null) so
// exported snapshots stay readable by non-Go consumers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, number, or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*v = Null()
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*v = String(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Number(f)
	return nil
}
