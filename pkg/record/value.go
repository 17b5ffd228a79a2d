package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/schema"
)

// Kind identifies the type held by a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a tagged attribute value. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
	list []Value
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Int returns an integer Value.
func Int(n int64) Value { return Value{kind: KindInt, i: n} }

// Float returns a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Str returns a string Value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List returns a list Value.
func List(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), items...)}
}

// ValueOf converts a Go value, including decoded JSON, into a Value.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return Str(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint32:
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Null(), errors.New(errors.ErrCodeInvalidInput, "invalid number "+x.String(), err)
		}
		return Float(f), nil
	case []string:
		items := make([]Value, len(x))
		for i, s := range x {
			items[i] = Str(s)
		}
		return Value{kind: KindList, list: items}, nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			item, err := ValueOf(e)
			if err != nil {
				return Null(), err
			}
			items[i] = item
		}
		return Value{kind: KindList, list: items}, nil
	default:
		return Null(), errors.Newf(errors.ErrCodeInvalidInput, "unsupported value type %T", v)
	}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns v as an integer. Floats with no fraction convert.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == float64(int64(v.f)) {
			return int64(v.f), true
		}
	}
	return 0, false
}

// Float returns v as a float. Integers convert.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// Bool returns the boolean held by v.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// List returns a copy of the items held by v.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]Value(nil), v.list...), true
}

// String formats scalars as query literals. Null formats as "" and lists
// as their items joined with commas.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// Interface returns v as a plain Go value: nil, int64, float64, string, bool or []any.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same kind and value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind != KindList {
		return v.i == o.i && v.f == o.f && v.s == o.s && v.b == o.b
	}
	if len(v.list) != len(o.list) {
		return false
	}
	for i := range v.list {
		if !v.list[i].Equal(o.list[i]) {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler. Integral numbers decode as int.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Coerce converts v to fit a field of type t. Null always fits. Strings
// parse into numbers for NUMERIC and into booleans for BOOLEAN fields.
func Coerce(t schema.FieldType, v Value) (Value, error) {
	if v.kind == KindNull {
		return v, nil
	}
	switch t {
	case schema.Numeric:
		switch v.kind {
		case KindInt, KindFloat:
			return v, nil
		case KindString:
			if n, err := strconv.ParseInt(v.s, 10, 64); err == nil {
				return Int(n), nil
			}
			if f, err := strconv.ParseFloat(v.s, 64); err == nil {
				return Float(f), nil
			}
		}
	case schema.Boolean:
		switch v.kind {
		case KindBool:
			return v, nil
		case KindString:
			if b, err := strconv.ParseBool(v.s); err == nil {
				return Bool(b), nil
			}
		}
	case schema.Tag, schema.Text, schema.String:
		return v, nil
	}
	return Null(), errors.Newf(errors.ErrCodeInvalidInput, "%s value %s does not fit a %s field", v.kind, v, t)
}

// GoString renders v for debugging.
func (v Value) GoString() string {
	return fmt.Sprintf("record.Value{%s:%s}", v.kind, v.String())
}
