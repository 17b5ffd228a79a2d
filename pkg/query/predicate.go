package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/schema"
)

// Operator is a predicate comparison.
type Operator string

// Supported operators.
const (
	Eq  Operator = "="
	In  Operator = "in"
	Gt  Operator = ">"
	Lt  Operator = "<"
	Gte Operator = ">="
	Lte Operator = "<="
)

// ParseOperator parses one of = in > < >= <=.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.ToLower(strings.TrimSpace(s))); op {
	case Eq, In, Gt, Lt, Gte, Lte:
		return op, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidQuery, "unknown operator %q", s)
	}
}

// Predicate is one field filter.
type Predicate struct {
	Field    string
	Operator Operator
	Value    any
}

// Compile renders one predicate for field. An empty fragment with a nil
// error means the predicate does not apply and must be dropped.
func Compile(field schema.Field, op Operator, value any) (string, error) {
	if op == In {
		values := literals(value)
		if len(values) == 0 {
			return "", nil
		}
		return compileIn(field, values), nil
	}

	switch op {
	case Eq, Gt, Lt, Gte, Lte:
	default:
		return "", errors.Newf(errors.ErrCodeInvalidQuery, "unknown operator %q", op).
			WithDetail("field", field.Name)
	}

	if isList(value) {
		return "", errors.Newf(errors.ErrCodeInvalidQuery, "operator %s on %s needs a single value", op, field.Name).
			WithSuggestion("Use the in operator for lists")
	}
	lit, ok := literal(value)
	if !ok {
		return "", nil
	}
	v := Escape(lit)

	switch op {
	case Eq:
		switch field.Type {
		case schema.Tag:
			return fmt.Sprintf("@%s:{%s}", field.Name, v), nil
		case schema.Numeric:
			return numericEq(field.Name, v), nil
		case schema.Text:
			return fmt.Sprintf("@%s: %s", field.Name, v), nil
		}
	case Gt, Gte:
		if field.Type == schema.Numeric {
			return fmt.Sprintf("@%s:[(%s +inf]", field.Name, v), nil
		}
	case Lt, Lte:
		if field.Type == schema.Numeric {
			return fmt.Sprintf("@%s:[-inf %s]", field.Name, v), nil
		}
	}
	return "", nil
}

func compileIn(field schema.Field, values []string) string {
	switch field.Type {
	case schema.Tag:
		escaped := make([]string, len(values))
		for i, v := range values {
			escaped[i] = Escape(v)
		}
		return fmt.Sprintf("@%s: %s", field.Name, strings.Join(escaped, " | "))
	case schema.Numeric:
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = numericEq(field.Name, Escape(v))
		}
		return "(" + strings.Join(parts, " | ") + ")"
	default:
		return ""
	}
}

func numericEq(name, v string) string {
	return fmt.Sprintf("@%s:[%s %s]", name, v, v)
}

// literal formats a scalar. It reports false for nil and the empty string.
func literal(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s = x
	case []byte:
		s = string(x)
	case bool:
		s = strconv.FormatBool(x)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case int32:
		s = strconv.FormatInt(int64(x), 10)
	case uint:
		s = strconv.FormatUint(uint64(x), 10)
	case uint64:
		s = strconv.FormatUint(x, 10)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "", false
		}
		s = x.String()
	default:
		if isList(x) {
			return "", false
		}
		s = fmt.Sprint(x)
	}
	return s, s != ""
}

// literals formats a list value element-wise, skipping nil and empty
// elements. A scalar is treated as a one-element list. Lists nested one
// level deep, as WhereIn(f, []string{...}) passes them, are flattened.
func literals(v any) []string {
	if v == nil {
		return nil
	}
	if !isList(v) {
		if s, ok := literal(v); ok {
			return []string{s}
		}
		return nil
	}
	return appendLiterals(nil, v, 1)
}

func appendLiterals(out []string, list any, depth int) []string {
	rv := reflect.ValueOf(list)
	for i := 0; i < rv.Len(); i++ {
		e := rv.Index(i).Interface()
		if isList(e) {
			if depth > 0 {
				out = appendLiterals(out, e, depth-1)
			}
			continue
		}
		if s, ok := literal(e); ok {
			out = append(out, s)
		}
	}
	return out
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.([]byte); ok {
		return false
	}
	if _, ok := v.(fmt.Stringer); ok {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
