package backend

import (
	"fmt"
	"strconv"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

// AsString returns v as a string when it is a string or a byte slice.
func AsString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

// AsSlice returns v as a []any when it is an array reply.
func AsSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

// AsInt64 converts an integer reply to int64.
// Integer-looking strings are accepted because some clients return counts as bulk strings.
func AsInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string, []byte:
		s, _ := AsString(n)
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errors.New(errors.ErrCodeDecodeFailed, fmt.Sprintf("expected integer reply, got %q", s), err)
		}
		return i, nil
	default:
		return 0, errors.Newf(errors.ErrCodeDecodeFailed, "expected integer reply, got %T", v)
	}
}
