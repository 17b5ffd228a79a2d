package query

import (
	"strings"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

// comparisons are tried longest first so ">=" is not read as ">".
var comparisons = []Operator{Gte, Lte, Eq, Gt, Lt}

// ParseCondition parses "field<op>value" with op one of >= <= = > <.
// The value is kept as a string; the compiler escapes it.
func ParseCondition(s string) (Predicate, error) {
	best, bestAt := Operator(""), -1
	for _, op := range comparisons {
		i := strings.Index(s, string(op))
		if i < 0 {
			continue
		}
		if bestAt < 0 || i < bestAt || (i == bestAt && len(op) > len(best)) {
			best, bestAt = op, i
		}
	}
	if bestAt <= 0 {
		return Predicate{}, errors.Newf(errors.ErrCodeInvalidQuery, "condition %q must look like field=value, field>value or field<=value", s)
	}

	field := strings.TrimSpace(s[:bestAt])
	value := strings.TrimSpace(s[bestAt+len(best):])
	return Predicate{Field: field, Operator: best, Value: value}, nil
}

// ParseIn parses "field=a,b,c" into an in predicate.
func ParseIn(s string) (Predicate, error) {
	field, list, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return Predicate{}, errors.Newf(errors.ErrCodeInvalidQuery, "in condition %q must look like field=a,b,c", s)
	}

	var values []any
	for _, v := range strings.Split(list, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return Predicate{Field: field, Operator: In, Value: values}, nil
}

// ParseSort parses "field" or "field:asc|desc". A bare field sorts descending.
func ParseSort(s string) (SortSpec, error) {
	field, dir, _ := strings.Cut(s, ":")
	field = strings.TrimSpace(field)
	if field == "" {
		return SortSpec{}, errors.Newf(errors.ErrCodeInvalidSort, "sort %q must look like field:asc or field:desc", s)
	}
	d, err := ParseDirection(dir)
	if err != nil {
		return SortSpec{}, err
	}
	return SortSpec{Field: field, Direction: d}, nil
}

// Apply adds p to q.
func (q *Query) Apply(p Predicate) *Query {
	return q.Where(p.Field, p.Operator, p.Value)
}
