package query

import (
	"context"
	"strconv"
	"strings"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
	"github.com/Aman-CERP/ftmodel/pkg/schema"
)

// MaxSize is the LIMIT count used by All when no limit is set.
const MaxSize = 1000000

// Wildcard matches every document in the index.
const Wildcard = "*"

// Direction is a sort order.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection parses asc or desc case-insensitively. Empty means desc.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return Desc, nil
	case Asc, Desc:
		return d, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidSort, "sort direction must be asc or desc, got %q", s)
	}
}

// SortSpec is one SORTBY directive.
type SortSpec struct {
	Field     string
	Direction Direction
}

// Query accumulates predicates, a sort, limit and skip for one index.
type Query struct {
	index  string
	schema schema.Schema
	exec   backend.Executor

	predicates []Predicate
	sorts      []SortSpec
	limit      int
	skip       int
}

// New creates a Query over index whose fields are described by s.
func New(index string, s schema.Schema, exec backend.Executor) *Query {
	return &Query{index: index, schema: s, exec: exec}
}

// Index returns the index name the query runs against.
func (q *Query) Index() string {
	return q.index
}

// Where adds a predicate.
func (q *Query) Where(field string, op Operator, value any) *Query {
	q.predicates = append(q.predicates, Predicate{Field: field, Operator: op, Value: value})
	return q
}

// WhereIn adds an in predicate over values.
func (q *Query) WhereIn(field string, values ...any) *Query {
	return q.Where(field, In, values)
}

// SortBy adds a sort directive. Only one is allowed when the query runs.
func (q *Query) SortBy(field string, dir Direction) *Query {
	q.sorts = append(q.sorts, SortSpec{Field: field, Direction: dir})
	return q
}

// Limit caps the number of documents All returns. Zero means MaxSize.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Skip sets the offset of the first document returned by First and All.
func (q *Query) Skip(n int) *Query {
	q.skip = n
	return q
}

// Predicates returns a copy of the pending predicates.
func (q *Query) Predicates() []Predicate {
	return append([]Predicate(nil), q.predicates...)
}

// Reset clears predicates, sorts, limit and skip.
func (q *Query) Reset() {
	q.predicates = nil
	q.sorts = nil
	q.limit = 0
	q.skip = 0
}

// Build compiles the predicates into a query string. The result is empty
// when no predicate applies.
func (q *Query) Build() (string, error) {
	parts := make([]string, 0, len(q.predicates))
	for _, p := range q.predicates {
		f, ok := q.schema.Lookup(p.Field)
		if !ok {
			return "", fieldNotFound(q.index, p.Field)
		}
		frag, err := Compile(f, p.Operator, p.Value)
		if err != nil {
			return "", err
		}
		if frag != "" {
			parts = append(parts, frag)
		}
	}
	return strings.Join(parts, " "), nil
}

// SearchArgs returns the FT.SEARCH arguments All would send.
func (q *Query) SearchArgs() ([]string, error) {
	count := q.limit
	if count <= 0 {
		count = MaxSize
	}
	return q.searchArgs(q.skip, count)
}

// CountArgs returns the FT.SEARCH arguments Count would send.
func (q *Query) CountArgs() ([]string, error) {
	expr, err := q.expression()
	if err != nil {
		return nil, err
	}
	return []string{q.index, expr, "LIMIT", "0", "0"}, nil
}

func (q *Query) expression() (string, error) {
	expr, err := q.Build()
	if err != nil {
		return "", err
	}
	if expr == "" {
		expr = Wildcard
	}
	return expr, nil
}

func (q *Query) searchArgs(offset, count int) ([]string, error) {
	expr, err := q.expression()
	if err != nil {
		return nil, err
	}
	args := []string{q.index, expr, "LIMIT", strconv.Itoa(offset), strconv.Itoa(count)}
	sortArgs, err := q.sortArgs()
	if err != nil {
		return nil, err
	}
	return append(args, sortArgs...), nil
}

func (q *Query) sortArgs() ([]string, error) {
	switch len(q.sorts) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, errors.Newf(errors.ErrCodeMultiSort, "only one sort field is supported, got %d", len(q.sorts)).
			WithDetail("index", q.index)
	}

	s := q.sorts[0]
	if _, ok := q.schema.Lookup(s.Field); !ok {
		return nil, fieldNotFound(q.index, s.Field)
	}
	dir, err := ParseDirection(string(s.Direction))
	if err != nil {
		return nil, err
	}
	return []string{"SORTBY", s.Field, strings.ToUpper(string(dir))}, nil
}

func (q *Query) sorted() bool {
	return len(q.sorts) > 0
}

// First returns the first matching document, or nil when none match.
func (q *Query) First(ctx context.Context) (Document, error) {
	defer q.Reset()

	args, err := q.searchArgs(q.skip, 1)
	if err != nil {
		return nil, err
	}
	docs, err := q.search(ctx, args)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

// All returns every matching document in index order, up to the limit.
func (q *Query) All(ctx context.Context) ([]Document, error) {
	defer q.Reset()

	args, err := q.SearchArgs()
	if err != nil {
		return nil, err
	}
	return q.search(ctx, args)
}

// Count returns the number of matching documents. Sorting is ignored.
func (q *Query) Count(ctx context.Context) (int64, error) {
	defer q.Reset()

	args, err := q.CountArgs()
	if err != nil {
		return 0, err
	}
	return q.count(ctx, args)
}

// Paginate returns page req.CurrentPage() of perPage documents plus the
// total. A nil req means page 1.
func (q *Query) Paginate(ctx context.Context, perPage int, req PageRequest) (*Page, error) {
	defer q.Reset()

	if perPage <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPageRange, "perPage must be positive, got %d", perPage)
	}
	page := currentPage(req)

	// Both commands come from the same predicate buffer, so build them before either runs.
	countArgs, err := q.CountArgs()
	if err != nil {
		return nil, err
	}
	searchArgs, err := q.searchArgs((page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}

	total, err := q.count(ctx, countArgs)
	if err != nil {
		return nil, err
	}
	items, err := q.search(ctx, searchArgs)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, perPage, req), nil
}

func (q *Query) search(ctx context.Context, args []string) ([]Document, error) {
	raw, err := q.exec.Do(ctx, "FT.SEARCH", args...)
	if err != nil {
		return nil, err
	}
	return Decode(raw, q.sorted())
}

func (q *Query) count(ctx context.Context, args []string) (int64, error) {
	raw, err := q.exec.Do(ctx, "FT.SEARCH", args...)
	if err != nil {
		return 0, err
	}
	return DecodeTotal(raw)
}
