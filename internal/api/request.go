package api

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/query"
	"github.com/Aman-CERP/ftmodel/pkg/record"
)

// Reserved query parameters; every other parameter naming a field is an equality filter.
const (
	paramPage    = "page"
	paramPerPage = "per_page"
	paramSort    = "sort"
	paramWhere   = "where"
	paramIn      = "in"
)

var reserved = map[string]bool{
	paramPage: true, paramPerPage: true, paramSort: true, paramWhere: true, paramIn: true,
}

// RequestContext adapts an *http.Request to query.PageRequest.
type RequestContext struct {
	r *http.Request
}

// NewRequestContext wraps r.
func NewRequestContext(r *http.Request) RequestContext {
	return RequestContext{r: r}
}

// CurrentPage returns the page parameter; anything unparsable means page 1.
func (c RequestContext) CurrentPage() int {
	n, err := strconv.Atoi(c.r.URL.Query().Get(paramPage))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// URL returns the absolute request URL without its query string.
func (c RequestContext) URL() string {
	scheme := "http"
	if c.r.TLS != nil {
		scheme = "https"
	}
	if p := c.r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	u := url.URL{Scheme: scheme, Host: c.r.Host, Path: c.r.URL.Path}
	return u.String()
}

// QueryParams returns a copy of the request's query parameters.
func (c RequestContext) QueryParams() url.Values {
	return c.r.URL.Query()
}

// perPage reads per_page, defaulting to def and capped at limit.
func perPage(params url.Values, def, limit int) (int, error) {
	raw := params.Get(paramPerPage)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.Newf(errors.ErrCodeInvalidPageRange, "per_page must be a positive integer, got %q", raw)
	}
	if n > limit {
		n = limit
	}
	return n, nil
}

// buildQuery applies the filter and sort parameters to q.
// Unknown parameters that name no field are ignored.
func buildQuery(q *query.Query, m *record.Model, params url.Values) error {
	fields := m.FieldSchema()
	keys := make([]string, 0, len(params))
	for key := range params {
		if _, ok := fields.Lookup(key); ok && !reserved[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, v := range params[key] {
			q.Where(key, query.Eq, v)
		}
	}
	for _, cond := range params[paramWhere] {
		p, err := query.ParseCondition(cond)
		if err != nil {
			return err
		}
		q.Apply(p)
	}
	for _, cond := range params[paramIn] {
		p, err := query.ParseIn(cond)
		if err != nil {
			return err
		}
		q.Apply(p)
	}
	for _, s := range params[paramSort] {
		spec, err := query.ParseSort(s)
		if err != nil {
			return err
		}
		q.SortBy(spec.Field, spec.Direction)
	}
	return nil
}
