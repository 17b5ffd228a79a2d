package query

import (
	"net/url"
	"strconv"
)

// PageRequest supplies the current page and link metadata, usually from an HTTP request.
type PageRequest interface {
	CurrentPage() int
	URL() string
	QueryParams() url.Values
}

// Page is one page of documents with link metadata.
type Page struct {
	Items    []Document `json:"data"`
	Total    int64      `json:"total"`
	Page     int        `json:"current_page"`
	PerPage  int        `json:"per_page"`
	LastPage int        `json:"last_page"`
	Path     string     `json:"path,omitempty"`
	Query    url.Values `json:"-"`
}

func currentPage(req PageRequest) int {
	if req == nil {
		return 1
	}
	if p := req.CurrentPage(); p > 1 {
		return p
	}
	return 1
}

func newPage(items []Document, total int64, page, perPage int, req PageRequest) *Page {
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	p := &Page{
		Items:    items,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: last,
	}
	if p.Items == nil {
		p.Items = []Document{}
	}
	if req != nil {
		p.Path = req.URL()
		p.Query = req.QueryParams()
	}
	return p
}

// HasMore reports whether a later page exists.
func (p *Page) HasMore() bool {
	return p.Page < p.LastPage
}

// URL returns the link to page n, keeping the request's query parameters.
// Returns "" when n is out of range.
func (p *Page) URL(n int) string {
	if n < 1 || n > p.LastPage {
		return ""
	}
	params := url.Values{}
	for k, v := range p.Query {
		params[k] = append([]string(nil), v...)
	}
	params.Set("page", strconv.Itoa(n))
	return p.Path + "?" + params.Encode()
}

// NextURL returns the link to the next page, or "".
func (p *Page) NextURL() string {
	return p.URL(p.Page + 1)
}

// PrevURL returns the link to the previous page, or "".
func (p *Page) PrevURL() string {
	return p.URL(p.Page - 1)
}

// StaticPage is a fixed PageRequest.
type StaticPage struct {
	Page   int
	Path   string
	Params url.Values
}

// CurrentPage implements PageRequest.
func (s StaticPage) CurrentPage() int { return s.Page }

// URL implements PageRequest.
func (s StaticPage) URL() string { return s.Path }

// QueryParams implements PageRequest.
func (s StaticPage) QueryParams() url.Values { return s.Params }
