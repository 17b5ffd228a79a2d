package record

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
	"github.com/Aman-CERP/ftmodel/pkg/query"
	"github.com/Aman-CERP/ftmodel/pkg/schema"
)

// Repository stores and queries records of one Model.
type Repository struct {
	model *Model
	exec  backend.Executor
	now   func() time.Time
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithClock sets the time source for timestamps.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) {
		r.now = now
	}
}

// NewRepository binds m to exec.
func NewRepository(m *Model, exec backend.Executor, opts ...RepositoryOption) *Repository {
	r := &Repository{model: m, exec: exec, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Model returns the repository's model.
func (r *Repository) Model() *Model { return r.model }

// New returns an unsaved record with every declared field set to its default or null.
func (r *Repository) New() *Record {
	rec := NewRecord(r.model)
	rec.fillDeclared()
	return rec
}

// Create allocates the next id, fills the record and stores it.
func (r *Repository) Create(ctx context.Context, attrs map[string]any) (*Record, error) {
	rec := NewRecord(r.model)
	if err := rec.Fill(attrs); err != nil {
		return nil, err
	}
	rec.fillDeclared()
	if err := r.insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Repository) insert(ctx context.Context, rec *Record) error {
	raw, err := r.exec.Do(ctx, "INCR", r.model.CounterKey())
	if err != nil {
		return err
	}
	id, err := backend.AsInt64(raw)
	if err != nil {
		return err
	}
	rec.attrs[r.model.primaryKey] = Int(id)
	if r.model.timestamps {
		ts := Int(r.now().Unix())
		rec.attrs[CreatedAt] = ts
		rec.attrs[UpdatedAt] = ts
	}
	return r.write(ctx, rec)
}

// Save stores rec. A record without an id is created.
func (r *Repository) Save(ctx context.Context, rec *Record) error {
	if err := r.own(rec); err != nil {
		return err
	}
	if rec.ID() == 0 {
		rec.fillDeclared()
		return r.insert(ctx, rec)
	}
	return r.write(ctx, rec)
}

// Update fills attrs into rec, bumps updated_at and saves it.
func (r *Repository) Update(ctx context.Context, rec *Record, attrs map[string]any) error {
	if err := r.own(rec); err != nil {
		return err
	}
	if err := rec.Fill(attrs); err != nil {
		return err
	}
	if r.model.timestamps {
		rec.attrs[UpdatedAt] = Int(r.now().Unix())
	}
	return r.Save(ctx, rec)
}

// Delete removes rec from the backend.
func (r *Repository) Delete(ctx context.Context, rec *Record) error {
	if err := r.own(rec); err != nil {
		return err
	}
	id := rec.ID()
	if id == 0 {
		return errors.Newf(errors.ErrCodeInvalidInput, "cannot delete unsaved %s", r.model.name)
	}
	if _, err := r.exec.Do(ctx, "JSON.DEL", r.model.KeyFor(id)); err != nil {
		return err
	}
	rec.exists = false
	return nil
}

// FindByID loads the record stored under id. It returns nil when there is none.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Record, error) {
	raw, err := r.exec.Do(ctx, "JSON.GET", r.model.KeyFor(id))
	if err != nil || raw == nil {
		return nil, err
	}
	payload, ok := backend.AsString(raw)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDecodeFailed, "JSON.GET reply is %T", raw)
	}
	if payload == "" {
		return nil, nil
	}
	doc, err := query.DecodeDocument(payload)
	if err != nil {
		return nil, errors.New(errors.ErrCodeDecodeFailed, "decode "+r.model.KeyFor(id), err)
	}
	return FromDocument(r.model, doc)
}

// Query returns a new query over the model's index.
func (r *Repository) Query() *query.Query {
	return query.New(r.model.IndexName(), r.model.schema, r.exec)
}

// First runs q and wraps the first document, or returns nil.
func (r *Repository) First(ctx context.Context, q *query.Query) (*Record, error) {
	doc, err := q.First(ctx)
	if err != nil || doc == nil {
		return nil, err
	}
	return FromDocument(r.model, doc)
}

// All runs q and wraps every document.
func (r *Repository) All(ctx context.Context, q *query.Query) ([]*Record, error) {
	docs, err := q.All(ctx)
	if err != nil {
		return nil, err
	}
	return r.wrap(docs)
}

// Count runs q as a count.
func (r *Repository) Count(ctx context.Context, q *query.Query) (int64, error) {
	return q.Count(ctx)
}

// Page is one page of records with link metadata.
type Page struct {
	Items    []*Record `json:"data"`
	Total    int64     `json:"total"`
	Page     int       `json:"current_page"`
	PerPage  int       `json:"per_page"`
	LastPage int       `json:"last_page"`
	Path     string    `json:"path,omitempty"`
	NextURL  string    `json:"next_page_url,omitempty"`
	PrevURL  string    `json:"prev_page_url,omitempty"`
}

// Paginate runs q for the page named by req.
func (r *Repository) Paginate(ctx context.Context, q *query.Query, perPage int, req query.PageRequest) (*Page, error) {
	p, err := q.Paginate(ctx, perPage, req)
	if err != nil {
		return nil, err
	}
	items, err := r.wrap(p.Items)
	if err != nil {
		return nil, err
	}
	return &Page{
		Items:    items,
		Total:    p.Total,
		Page:     p.Page,
		PerPage:  p.PerPage,
		LastPage: p.LastPage,
		Path:     p.Path,
		NextURL:  p.NextURL(),
		PrevURL:  p.PrevURL(),
	}, nil
}

// RecreateIndex drops and recreates the model's search index.
func (r *Repository) RecreateIndex(ctx context.Context) error {
	return schema.Recreate(ctx, r.exec, r.model.IndexDescriptor())
}

// ParseID parses a decimal record id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidInput, "invalid record id %q", s)
	}
	return id, nil
}

func (r *Repository) wrap(docs []query.Document) ([]*Record, error) {
	out := make([]*Record, 0, len(docs))
	for _, d := range docs {
		rec, err := FromDocument(r.model, d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *Repository) write(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.New(errors.ErrCodeEncodeFailed, "encode "+r.model.name, err)
	}
	if _, err := r.exec.Do(ctx, "JSON.SET", r.model.KeyFor(rec.ID()), "$", string(data)); err != nil {
		return err
	}
	rec.exists = true
	return nil
}

func (r *Repository) own(rec *Record) error {
	if rec == nil || rec.model != r.model {
		return errors.Newf(errors.ErrCodeInvalidInput, "record does not belong to model %s", r.model.name)
	}
	return nil
}
