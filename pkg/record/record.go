package record

import (
	"encoding/json"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/query"
)

// ErrFieldNotFound matches writes to an attribute the model does not declare.
var ErrFieldNotFound = errors.Sentinel(errors.ErrCodeFieldNotFound)

// Record is one instance of a Model. Attributes are limited to the model's
// fields, its primary key and, with timestamps, created_at and updated_at.
type Record struct {
	model  *Model
	attrs  map[string]Value
	exists bool
}

// NewRecord returns an unsaved record of m with no attributes set.
func NewRecord(m *Model) *Record {
	return &Record{model: m, attrs: make(map[string]Value)}
}

// FromDocument builds a stored record from a decoded search payload.
// Keys the model does not declare are ignored.
func FromDocument(m *Model, doc query.Document) (*Record, error) {
	r := NewRecord(m)
	for k, raw := range doc {
		f, ok := m.allows(k)
		if !ok {
			continue
		}
		v, err := ValueOf(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err).WithDetail("field", k)
		}
		if v, err = Coerce(f.Type, v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err).WithDetail("field", k)
		}
		r.attrs[k] = v
	}
	r.exists = true
	return r, nil
}

// Model returns the record's type.
func (r *Record) Model() *Model { return r.model }

// Exists reports whether the record has been stored and not deleted.
func (r *Record) Exists() bool { return r.exists }

// ID returns the primary key, or 0 if none was assigned.
func (r *Record) ID() int64 {
	id, _ := r.Get(r.model.primaryKey).Int()
	return id
}

// Get returns the attribute, or null when unset.
func (r *Record) Get(field string) Value {
	return r.attrs[field]
}

// Set stores v under field after coercing it to the field's type.
func (r *Record) Set(field string, v any) error {
	f, ok := r.model.allows(field)
	if !ok {
		return errors.Newf(errors.ErrCodeFieldNotFound, "model %s has no field %s", r.model.name, field).
			WithDetail("model", r.model.name).
			WithDetail("field", field)
	}
	val, err := ValueOf(v)
	if err != nil {
		return err
	}
	val, err = Coerce(f.Type, val)
	if err != nil {
		return err
	}
	r.attrs[field] = val
	return nil
}

// Fill sets every attribute in attrs. It stops at the first invalid one.
func (r *Record) Fill(attrs map[string]any) error {
	for k, v := range attrs {
		if err := r.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Attributes returns a copy of the attribute map.
func (r *Record) Attributes() map[string]Value {
	out := make(map[string]Value, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = v
	}
	return out
}

// Map returns the attributes as plain Go values.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = v.Interface()
	}
	return out
}

// MarshalJSON encodes the attributes as a JSON object.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.attrs)
}

// fillDeclared gives every declared field a value: the model default when
// one exists, null otherwise. Already-set attributes are kept.
func (r *Record) fillDeclared() {
	for _, f := range r.model.schema.Fields() {
		if _, ok := r.attrs[f.Name]; !ok {
			r.attrs[f.Name] = r.model.Default(f.Name)
		}
	}
}
