package record

import (
	"sort"
	"strings"
	"sync"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/schema"
)

// ErrUnknownModel matches lookups of a model that was never registered.
var ErrUnknownModel = errors.Sentinel(errors.ErrCodeUnknownModel)

// FieldSpec declares one field in configuration.
type FieldSpec struct {
	Name  string `yaml:"name" json:"name"`
	Type  string `yaml:"type" json:"type"`
	Index bool   `yaml:"index" json:"index"`
}

// ModelSpec declares one model in configuration.
type ModelSpec struct {
	Name       string         `yaml:"name" json:"name"`
	Prefix     string         `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	PrimaryKey string         `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	Timestamps bool           `yaml:"timestamps" json:"timestamps"`
	Fields     []FieldSpec    `yaml:"fields" json:"fields"`
	Defaults   map[string]any `yaml:"defaults,omitempty" json:"defaults,omitempty"`
}

// Build validates the spec and returns the Model it declares.
func (s ModelSpec) Build(dbName string) (*Model, error) {
	fields := make([]schema.Field, 0, len(s.Fields))
	for _, fs := range s.Fields {
		t, err := schema.ParseFieldType(fs.Type)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidSchema,
				"model "+s.Name+" field "+fs.Name+": "+err.Error(), err)
		}
		fields = append(fields, schema.Field{Name: fs.Name, Type: t, Indexed: fs.Index})
	}
	sch, err := schema.NewSchema(fields...)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "model "+s.Name+": "+err.Error(), err)
	}

	defaults := make(map[string]Value, len(s.Defaults))
	for k, raw := range s.Defaults {
		v, err := ValueOf(normalizeYAML(raw))
		if err != nil {
			return nil, err
		}
		defaults[k] = v
	}

	return NewModel(s.Name, dbName, sch,
		WithPrefix(s.Prefix),
		WithPrimaryKey(s.PrimaryKey),
		WithTimestamps(s.Timestamps),
		WithDefaults(defaults),
	)
}

// normalizeYAML turns yaml.v3 scalars into types ValueOf accepts.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case uint64:
		return int64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeYAML(e)
		}
		return out
	default:
		return v
	}
}

// Registry holds the models known to a process. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// NewRegistryFromSpecs builds and registers every spec under dbName.
func NewRegistryFromSpecs(dbName string, specs []ModelSpec) (*Registry, error) {
	reg := NewRegistry()
	for _, s := range specs {
		m, err := s.Build(dbName)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds m. Names are unique case-insensitively.
func (r *Registry) Register(m *Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(m.name)
	if _, dup := r.models[key]; dup {
		return errors.Newf(errors.ErrCodeInvalidSchema, "model %s registered twice", m.name)
	}
	r.models[key] = m
	return nil
}

// Lookup returns the model called name, matching case-insensitively.
func (r *Registry) Lookup(name string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.models[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return nil, errors.Newf(errors.ErrCodeUnknownModel, "unknown model %q", name).
		WithDetail("model", name).
		WithSuggestion("Declare it under models: in .ftmodel.yaml")
}

// Names returns the registered model names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.models))
	for _, m := range r.models {
		names = append(names, m.name)
	}
	sort.Strings(names)
	return names
}

// Models returns the registered models sorted by name.
func (r *Registry) Models() []*Model {
	names := r.Names()
	out := make([]*Model, 0, len(names))
	for _, n := range names {
		m, _ := r.Lookup(n)
		out = append(out, m)
	}
	return out
}
