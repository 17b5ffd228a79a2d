package record

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/schema"
)

// Attribute names maintained by the record layer.
const (
	DefaultPrimaryKey = "id"
	CreatedAt         = "created_at"
	UpdatedAt         = "updated_at"
)

// TypeProvider supplies what the query and index layers need about a record type.
type TypeProvider interface {
	FieldSchema() schema.Schema
	Prefix() string
	KeyFor(id int64) string
}

// Model declares one record type.
type Model struct {
	name       string
	dbName     string
	prefix     string
	schema     schema.Schema
	defaults   map[string]Value
	timestamps bool
	primaryKey string
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithPrefix overrides the key prefix, which defaults to the snake_case name.
func WithPrefix(prefix string) ModelOption {
	return func(m *Model) {
		if prefix != "" {
			m.prefix = prefix
		}
	}
}

// WithTimestamps enables created_at and updated_at bookkeeping.
func WithTimestamps(enabled bool) ModelOption {
	return func(m *Model) {
		m.timestamps = enabled
	}
}

// WithPrimaryKey renames the id attribute.
func WithPrimaryKey(name string) ModelOption {
	return func(m *Model) {
		if name != "" {
			m.primaryKey = name
		}
	}
}

// WithDefaults sets values used for fields left unset on create.
func WithDefaults(defaults map[string]Value) ModelOption {
	return func(m *Model) {
		for k, v := range defaults {
			m.defaults[k] = v
		}
	}
}

// NewModel declares a record type named name stored under database dbName.
func NewModel(name, dbName string, s schema.Schema, opts ...ModelOption) (*Model, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "model name is empty", nil)
	}
	if dbName == "" {
		return nil, errors.Newf(errors.ErrCodeInvalidSchema, "model %s has no database name", name)
	}
	m := &Model{
		name:       name,
		dbName:     dbName,
		prefix:     SnakeCase(name),
		schema:     s,
		defaults:   make(map[string]Value),
		primaryKey: DefaultPrimaryKey,
	}
	for _, opt := range opts {
		opt(m)
	}

	if strings.ContainsAny(m.prefix, ": ") {
		return nil, errors.Newf(errors.ErrCodeInvalidSchema, "model %s prefix %q must not contain ':' or spaces", name, m.prefix)
	}
	for _, reserved := range m.reserved() {
		if _, ok := s.Lookup(reserved); ok {
			return nil, errors.Newf(errors.ErrCodeInvalidSchema, "model %s declares reserved field %s", name, reserved)
		}
	}
	for k, v := range m.defaults {
		f, ok := s.Lookup(k)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeFieldNotFound, "model %s has a default for undeclared field %s", name, k)
		}
		cv, err := Coerce(f.Type, v)
		if err != nil {
			return nil, err
		}
		m.defaults[k] = cv
	}
	return m, nil
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// DBName returns the database name used in keys and index names.
func (m *Model) DBName() string { return m.dbName }

// Prefix returns the key prefix, without separators.
func (m *Model) Prefix() string { return m.prefix }

// FieldSchema returns the declared fields.
func (m *Model) FieldSchema() schema.Schema { return m.schema }

// PrimaryKey returns the id attribute name.
func (m *Model) PrimaryKey() string { return m.primaryKey }

// Timestamps reports whether created_at and updated_at are maintained.
func (m *Model) Timestamps() bool { return m.timestamps }

// Default returns the default for field, or null.
func (m *Model) Default(field string) Value { return m.defaults[field] }

// KeyFor returns "{db}:{prefix}:{id}".
func (m *Model) KeyFor(id int64) string {
	return fmt.Sprintf("%s%d", schema.KeyPrefix(m.dbName, m.prefix), id)
}

// IndexName returns "{db}-{prefix}-idx".
func (m *Model) IndexName() string {
	return schema.IndexName(m.dbName, m.prefix)
}

// IndexDescriptor derives the FT.CREATE descriptor for the model.
func (m *Model) IndexDescriptor() schema.IndexDescriptor {
	return schema.BuildIndexDescriptor(m.schema, m.dbName, m.prefix)
}

// CounterKey returns the key holding the last allocated id, "total_<plural prefix>".
func (m *Model) CounterKey() string {
	return "total_" + Plural(m.prefix)
}

// allows reports whether field may be stored on a record.
func (m *Model) allows(field string) (schema.Field, bool) {
	if f, ok := m.schema.Lookup(field); ok {
		return f, true
	}
	for _, r := range m.reserved() {
		if field == r {
			return schema.Field{Name: field, Type: schema.Numeric}, true
		}
	}
	return schema.Field{}, false
}

func (m *Model) reserved() []string {
	if m.timestamps {
		return []string{m.primaryKey, CreatedAt, UpdatedAt}
	}
	return []string{m.primaryKey}
}

// SnakeCase converts a type name such as "UserProfile" to "user_profile".
// Runs of capitals stay together: "HTTPLog" becomes "http_log".
func SnakeCase(name string) string {
	runes := []rune(strings.TrimSpace(name))
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-':
			b.WriteRune('_')
			continue
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != '_' && runes[i-1] != ' ' && runes[i-1] != '-' {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
					b.WriteRune('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// irregularPlurals covers the common English nouns a counter key might use.
var irregularPlurals = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"mouse":  "mice",
	"datum":  "data",
}

// Plural returns the English plural of the last word of a snake_case name.
func Plural(name string) string {
	head, word := "", name
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		head, word = name[:i+1], name[i+1:]
	}
	if p, ok := irregularPlurals[word]; ok {
		return head + p
	}

	switch {
	case word == "":
		return name
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"), strings.HasSuffix(word, "z"),
		strings.HasSuffix(word, "ch"), strings.HasSuffix(word, "sh"):
		return head + word + "es"
	case strings.HasSuffix(word, "y") && len(word) > 1 && !strings.ContainsRune("aeiou", rune(word[len(word)-2])):
		return head + word[:len(word)-1] + "ies"
	default:
		return head + word + "s"
	}
}
