package schema

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

// FieldType selects the search grammar used for a field.
type FieldType string

// Field types. The values are the tokens written into FT.CREATE.
const (
	Numeric FieldType = "NUMERIC"
	Text    FieldType = "TEXT"
	Tag     FieldType = "TAG"
	String  FieldType = "STRING"
	Boolean FieldType = "boolean"
)

// ParseFieldType parses a type name case-insensitively. INT is an alias of NUMERIC
// and BOOL of boolean.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NUMERIC", "INT":
		return Numeric, nil
	case "TEXT":
		return Text, nil
	case "TAG":
		return Tag, nil
	case "STRING":
		return String, nil
	case "BOOLEAN", "BOOL":
		return Boolean, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidSchema, "unknown field type %q", s).
			WithSuggestion("Use one of NUMERIC, TEXT, TAG, STRING, BOOLEAN")
	}
}

// Valid reports whether t is one of the declared field types.
func (t FieldType) Valid() bool {
	switch t {
	case Numeric, Text, Tag, String, Boolean:
		return true
	}
	return false
}

// Field is one declared attribute of a record type.
type Field struct {
	Name    string
	Type    FieldType
	Indexed bool
}

// Schema is the ordered, read-only field list of a record type.
type Schema struct {
	fields []Field
	byName map[string]int
}

// NewSchema validates fields and returns a Schema that keeps their order.
func NewSchema(fields ...Field) (Schema, error) {
	s := Schema{
		fields: make([]Field, 0, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return Schema{}, errors.New(errors.ErrCodeInvalidSchema, "field name is empty", nil)
		}
		if !f.Type.Valid() {
			return Schema{}, errors.Newf(errors.ErrCodeInvalidSchema, "field %s has unknown type %q", f.Name, f.Type)
		}
		if _, dup := s.byName[f.Name]; dup {
			return Schema{}, errors.Newf(errors.ErrCodeInvalidSchema, "field %s declared twice", f.Name)
		}
		s.byName[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for static declarations.
func MustSchema(fields ...Field) Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the field named name.
func (s Schema) Lookup(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Fields returns a copy of the fields in declaration order.
func (s Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Len returns the number of fields.
func (s Schema) Len() int {
	return len(s.fields)
}

// String renders the schema as "name:TYPE" pairs, marking unindexed fields with '-'.
func (s Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		mark := ""
		if !f.Indexed {
			mark = "-"
		}
		parts[i] = fmt.Sprintf("%s%s:%s", mark, f.Name, f.Type)
	}
	return strings.Join(parts, " ")
}
