package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

func TestParseFieldType(t *testing.T) {
	tests := []struct {
		in   string
		want FieldType
	}{
		{"NUMERIC", Numeric},
		{"int", Numeric},
		{"text", Text},
		{" Tag ", Tag},
		{"STRING", String},
		{"boolean", Boolean},
		{"BOOL", Boolean},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFieldType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFieldType("GEO")
	assert.Equal(t, errors.ErrCodeInvalidSchema, errors.GetCode(err))
}

func TestNewSchema_PreservesOrderAndLooksUp(t *testing.T) {
	// Given: three fields in a fixed order
	s, err := NewSchema(
		Field{Name: "title", Type: Text, Indexed: true},
		Field{Name: "views", Type: Numeric},
		Field{Name: "status", Type: Tag, Indexed: true},
	)
	require.NoError(t, err)

	// Then: order is kept and lookup works by name
	names := []string{}
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"title", "views", "status"}, names)
	assert.Equal(t, 3, s.Len())

	f, ok := s.Lookup("views")
	require.True(t, ok)
	assert.Equal(t, Numeric, f.Type)
	_, ok = s.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, "title:TEXT -views:NUMERIC status:TAG", s.String())
}

func TestNewSchema_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{"duplicate", []Field{{Name: "a", Type: Tag}, {Name: "a", Type: Text}}},
		{"empty name", []Field{{Name: "", Type: Tag}}},
		{"bad type", []Field{{Name: "a", Type: "GEO"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.fields...)
			assert.Equal(t, errors.ErrCodeInvalidSchema, errors.GetCode(err))
		})
	}
}

func TestSchema_FieldsIsACopy(t *testing.T) {
	s := MustSchema(Field{Name: "a", Type: Tag})
	fields := s.Fields()
	fields[0].Name = "changed"

	_, ok := s.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "a", s.Fields()[0].Name)
}

func TestMustSchema_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustSchema(Field{Name: "a", Type: Tag}, Field{Name: "a", Type: Tag})
	})
}
