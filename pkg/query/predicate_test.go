package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/schema"
)

var (
	statusField = schema.Field{Name: "status", Type: schema.Tag, Indexed: true}
	ageField    = schema.Field{Name: "age", Type: schema.Numeric, Indexed: true}
	titleField  = schema.Field{Name: "title", Type: schema.Text, Indexed: true}
	codeField   = schema.Field{Name: "code", Type: schema.String, Indexed: true}
	activeField = schema.Field{Name: "active", Type: schema.Boolean, Indexed: true}
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name  string
		field schema.Field
		op    Operator
		value any
		want  string
	}{
		{"tag eq", statusField, Eq, "active", "@status:{active}"},
		{"tag eq escaped", statusField, Eq, "a-b.c", `@status:{a\-b\.c}`},
		{"tag in", statusField, In, []string{"active", "pending"}, "@status: active | pending"},
		{"tag in escaped", statusField, In, []any{"x:y", "z"}, `@status: x\:y | z`},
		{"tag in scalar", statusField, In, "active", "@status: active"},
		{"numeric eq", ageField, Eq, 30, "@age:[30 30]"},
		{"numeric eq float", ageField, Eq, 2.5, `@age:[2\.5 2\.5]`},
		{"numeric in", ageField, In, []int{1, 2}, "(@age:[1 1] | @age:[2 2])"},
		{"numeric gt", ageField, Gt, 30, "@age:[(30 +inf]"},
		{"numeric gte", ageField, Gte, 30, "@age:[(30 +inf]"},
		{"numeric lt", ageField, Lt, 18, "@age:[-inf 18]"},
		{"numeric lte", ageField, Lte, int64(18), "@age:[-inf 18]"},
		{"numeric string value", ageField, Gt, "30", "@age:[(30 +inf]"},
		{"text eq", titleField, Eq, "hello", "@title: hello"},
		{"text eq escaped", titleField, Eq, "hi!", `@title: hi\!`},
		{"text in", titleField, In, []string{"a"}, ""},
		{"text gt", titleField, Gt, "a", ""},
		{"tag gt", statusField, Gt, 1, ""},
		{"tag lt", statusField, Lt, 1, ""},
		{"string eq", codeField, Eq, "x", ""},
		{"boolean eq", activeField, Eq, true, ""},
		{"boolean in", activeField, In, []bool{true}, ""},
		{"empty string", statusField, Eq, "", ""},
		{"nil value", ageField, Gt, nil, ""},
		{"empty list", statusField, In, []string{}, ""},
		{"list of empties", statusField, In, []string{"", ""}, ""},
		{"in skips empty elements", statusField, In, []string{"a", "", "b"}, "@status: a | b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.field, tt.op, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	// Given: an unknown operator
	_, err := Compile(statusField, Operator("like"), "x")

	// Then: it is an invalid query
	assert.ErrorIs(t, err, ErrInvalidQuery)

	// Given: a list passed to a scalar operator
	_, err = Compile(ageField, Gt, []int{1, 2})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestParseOperator(t *testing.T) {
	for _, s := range []string{"=", "in", "IN", ">", "<", ">=", "<="} {
		_, err := ParseOperator(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseOperator("!=")
	assert.Equal(t, errors.ErrCodeInvalidQuery, errors.GetCode(err))
}
