package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

func productSpec() ModelSpec {
	return ModelSpec{
		Name:       "Product",
		Timestamps: true,
		Fields: []FieldSpec{
			{Name: "title", Type: "text", Index: true},
			{Name: "price", Type: "int", Index: true},
			{Name: "tags", Type: "TAG", Index: true},
			{Name: "active", Type: "boolean"},
		},
		Defaults: map[string]any{"active": true, "price": 0},
	}
}

func TestModelSpec_Build(t *testing.T) {
	m, err := productSpec().Build("shop")
	require.NoError(t, err)

	assert.Equal(t, "product", m.Prefix())
	assert.Equal(t, 4, m.FieldSchema().Len())
	assert.True(t, Bool(true).Equal(m.Default("active")))
	assert.True(t, Int(0).Equal(m.Default("price")))
	assert.Len(t, m.IndexDescriptor().Entries, 3)
}

func TestModelSpec_BuildRejectsBadType(t *testing.T) {
	spec := productSpec()
	spec.Fields = append(spec.Fields, FieldSpec{Name: "loc", Type: "GEO"})

	_, err := spec.Build("shop")

	assert.Equal(t, errors.ErrCodeInvalidSchema, errors.GetCode(err))
	assert.Contains(t, err.Error(), "loc")
}

func TestRegistry(t *testing.T) {
	// Given: a registry built from two specs
	reg, err := NewRegistryFromSpecs("shop", []ModelSpec{
		productSpec(),
		{Name: "Customer", Fields: []FieldSpec{{Name: "email", Type: "TAG", Index: true}}},
	})
	require.NoError(t, err)

	// Then: lookups are case-insensitive
	m, err := reg.Lookup("product")
	require.NoError(t, err)
	assert.Equal(t, "Product", m.Name())

	assert.Equal(t, []string{"Customer", "Product"}, reg.Names())
	assert.Len(t, reg.Models(), 2)

	// And: unknown names fail with a coded error
	_, err = reg.Lookup("Order")
	assert.ErrorIs(t, err, ErrUnknownModel)

	// And: duplicates are rejected
	dup, _ := productSpec().Build("shop")
	assert.Equal(t, errors.ErrCodeInvalidSchema, errors.GetCode(reg.Register(dup)))
}
