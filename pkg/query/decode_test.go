package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Unsorted(t *testing.T) {
	// Given: a reply with two rows shaped ["$", json]
	raw := []any{
		int64(2),
		"db:user:1", []any{"$", `{"id":1}`},
		"db:user:2", []any{"$", `{"id":2}`},
	}

	// When: decoding without sort
	docs, err := Decode(raw, false)

	// Then: both documents come back in order
	require.NoError(t, err)
	assert.Equal(t, []Document{
		{"id": json.Number("1")},
		{"id": json.Number("2")},
	}, docs)
}

func TestDecode_SortedReadsOffsetThree(t *testing.T) {
	// Given: a sorted reply whose rows carry the sort key first
	raw := []any{
		int64(1),
		"db:user:1", []any{"age", "5", "$", `{"id":1}`},
	}

	// When: decoding with sort
	docs, err := Decode(raw, true)

	// Then: the sort value is ignored
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, json.Number("1"), docs[0]["id"])
}

func TestDecode_FlatRows(t *testing.T) {
	tests := []struct {
		name   string
		raw    []any
		sorted bool
		want   []Document
	}{
		{
			name: "unsorted key then payload",
			raw:  []any{int64(2), "k1", `{"id":1}`, "k2", `{"id":2}`},
			want: []Document{{"id": json.Number("1")}, {"id": json.Number("2")}},
		},
		{
			name:   "sorted key, sort value, payload",
			raw:    []any{int64(1), "k1", "5", `{"id":1}`},
			sorted: true,
			want:   []Document{{"id": json.Number("1")}},
		},
		{
			name: "trailing partial row is ignored",
			raw:  []any{int64(2), "k1", `{"id":1}`, "k2"},
			want: []Document{{"id": json.Number("1")}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a reply with no nested row arrays
			// When: decoding it
			docs, err := Decode(tt.raw, tt.sorted)

			// Then: the last element of each row is the payload
			require.NoError(t, err)
			assert.Equal(t, tt.want, docs)
		})
	}
}

func TestDecode_FlatMalformedPayloadFails(t *testing.T) {
	_, err := Decode([]any{int64(1), "k1", `{"id":`}, false)

	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecode_SkipsUnexpectedShapes(t *testing.T) {
	raw := []any{
		int64(4),
		"k1", []any{"$"},
		"k2", []any{"$", int64(7)},
		"k3", "bare",
		"k4", []any{"$", []byte(`{"id":4}`)},
	}

	docs, err := Decode(raw, false)

	require.NoError(t, err)
	assert.Equal(t, []Document{{"id": json.Number("4")}}, docs)
}

func TestDecode_AcceptsStringSlicesAndArrayPayloads(t *testing.T) {
	raw := []any{
		"1",
		"k1", []string{"$", `[{"name":"a"}]`},
	}

	docs, err := Decode(raw, false)

	require.NoError(t, err)
	assert.Equal(t, []Document{{"name": "a"}}, docs)
}

func TestDecode_MalformedPayloadFails(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"truncated", `{"id":`},
		{"not an object", `42`},
		{"array of many", `[{"a":1},{"b":2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []any{int64(1), "k1", []any{"$", tt.payload}}

			_, err := Decode(raw, false)

			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDecode_NilAndNonArray(t *testing.T) {
	docs, err := Decode(nil, false)
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = Decode("OK", false)
	assert.ErrorIs(t, err, ErrDecode)

	docs, err = Decode([]any{int64(0)}, false)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDecodeTotal(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int64
	}{
		{"int", []any{int64(25)}, 25},
		{"string", []any{"3", "k", []any{}}, 3},
		{"empty", []any{}, 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTotal(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeTotal(int64(5))
	assert.ErrorIs(t, err, ErrDecode)
}
