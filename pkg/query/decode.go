package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
)

// Document is one decoded JSON payload. Numbers are json.Number.
type Document map[string]any

// Row payload positions inside a row composite. Without SORTBY a row is
// ["$", json]; with SORTBY the sort key comes first: [field, value, "$", json].
const (
	payloadIndex       = 1
	sortedPayloadIndex = 3
)

// Flat reply strides: key then payload, or key, sort value then payload.
const (
	flatStride       = 2
	sortedFlatStride = 3
)

// Decode unpacks an FT.SEARCH reply [total, key1, row1, key2, row2, ...].
// Entries that are not row composites, and composites without a string
// payload at the expected position, are skipped. A reply with no composites
// at all is read flat: [total, key, json, ...] or, sorted,
// [total, key, sortValue, json, ...]. A payload that is not a JSON object
// fails with ERR_506_DECODE_FAILED.
func Decode(raw any, sorted bool) ([]Document, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := backend.AsSlice(raw)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDecodeFailed, "search reply is %T, not an array", raw)
	}
	if len(items) <= 1 {
		return []Document{}, nil
	}
	if isFlat(items[1:]) {
		return decodeFlat(items, sorted)
	}

	pos := payloadIndex
	if sorted {
		pos = sortedPayloadIndex
	}

	docs := make([]Document, 0, len(items)/2)
	for i, item := range items {
		if i == 0 {
			continue
		}
		row, ok := backend.AsSlice(item)
		if !ok || len(row) <= pos {
			continue
		}
		payload, ok := backend.AsString(row[pos])
		if !ok {
			continue
		}
		doc, err := decodeRow(i, payload)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func isFlat(entries []any) bool {
	for _, e := range entries {
		if _, ok := backend.AsSlice(e); ok {
			return false
		}
	}
	return true
}

// decodeFlat takes the last element of each stride after the total as the
// payload. A trailing partial stride is ignored.
func decodeFlat(items []any, sorted bool) ([]Document, error) {
	stride := flatStride
	if sorted {
		stride = sortedFlatStride
	}

	docs := make([]Document, 0, (len(items)-1)/stride)
	for i := 1; i+stride-1 < len(items); i += stride {
		at := i + stride - 1
		payload, ok := backend.AsString(items[at])
		if !ok {
			continue
		}
		doc, err := decodeRow(at, payload)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func decodeRow(i int, payload string) (Document, error) {
	doc, err := DecodeDocument(payload)
	if err != nil {
		return nil, errors.New(errors.ErrCodeDecodeFailed, fmt.Sprintf("row %d: %v", i, err), err).
			WithDetail("row", fmt.Sprint(i))
	}
	return doc, nil
}

// DecodeDocument decodes one JSON payload. It accepts an object, or a
// one-element array holding an object as returned for the $ path.
func DecodeDocument(payload string) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if arr, ok := v.([]any); ok && len(arr) == 1 {
		v = arr[0]
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload is %T, not an object", v)
	}
	return Document(obj), nil
}

// DecodeTotal returns the leading total of an FT.SEARCH reply.
func DecodeTotal(raw any) (int64, error) {
	if raw == nil {
		return 0, nil
	}
	items, ok := backend.AsSlice(raw)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeDecodeFailed, "search reply is %T, not an array", raw)
	}
	if len(items) == 0 {
		return 0, nil
	}
	return backend.AsInt64(items[0])
}
