package record

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/backend/backendtest"
	"github.com/Aman-CERP/ftmodel/pkg/query"
	"github.com/Aman-CERP/ftmodel/pkg/schema"
)

var fixedNow = time.Unix(1700000000, 0)

func newProductRepo(t *testing.T, timestamps bool) (*Repository, *backendtest.Recorder) {
	t.Helper()
	m, err := NewModel("Product", "shop", productSchema(),
		WithTimestamps(timestamps),
		WithDefaults(map[string]Value{"status": Str("draft")}),
	)
	require.NoError(t, err)
	rec := backendtest.New()
	return NewRepository(m, rec, WithClock(func() time.Time { return fixedNow })), rec
}

func jsonArg(t *testing.T, call backendtest.Call) map[string]any {
	t.Helper()
	require.Len(t, call.Args, 3)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(call.Args[2]), &out))
	return out
}

func TestRepository_Create(t *testing.T) {
	// Given: a counter that has issued 4 ids
	repo, rec := newProductRepo(t, true)
	rec.On("INCR", int64(5), nil)

	// When: creating a product with one attribute
	p, err := repo.Create(context.Background(), map[string]any{"title": "Lamp"})

	// Then: the id is allocated then the full document is written at $
	require.NoError(t, err)
	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "INCR total_products", calls[0].Line())
	assert.Equal(t, "JSON.SET", calls[1].Command)
	assert.Equal(t, "shop:product:5", calls[1].Args[0])
	assert.Equal(t, "$", calls[1].Args[1])

	assert.Equal(t, map[string]any{
		"id":         float64(5),
		"title":      "Lamp",
		"status":     "draft",
		"price":      nil,
		"notes":      nil,
		"created_at": float64(fixedNow.Unix()),
		"updated_at": float64(fixedNow.Unix()),
	}, jsonArg(t, calls[1]))

	assert.Equal(t, int64(5), p.ID())
	assert.True(t, p.Exists())
}

func TestRepository_CreateIncrementsIDs(t *testing.T) {
	repo, rec := newProductRepo(t, false)
	rec.On("INCR", int64(1), nil).On("INCR", int64(2), nil)
	ctx := context.Background()

	a, err := repo.Create(ctx, nil)
	require.NoError(t, err)
	b, err := repo.Create(ctx, map[string]any{"price": "10"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID())
	assert.Equal(t, int64(2), b.ID())
	assert.True(t, Int(10).Equal(b.Get("price")))
	assert.NotContains(t, jsonArg(t, rec.Last()), "created_at")
}

func TestRepository_CreateRejectsUnknownField(t *testing.T) {
	repo, rec := newProductRepo(t, false)

	_, err := repo.Create(context.Background(), map[string]any{"colour": "red"})

	assert.ErrorIs(t, err, ErrFieldNotFound)
	assert.Empty(t, rec.Calls())
}

func TestRepository_UpdateBumpsUpdatedAt(t *testing.T) {
	repo, rec := newProductRepo(t, true)
	rec.On("INCR", int64(1), nil)
	ctx := context.Background()
	p, err := repo.Create(ctx, map[string]any{"title": "Lamp"})
	require.NoError(t, err)

	later := fixedNow.Add(time.Hour)
	repo.now = func() time.Time { return later }

	require.NoError(t, repo.Update(ctx, p, map[string]any{"price": 25}))

	doc := jsonArg(t, rec.Last())
	assert.Equal(t, "shop:product:1", rec.Last().Args[0])
	assert.Equal(t, float64(25), doc["price"])
	assert.Equal(t, float64(fixedNow.Unix()), doc["created_at"])
	assert.Equal(t, float64(later.Unix()), doc["updated_at"])
}

func TestRepository_SaveNewRecordCreates(t *testing.T) {
	repo, rec := newProductRepo(t, false)
	rec.On("INCR", int64(9), nil)

	p := repo.New()
	require.NoError(t, p.Set("title", "Desk"))
	require.NoError(t, repo.Save(context.Background(), p))

	assert.Equal(t, int64(9), p.ID())
	assert.Equal(t, []string{"INCR", "JSON.SET"}, []string{rec.Calls()[0].Command, rec.Calls()[1].Command})
}

func TestRepository_Delete(t *testing.T) {
	repo, rec := newProductRepo(t, false)
	rec.On("INCR", int64(3), nil)
	ctx := context.Background()
	p, err := repo.Create(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, p))

	assert.Equal(t, "JSON.DEL shop:product:3", rec.Last().Line())
	assert.False(t, p.Exists())

	err = repo.Delete(ctx, repo.New())
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestRepository_FindByID(t *testing.T) {
	repo, rec := newProductRepo(t, false)
	rec.On("JSON.GET", `{"id":4,"title":"Lamp","price":30,"legacy":"x"}`, nil)
	rec.On("JSON.GET", nil, nil)
	ctx := context.Background()

	// When: the key exists
	p, err := repo.FindByID(ctx, 4)

	// Then: attributes are typed and undeclared keys dropped
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "JSON.GET shop:product:4", rec.Calls()[0].Line())
	assert.Equal(t, int64(4), p.ID())
	assert.True(t, Int(30).Equal(p.Get("price")))
	assert.NotContains(t, p.Map(), "legacy")
	assert.True(t, p.Exists())

	// When: it does not
	missing, err := repo.FindByID(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_FindByIDMalformed(t *testing.T) {
	repo, rec := newProductRepo(t, false)
	rec.On("JSON.GET", `{"id":`, nil)

	_, err := repo.FindByID(context.Background(), 1)

	assert.Equal(t, errors.ErrCodeDecodeFailed, errors.GetCode(err))
}

func TestRepository_QueryHelpers(t *testing.T) {
	repo, rec := newProductRepo(t, false)
	ctx := context.Background()
	reply := []any{
		int64(2),
		"shop:product:1", []any{"$", `{"id":1,"title":"A","status":"live"}`},
		"shop:product:2", []any{"$", `{"id":2,"title":"B","status":"live"}`},
	}
	rec.On("FT.SEARCH", reply, nil)
	rec.On("FT.SEARCH", reply, nil)
	rec.On("FT.SEARCH", []any{int64(2)}, nil)

	all, err := repo.All(ctx, repo.Query().Where("status", query.Eq, "live"))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "FT.SEARCH shop-product-idx @status:{live} LIMIT 0 1000000", rec.Calls()[0].Line())
	assert.True(t, Str("B").Equal(all[1].Get("title")))

	first, err := repo.First(ctx, repo.Query())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID())

	n, err := repo.Count(ctx, repo.Query().Where("price", query.Gt, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "FT.SEARCH shop-product-idx @price:[(10 +inf] LIMIT 0 0", rec.Last().Line())
}

func TestRepository_Paginate(t *testing.T) {
	repo, rec := newProductRepo(t, false)
	rec.On("FT.SEARCH", []any{int64(3)}, nil)
	rec.On("FT.SEARCH", []any{
		int64(3),
		"shop:product:3", []any{"price", "9", "$", `{"id":3}`},
	}, nil)

	page, err := repo.Paginate(context.Background(),
		repo.Query().SortBy("price", query.Asc), 2, query.StaticPage{Page: 2, Path: "/products"})

	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.LastPage)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(3), page.Items[0].ID())
	assert.Equal(t, "/products?page=1", page.PrevURL)
	assert.Empty(t, page.NextURL)
}

func TestRepository_RecreateIndex(t *testing.T) {
	repo, rec := newProductRepo(t, false)

	require.NoError(t, repo.RecreateIndex(context.Background()))

	assert.Equal(t, []string{
		"FT.DROPINDEX shop-product-idx",
		"FT.CREATE shop-product-idx ON JSON PREFIX 1 shop:product: SCHEMA " +
			"$.title as title TEXT $.status as status TAG $.price as price NUMERIC",
	}, rec.Lines())
}

func TestRepository_RejectsForeignRecord(t *testing.T) {
	repo, _ := newProductRepo(t, false)
	other, err := NewModel("Other", "shop", schema.MustSchema())
	require.NoError(t, err)

	err = repo.Save(context.Background(), NewRecord(other))
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestRecord_SetAndMarshal(t *testing.T) {
	repo, _ := newProductRepo(t, true)
	r := repo.New()

	require.NoError(t, r.Fill(map[string]any{"title": "Lamp", "price": 1.5}))
	require.NoError(t, r.Set(CreatedAt, 10))
	assert.Error(t, r.Set("price", "cheap"))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Lamp","status":"draft","price":1.5,"notes":null,"created_at":10}`, string(data))

	attrs := r.Attributes()
	attrs["title"] = Str("changed")
	assert.True(t, Str("Lamp").Equal(r.Get("title")))
}
