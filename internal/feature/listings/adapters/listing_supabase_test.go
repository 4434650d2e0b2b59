package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umarket/internal/feature/listings/domain"
	"umarket/internal/feature/listings/domain/entity"
	"umarket/internal/platform/supabase"
)

type call struct {
	op    string
	table string
	query map[string]string
	body  any
}

// fakeClient は呼び出しを記録し、select の結果を selectRows から返します。
type fakeClient struct {
	calls      []call
	selectRows func(table string, q map[string]string) []supabase.Row
	insertRows []supabase.Row
	updateRows []supabase.Row
	err        error
}

func flatten(q *supabase.Query) map[string]string {
	out := map[string]string{}
	for k, v := range q.Values() {
		out[k] = v[0]
	}
	return out
}

func (f *fakeClient) Tables() supabase.Tables { return supabase.DefaultTables() }

func (f *fakeClient) Select(ctx context.Context, table string, q *supabase.Query) ([]supabase.Row, error) {
	f.calls = append(f.calls, call{op: "select", table: table, query: flatten(q)})
	if f.err != nil {
		return nil, f.err
	}
	if f.selectRows == nil {
		return nil, nil
	}
	return f.selectRows(table, flatten(q)), nil
}

func (f *fakeClient) Insert(ctx context.Context, table string, row any, q *supabase.Query) ([]supabase.Row, error) {
	f.calls = append(f.calls, call{op: "insert", table: table, query: flatten(q), body: row})
	return f.insertRows, f.err
}

func (f *fakeClient) Upsert(ctx context.Context, table, onConflict string, row any) ([]supabase.Row, error) {
	f.calls = append(f.calls, call{op: "upsert", table: table, query: map[string]string{"on_conflict": onConflict}, body: row})
	return nil, f.err
}

func (f *fakeClient) Update(ctx context.Context, table string, q *supabase.Query, patch any) ([]supabase.Row, error) {
	f.calls = append(f.calls, call{op: "update", table: table, query: flatten(q), body: patch})
	return f.updateRows, f.err
}

func (f *fakeClient) Delete(ctx context.Context, table string, q *supabase.Query) error {
	f.calls = append(f.calls, call{op: "delete", table: table, query: flatten(q)})
	return f.err
}

func (f *fakeClient) ops() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.op+" "+c.table)
	}
	return out
}

func TestListingSupabase_List_Filters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/Product", r.URL.Path)
		assert.Equal(t, "eq.s1", r.URL.Query().Get("seller_id"))
		assert.Equal(t, "eq.true", r.URL.Query().Get("sold"))
		_, _ = w.Write([]byte(`[{"prod_id":"p1","seller_id":"s1","name":"Rug","price":"20","quantity":0,"sold":true,"category":"decor",
			"Decor":[{"decor_id":"p1","type":"rugs","color":"red","used":"true"}]}]`))
	}))
	defer srv.Close()

	client := supabase.NewClient(supabase.Config{URL: srv.URL, APIKey: "k", Tables: supabase.DefaultTables()}, srv.Client())
	repo := NewListingSupabaseRepository(client)

	seller, sold := "s1", true
	got, err := repo.List(context.Background(), entity.ListingFilter{SellerID: &seller, Sold: &sold})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	require.NotNil(t, got[0].Details)
	assert.Equal(t, "RUGS", got[0].Details.Type)
	assert.True(t, got[0].Details.Used)
}

func TestListingSupabase_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	f := &fakeClient{}
	repo := NewListingSupabaseRepository(f)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
	assert.Equal(t, "eq.missing", f.calls[0].query["prod_id"])
}

func TestListingSupabase_Create_SyncsDetails(t *testing.T) {
	t.Parallel()

	f := &fakeClient{
		insertRows: []supabase.Row{{"prod_id": "p9", "seller_id": "s1", "category": "clothing"}},
		selectRows: func(table string, q map[string]string) []supabase.Row {
			return []supabase.Row{{"prod_id": "p9", "seller_id": "s1", "category": "clothing",
				"Clothing": map[string]any{"gender": "MENS", "size": "M", "type": "TOPS", "color": "RED"}}}
		},
	}
	repo := NewListingSupabaseRepository(f)

	in := &entity.Listing{
		SellerID: "s1", Name: "Tee", Price: 5, Quantity: 1, Category: entity.CategoryClothing,
		Details: &entity.Details{Category: entity.CategoryClothing, Gender: "MENS", Size: "M", Type: "TOPS", Color: "RED"},
	}
	got, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "p9", got.ID)
	require.NotNil(t, got.Details)

	assert.Equal(t, []string{
		"insert Product",
		"upsert Clothing",
		"delete Decor",
		"delete Tickets",
		"select Product",
	}, f.ops())
	assert.Equal(t, "clothing_id", f.calls[1].query["on_conflict"])
	payload := f.calls[1].body.(supabase.Row)
	assert.Equal(t, "p9", payload["clothing_id"])
	assert.Equal(t, "MENS", payload["gender"])
	assert.Equal(t, "eq.p9", f.calls[2].query["decor_id"])
}

func TestListingSupabase_Create_NoSideTable(t *testing.T) {
	t.Parallel()

	f := &fakeClient{insertRows: []supabase.Row{{"prod_id": "p3", "category": "miscellaneous"}}}
	repo := NewListingSupabaseRepository(f)

	got, err := repo.Create(context.Background(), &entity.Listing{Name: "Thing", Price: 1, Category: entity.CategoryMiscellaneous})
	require.NoError(t, err)
	assert.Equal(t, "p3", got.ID)
	assert.Equal(t, []string{"insert Product"}, f.ops())
}

func TestListingSupabase_Update(t *testing.T) {
	t.Parallel()

	name := "New name"
	cat := entity.CategoryTickets
	f := &fakeClient{
		updateRows: []supabase.Row{{"prod_id": "p1", "category": "tickets"}},
		selectRows: func(table string, q map[string]string) []supabase.Row {
			return []supabase.Row{{"prod_id": "p1", "name": "New name", "category": "tickets"}}
		},
	}
	repo := NewListingSupabaseRepository(f)

	got, err := repo.Update(context.Background(), "p1", entity.ListingChanges{
		Name:        &name,
		Description: entity.DescriptionChange{Set: true},
		Category:    &cat,
		SyncDetails: true,
		Details:     &entity.Details{Category: entity.CategoryTickets, Type: "SPORT"},
	})
	require.NoError(t, err)
	assert.Equal(t, "New name", got.Name)

	assert.Equal(t, []string{
		"update Product",
		"delete Clothing",
		"delete Decor",
		"upsert Tickets",
		"select Product",
	}, f.ops())
	patch := f.calls[0].body.(supabase.Row)
	assert.Equal(t, "New name", patch["name"])
	assert.Contains(t, patch, "description")
	assert.Nil(t, patch["description"])
	assert.Equal(t, "tickets", patch["category"])
}

func TestListingSupabase_Update_DetailsOnlyLooksUpCategory(t *testing.T) {
	t.Parallel()

	f := &fakeClient{
		selectRows: func(table string, q map[string]string) []supabase.Row {
			return []supabase.Row{{"prod_id": "p1", "category": "decor"}}
		},
	}
	repo := NewListingSupabaseRepository(f)

	_, err := repo.Update(context.Background(), "p1", entity.ListingChanges{
		SyncDetails: true,
		Details:     &entity.Details{Category: entity.CategoryDecor, Type: "LAMPS", Color: "RED"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"select Product",
		"delete Clothing",
		"upsert Decor",
		"delete Tickets",
		"select Product",
	}, f.ops())
}

func TestListingSupabase_Delete(t *testing.T) {
	t.Parallel()

	f := &fakeClient{}
	repo := NewListingSupabaseRepository(f)

	require.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.Equal(t, []string{"delete Clothing", "delete Decor", "delete Tickets", "delete Product"}, f.ops())
	assert.Equal(t, "eq.p1", f.calls[3].query["prod_id"])
}

func TestListingSupabase_PropagatesErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	repo := NewListingSupabaseRepository(&fakeClient{err: boom})

	_, err := repo.List(context.Background(), entity.ListingFilter{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, repo.Delete(context.Background(), "p1"), boom)
}
