package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	listingdomain "umarket/internal/feature/listings/domain"
	listing "umarket/internal/feature/listings/domain/entity"
	"umarket/internal/feature/orders/domain"
	"umarket/internal/feature/orders/domain/entity"
	"umarket/internal/platform/supabase"
)

type call struct {
	op    string
	table string
	query map[string]string
	body  any
}

// fakeClient は呼び出しを記録し、rows をそのまま返します。
type fakeClient struct {
	calls []call
	rows  []supabase.Row
	err   error
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
	return f.rows, f.err
}

func (f *fakeClient) Insert(ctx context.Context, table string, row any, q *supabase.Query) ([]supabase.Row, error) {
	f.calls = append(f.calls, call{op: "insert", table: table, query: flatten(q), body: row})
	return f.rows, f.err
}

func (f *fakeClient) Update(ctx context.Context, table string, q *supabase.Query, patch any) ([]supabase.Row, error) {
	f.calls = append(f.calls, call{op: "update", table: table, query: flatten(q), body: patch})
	return f.rows, f.err
}

func orderRow() supabase.Row {
	return supabase.Row{
		"id":               "o1",
		"prod_id":          "p1",
		"buyer_id":         "b1",
		"payment_method":   "cash",
		"created_at":       "2024-03-01T10:00:00+00:00",
		"buyer_confirmed":  "t",
		"seller_confirmed": false,
		"product": map[string]any{
			"prod_id":   "p1",
			"seller_id": "s1",
			"name":      "Desk lamp",
			"price":     "12.5",
			"quantity":  0,
			"sold":      true,
			"category":  "decor",
			"Decor":     []any{map[string]any{"decor_id": "p1", "type": "lamps", "color": "white", "used": "true"}},
		},
	}
}

func TestOrderFromRow(t *testing.T) {
	t.Parallel()

	o := OrderFromRow(supabase.DefaultTables(), orderRow())

	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, "p1", o.ListingID)
	assert.Equal(t, "s1", o.SellerID, "seller_id falls back to the product")
	require.NotNil(t, o.PaymentMethod)
	assert.Equal(t, entity.PaymentCash, *o.PaymentMethod)
	require.NotNil(t, o.CreatedAt)
	assert.Equal(t, 2024, o.CreatedAt.Year())
	assert.True(t, o.BuyerConfirmed)
	assert.False(t, o.SellerConfirmed)
	assert.Equal(t, entity.StatusBuyerConfirmed, o.Status)

	require.NotNil(t, o.Product)
	assert.Equal(t, 12.5, o.Product.Price)
	require.NotNil(t, o.Product.Details)
	assert.Equal(t, listing.CategoryDecor, o.Product.Details.Category)
	assert.Equal(t, "LAMPS", o.Product.Details.Type)
}

func TestOrderFromRow_NoProduct(t *testing.T) {
	t.Parallel()

	o := OrderFromRow(supabase.DefaultTables(), supabase.Row{"id": "o1", "prod_id": "p1", "buyer_id": "b1", "seller_id": "s9"})
	assert.Nil(t, o.Product)
	assert.Nil(t, o.PaymentMethod)
	assert.Equal(t, "s9", o.SellerID)
	assert.Equal(t, entity.StatusPendingMeetup, o.Status)
}

func TestOrderSupabase_List(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		filter     entity.OrderFilter
		wantKey    string
		wantSelect string
	}{
		{
			name:       "buyer",
			filter:     entity.OrderFilter{BuyerID: ptr("b1")},
			wantKey:    "buyer_id",
			wantSelect: "*,product:Product!Transactions_prod_id_fkey(*,Clothing(*),Decor(*),Tickets(*))",
		},
		{
			name:       "seller uses inner join",
			filter:     entity.OrderFilter{SellerID: ptr("b1")},
			wantKey:    "product.seller_id",
			wantSelect: "*,product:Product!Transactions_prod_id_fkey!inner(*,Clothing(*),Decor(*),Tickets(*))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fc := &fakeClient{rows: []supabase.Row{orderRow()}}
			repo := NewOrderSupabaseRepository(fc)

			out, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, out, 1)
			require.Len(t, fc.calls, 1)
			assert.Equal(t, "Transactions", fc.calls[0].table)
			assert.Equal(t, "eq.b1", fc.calls[0].query[tt.wantKey])
			assert.Equal(t, tt.wantSelect, fc.calls[0].query["select"])
		})
	}
}

func TestOrderSupabase_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewOrderSupabaseRepository(&fakeClient{})
	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderSupabase_Create(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{rows: []supabase.Row{orderRow()}}
	repo := NewOrderSupabaseRepository(fc)

	o, err := repo.Create(context.Background(), entity.NewOrder{ListingID: "p1", BuyerID: "b1", PaymentMethod: ptr(entity.PaymentStripe)})
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	require.Len(t, fc.calls, 1)
	assert.Equal(t, supabase.Row{"prod_id": "p1", "buyer_id": "b1", "payment_method": "STRIPE"}, fc.calls[0].body)
}

func TestOrderSupabase_Create_MissingListing(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{err: &supabase.APIError{Status: 409, Code: "23503", Message: "violates foreign key constraint"}}
	_, err := NewOrderSupabaseRepository(fc).Create(context.Background(), entity.NewOrder{ListingID: "nope", BuyerID: "b1"})
	assert.ErrorIs(t, err, listingdomain.ErrListingNotFound)
}

func TestOrderSupabase_Update(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{rows: []supabase.Row{orderRow()}}
	repo := NewOrderSupabaseRepository(fc)
	at := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	_, err := repo.Update(context.Background(), "o1", entity.OrderChanges{
		SellerConfirmation: &entity.Confirmation{At: at, Notes: ptr("paid in cash")},
	})
	require.NoError(t, err)
	require.Len(t, fc.calls, 1)
	assert.Equal(t, "eq.o1", fc.calls[0].query["id"])
	assert.Equal(t, supabase.Row{
		"seller_confirmed":          true,
		"seller_confirmed_at":       "2024-03-02T12:00:00Z",
		"seller_confirmation_notes": "paid in cash",
	}, fc.calls[0].body)

	_, err = repo.Update(context.Background(), "o1", entity.OrderChanges{
		PaymentMethod: entity.PaymentMethodChange{Set: true},
	})
	require.NoError(t, err)
	require.Len(t, fc.calls, 2)
	assert.Equal(t, supabase.Row{"payment_method": nil}, fc.calls[1].body)

	fc.rows = nil
	_, err = repo.Update(context.Background(), "o1", entity.OrderChanges{
		PaymentMethod: entity.PaymentMethodChange{Set: true, Value: ptr(entity.PaymentCash)},
	})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func ptr[T any](v T) *T { return &v }
