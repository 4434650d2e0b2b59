package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	listingadapters "umarket/internal/feature/listings/adapters"
	listingdomain "umarket/internal/feature/listings/domain"
	"umarket/internal/feature/orders/domain"
	"umarket/internal/feature/orders/domain/entity"
	"umarket/internal/feature/orders/usecase"
	"umarket/internal/platform/supabase"
	"umarket/internal/shared/coerce"
)

// listingColumn は Transactions から Product を参照する外部キー列です。
const listingColumn = "prod_id"

// SupabaseClient is the subset of the Supabase client the order store needs.
type SupabaseClient interface {
	Tables() supabase.Tables
	Select(ctx context.Context, table string, q *supabase.Query) ([]supabase.Row, error)
	Insert(ctx context.Context, table string, row any, q *supabase.Query) ([]supabase.Row, error)
	Update(ctx context.Context, table string, q *supabase.Query, patch any) ([]supabase.Row, error)
}

type orderSupabase struct {
	client SupabaseClient
	tables supabase.Tables
}

var _ usecase.OrderRepository = (*orderSupabase)(nil)

// NewOrderSupabaseRepository は Transactions テーブルを PostgREST 経由で扱う OrderRepository を生成します。
// 注文には常に product（詳細テーブルを含む）を埋め込みます。
func NewOrderSupabaseRepository(c SupabaseClient) *orderSupabase {
	return &orderSupabase{client: c, tables: c.Tables()}
}

func (r *orderSupabase) List(ctx context.Context, filter entity.OrderFilter) ([]entity.Order, error) {
	q := supabase.NewQuery()
	switch {
	case filter.SellerID != nil:
		// 埋め込み先の列で絞り込むため inner join にする
		q.Select(r.tables.OrderSelect(true)).Eq("product.seller_id", filter.SellerID)
	default:
		q.Select(r.tables.OrderSelect(false)).Eq("buyer_id", filter.BuyerID)
	}
	rows, err := r.client.Select(ctx, r.tables.Transactions, q)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]entity.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, OrderFromRow(r.tables, row))
	}
	return out, nil
}

func (r *orderSupabase) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	q := supabase.NewQuery().
		Select(r.tables.OrderSelect(false)).
		Eq(r.tables.TransactionIDField, id)
	rows, err := r.client.Select(ctx, r.tables.Transactions, q)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrOrderNotFound
	}
	o := OrderFromRow(r.tables, rows[0])
	return &o, nil
}

func (r *orderSupabase) Create(ctx context.Context, in entity.NewOrder) (*entity.Order, error) {
	row := supabase.Row{
		listingColumn: in.ListingID,
		"buyer_id":    in.BuyerID,
	}
	if in.PaymentMethod != nil {
		row["payment_method"] = string(*in.PaymentMethod)
	}
	rows, err := r.client.Insert(ctx, r.tables.Transactions, row, supabase.NewQuery().Select(r.tables.OrderSelect(false)))
	if err != nil {
		var apiErr *supabase.APIError
		// 23503: foreign_key_violation
		if errors.As(err, &apiErr) && apiErr.Code == "23503" {
			return nil, listingdomain.ErrListingNotFound
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create order: empty response")
	}
	o := OrderFromRow(r.tables, rows[0])
	return &o, nil
}

func (r *orderSupabase) Update(ctx context.Context, id string, changes entity.OrderChanges) (*entity.Order, error) {
	q := supabase.NewQuery().
		Select(r.tables.OrderSelect(false)).
		Eq(r.tables.TransactionIDField, id)
	rows, err := r.client.Update(ctx, r.tables.Transactions, q, orderPatch(changes))
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrOrderNotFound
	}
	o := OrderFromRow(r.tables, rows[0])
	return &o, nil
}

// OrderFromRow は Transactions 行（埋め込み product を含む）を Order に変換します。
// seller_id 列が無い場合は product の seller_id で補います。
func OrderFromRow(t supabase.Tables, row supabase.Row) entity.Order {
	var o entity.Order
	for _, key := range []string{t.TransactionIDField, "id"} {
		if id, ok := coerce.String(row[key]); ok && id != "" {
			o.ID = id
			break
		}
	}
	o.ListingID, _ = coerce.String(row[listingColumn])
	o.BuyerID, _ = coerce.String(row["buyer_id"])
	o.SellerID, _ = coerce.String(row["seller_id"])
	if pm, ok := coerce.Upper(row["payment_method"]); ok && pm != "" {
		method := entity.PaymentMethod(pm)
		o.PaymentMethod = &method
	}
	o.CreatedAt = coerce.TimePtr(row["created_at"])

	if p, ok := row["product"].(map[string]any); ok && len(p) > 0 {
		l := listingadapters.ListingFromRow(t, p)
		o.Product = &l
		if o.ListingID == "" {
			o.ListingID = l.ID
		}
	}
	if o.SellerID == "" && o.Product != nil {
		o.SellerID = o.Product.SellerID
	}

	o.BuyerConfirmed = coerce.Bool(row["buyer_confirmed"], "true", "t", "1")
	o.SellerConfirmed = coerce.Bool(row["seller_confirmed"], "true", "t", "1")
	o.BuyerConfirmedAt = coerce.TimePtr(row["buyer_confirmed_at"])
	o.SellerConfirmedAt = coerce.TimePtr(row["seller_confirmed_at"])
	o.BuyerConfirmationNotes = coerce.StringPtr(row["buyer_confirmation_notes"])
	o.SellerConfirmationNotes = coerce.StringPtr(row["seller_confirmation_notes"])
	o.Status = entity.DeriveStatus(o.BuyerConfirmed, o.SellerConfirmed)
	return o
}

func orderPatch(c entity.OrderChanges) supabase.Row {
	row := supabase.Row{}
	if c.PaymentMethod.Set {
		if c.PaymentMethod.Value != nil {
			row["payment_method"] = string(*c.PaymentMethod.Value)
		} else {
			row["payment_method"] = nil
		}
	}
	if c.BuyerConfirmation != nil {
		row["buyer_confirmed"] = true
		row["buyer_confirmed_at"] = c.BuyerConfirmation.At.Format(time.RFC3339Nano)
		if c.BuyerConfirmation.Notes != nil {
			row["buyer_confirmation_notes"] = *c.BuyerConfirmation.Notes
		}
	}
	if c.SellerConfirmation != nil {
		row["seller_confirmed"] = true
		row["seller_confirmed_at"] = c.SellerConfirmation.At.Format(time.RFC3339Nano)
		if c.SellerConfirmation.Notes != nil {
			row["seller_confirmation_notes"] = *c.SellerConfirmation.Notes
		}
	}
	return row
}
