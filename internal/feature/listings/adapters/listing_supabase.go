package adapters

import (
	"context"
	"fmt"

	"umarket/internal/feature/listings/domain"
	"umarket/internal/feature/listings/domain/entity"
	"umarket/internal/feature/listings/usecase"
	"umarket/internal/platform/supabase"
)

// SupabaseClient is the subset of the Supabase client the listing store needs.
type SupabaseClient interface {
	Tables() supabase.Tables
	Select(ctx context.Context, table string, q *supabase.Query) ([]supabase.Row, error)
	Insert(ctx context.Context, table string, row any, q *supabase.Query) ([]supabase.Row, error)
	Upsert(ctx context.Context, table, onConflict string, row any) ([]supabase.Row, error)
	Update(ctx context.Context, table string, q *supabase.Query, patch any) ([]supabase.Row, error)
	Delete(ctx context.Context, table string, q *supabase.Query) error
}

type listingSupabase struct {
	client SupabaseClient
	tables supabase.Tables
}

var _ usecase.ListingRepository = (*listingSupabase)(nil)

// NewListingSupabaseRepository は Product テーブルと詳細テーブルを PostgREST 経由で扱う
// ListingRepository を生成します。
func NewListingSupabaseRepository(c SupabaseClient) *listingSupabase {
	return &listingSupabase{client: c, tables: c.Tables()}
}

func (r *listingSupabase) List(ctx context.Context, filter entity.ListingFilter) ([]entity.Listing, error) {
	q := supabase.NewQuery().
		Select(r.tables.ListingSelect()).
		Eq("seller_id", filter.SellerID).
		Eq("sold", filter.Sold)
	rows, err := r.client.Select(ctx, r.tables.Products, q)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	out := make([]entity.Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, ListingFromRow(r.tables, row))
	}
	return out, nil
}

func (r *listingSupabase) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	q := supabase.NewQuery().
		Select(r.tables.ListingSelect()).
		Eq(r.tables.ProductIDField, id)
	rows, err := r.client.Select(ctx, r.tables.Products, q)
	if err != nil {
		return nil, fmt.Errorf("get listing %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrListingNotFound
	}
	l := ListingFromRow(r.tables, rows[0])
	return &l, nil
}

func (r *listingSupabase) Create(ctx context.Context, listing *entity.Listing) (*entity.Listing, error) {
	row := supabase.Row{
		"seller_id":   listing.SellerID,
		"name":        listing.Name,
		"description": listing.Description,
		"price":       listing.Price,
		"quantity":    listing.Quantity,
		"sold":        listing.Sold,
		"category":    string(listing.Category),
	}
	rows, err := r.client.Insert(ctx, r.tables.Products, row, nil)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create listing: empty response")
	}
	created := ListingFromRow(r.tables, rows[0])
	if created.ID == "" || (listing.Details == nil && !created.Category.RequiresDetails()) {
		return &created, nil
	}

	if err := r.syncDetails(ctx, created.ID, created.Category, listing.Details); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, created.ID)
}

func (r *listingSupabase) Update(ctx context.Context, id string, changes entity.ListingChanges) (*entity.Listing, error) {
	var current *entity.Listing
	if changes.HasFieldChanges() {
		rows, err := r.client.Update(ctx, r.tables.Products, supabase.NewQuery().Eq(r.tables.ProductIDField, id), patchRow(changes))
		if err != nil {
			return nil, fmt.Errorf("update listing %s: %w", id, err)
		}
		if len(rows) == 0 {
			return nil, domain.ErrListingNotFound
		}
		l := ListingFromRow(r.tables, rows[0])
		current = &l
	}

	if changes.SyncDetails {
		var category entity.Category
		switch {
		case changes.Category != nil:
			category = *changes.Category
		case current != nil:
			category = current.Category
		default:
			existing, err := r.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			category = existing.Category
		}
		if err := r.syncDetails(ctx, id, category, changes.Details); err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

func (r *listingSupabase) Delete(ctx context.Context, id string) error {
	for _, st := range sideTables(r.tables) {
		if err := r.client.Delete(ctx, st.table, supabase.NewQuery().Eq(st.idField, id)); err != nil {
			return fmt.Errorf("delete %s details for %s: %w", st.category, id, err)
		}
	}
	if err := r.client.Delete(ctx, r.tables.Products, supabase.NewQuery().Eq(r.tables.ProductIDField, id)); err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	return nil
}

// syncDetails は category の詳細テーブルに details を書き込み、それ以外の詳細テーブルから
// listingID の行を削除します。details が nil ならすべて削除します。
func (r *listingSupabase) syncDetails(ctx context.Context, listingID string, category entity.Category, details *entity.Details) error {
	for _, st := range sideTables(r.tables) {
		if st.category == category && details != nil {
			if _, err := r.client.Upsert(ctx, st.table, st.idField, st.payload(listingID, st.idField, details)); err != nil {
				return fmt.Errorf("upsert %s details for %s: %w", st.category, listingID, err)
			}
			continue
		}
		if err := r.client.Delete(ctx, st.table, supabase.NewQuery().Eq(st.idField, listingID)); err != nil {
			return fmt.Errorf("clear %s details for %s: %w", st.category, listingID, err)
		}
	}
	return nil
}

func patchRow(c entity.ListingChanges) supabase.Row {
	row := supabase.Row{}
	if c.Name != nil {
		row["name"] = *c.Name
	}
	if c.Description.Set {
		row["description"] = c.Description.Value
	}
	if c.Price != nil {
		row["price"] = *c.Price
	}
	if c.Quantity != nil {
		row["quantity"] = *c.Quantity
	}
	if c.Sold != nil {
		row["sold"] = *c.Sold
	}
	if c.Category != nil {
		row["category"] = string(*c.Category)
	}
	return row
}
