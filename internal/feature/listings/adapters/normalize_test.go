package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umarket/internal/feature/listings/domain/entity"
	"umarket/internal/platform/supabase"
)

func TestListingFromRow_CoercesScalars(t *testing.T) {
	t.Parallel()

	row := supabase.Row{
		"prod_id":     "p1",
		"seller_id":   "s1",
		"name":        "Desk lamp",
		"description": float64(42),
		"price":       "12.50",
		"quantity":    "3",
		"sold":        false,
		"created_at":  "2025-01-02T03:04:05+00:00",
	}

	l := ListingFromRow(supabase.DefaultTables(), row)
	assert.Equal(t, "p1", l.ID)
	assert.Equal(t, "s1", l.SellerID)
	assert.InDelta(t, 12.5, l.Price, 1e-9)
	assert.Equal(t, 3, l.Quantity)
	require.NotNil(t, l.Description)
	assert.Equal(t, "42", *l.Description)
	assert.Equal(t, entity.CategoryMiscellaneous, l.Category)
	assert.Nil(t, l.Details)
	assert.Equal(t, 2025, l.CreatedAt.Year())
}

func TestListingFromRow_FallsBackToID(t *testing.T) {
	t.Parallel()

	l := ListingFromRow(supabase.DefaultTables(), supabase.Row{"id": float64(7), "category": "decor"})
	assert.Equal(t, "7", l.ID)
	assert.Equal(t, entity.CategoryDecor, l.Category)
}

func TestListingFromRow_Details(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  supabase.Row
		want *entity.Details
	}{
		{
			name: "clothing object, lower-case enums",
			row: supabase.Row{
				"category": "clothing",
				"Clothing": map[string]any{
					"clothing_id": "p1", "gender": "mens", "size": "us_9.5", "type": "shoes", "color": "black", "used": "1",
				},
			},
			want: &entity.Details{
				Category: entity.CategoryClothing, Gender: "MENS", Size: "US_9.5", Type: "SHOES", Color: "BLACK", Used: true,
			},
		},
		{
			name: "decor array, string dimensions",
			row: supabase.Row{
				"category": "decor",
				"Clothing": []any{},
				"Decor": []any{map[string]any{
					"decor_id": "p1", "type": "lamps", "color": "white", "used": nil,
					"length": "12", "width": "wide", "height": float64(30),
				}},
			},
			want: &entity.Details{
				Category: entity.CategoryDecor, Type: "LAMPS", Color: "WHITE", Used: false,
				Length: intPtr(12), Height: intPtr(30),
			},
		},
		{
			name: "tickets",
			row: supabase.Row{
				"category": "tickets",
				"Clothing": nil,
				"Decor":    map[string]any{},
				"Tickets":  []any{map[string]any{"tickets_id": "p1", "type": "sport"}},
			},
			want: &entity.Details{Category: entity.CategoryTickets, Type: "SPORT"},
		},
		{
			name: "no details",
			row:  supabase.Row{"category": "school-supplies", "Clothing": []any{}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := ListingFromRow(supabase.DefaultTables(), tt.row)
			assert.Equal(t, tt.want, l.Details)
		})
	}
}

func TestSideTables_SkipsUnconfigured(t *testing.T) {
	t.Parallel()

	tb := supabase.DefaultTables()
	tb.Decor = ""
	got := sideTables(tb)
	require.Len(t, got, 2)
	assert.Equal(t, entity.CategoryClothing, got[0].category)
	assert.Equal(t, entity.CategoryTickets, got[1].category)
}

func intPtr(n int) *int { return &n }
