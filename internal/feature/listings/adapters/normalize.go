package adapters

import (
	"umarket/internal/feature/listings/domain/entity"
	"umarket/internal/platform/supabase"
	"umarket/internal/shared/coerce"
)

// sideTable はカテゴリ別の詳細テーブル（Clothing / Decor / Tickets）の定義です。
type sideTable struct {
	category  entity.Category
	table     string
	idField   string
	normalize func(supabase.Row) *entity.Details
	payload   func(listingID string, idField string, d *entity.Details) supabase.Row
}

func sideTables(t supabase.Tables) []sideTable {
	all := []sideTable{
		{entity.CategoryClothing, t.Clothing, t.ClothingIDField, normalizeClothing, clothingPayload},
		{entity.CategoryDecor, t.Decor, t.DecorIDField, normalizeDecor, decorPayload},
		{entity.CategoryTickets, t.Tickets, t.TicketsIDField, normalizeTickets, ticketsPayload},
	}
	out := all[:0]
	for _, st := range all {
		if st.table == "" || st.idField == "" {
			continue
		}
		out = append(out, st)
	}
	return out
}

// ListingFromRow はPostgRESTのProduct行（詳細テーブルの埋め込みを含む）を Listing に変換します。
//
// 文字列で返る数値は数値に変換し、カテゴリが空なら miscellaneous とします。
// 埋め込まれた詳細のうち最初の空でないものを Details とします。
func ListingFromRow(t supabase.Tables, row supabase.Row) entity.Listing {
	var l entity.Listing
	if id, ok := coerce.String(row[t.ProductIDField]); ok && id != "" {
		l.ID = id
	} else {
		l.ID, _ = coerce.String(row["id"])
	}
	l.SellerID, _ = coerce.String(row["seller_id"])
	l.Name, _ = coerce.String(row["name"])
	l.Description = coerce.StringPtr(row["description"])
	l.Price, _ = coerce.Float(row["price"])
	l.Quantity, _ = coerce.Int(row["quantity"])
	l.Sold = coerce.Bool(row["sold"], "true", "t", "1")
	l.CreatedAt, _ = coerce.Time(row["created_at"])

	category, _ := coerce.String(row["category"])
	if category == "" {
		category = string(entity.CategoryMiscellaneous)
	}
	l.Category = entity.Category(category)

	for _, st := range sideTables(t) {
		raw := firstRecord(row[st.table])
		if raw == nil {
			continue
		}
		d := st.normalize(raw)
		l.Details = d
		break
	}
	return l
}

// firstRecord は埋め込みがオブジェクトでも配列でも最初の空でないレコードを返します。
func firstRecord(v any) supabase.Row {
	switch x := v.(type) {
	case map[string]any:
		if len(x) == 0 {
			return nil
		}
		return x
	case []any:
		if len(x) == 0 {
			return nil
		}
		return firstRecord(x[0])
	}
	return nil
}

func upper(v any) string {
	s, _ := coerce.Upper(v)
	return s
}

func normalizeClothing(r supabase.Row) *entity.Details {
	return &entity.Details{
		Category: entity.CategoryClothing,
		Gender:   upper(r["gender"]),
		Size:     upper(r["size"]),
		Type:     upper(r["type"]),
		Color:    entity.Color(upper(r["color"])),
		Used:     coerce.Bool(r["used"], "true", "1"),
	}
}

func normalizeDecor(r supabase.Row) *entity.Details {
	return &entity.Details{
		Category: entity.CategoryDecor,
		Type:     upper(r["type"]),
		Color:    entity.Color(upper(r["color"])),
		Used:     coerce.Bool(r["used"], "true", "1"),
		Length:   coerce.IntPtr(r["length"]),
		Width:    coerce.IntPtr(r["width"]),
		Height:   coerce.IntPtr(r["height"]),
	}
}

func normalizeTickets(r supabase.Row) *entity.Details {
	return &entity.Details{
		Category: entity.CategoryTickets,
		Type:     upper(r["type"]),
	}
}

func clothingPayload(id, idField string, d *entity.Details) supabase.Row {
	return supabase.Row{
		idField:  id,
		"gender": d.Gender,
		"size":   d.Size,
		"type":   d.Type,
		"color":  string(d.Color),
		"used":   d.Used,
	}
}

func decorPayload(id, idField string, d *entity.Details) supabase.Row {
	return supabase.Row{
		idField:  id,
		"type":   d.Type,
		"color":  string(d.Color),
		"used":   d.Used,
		"length": d.Length,
		"width":  d.Width,
		"height": d.Height,
	}
}

func ticketsPayload(id, idField string, d *entity.Details) supabase.Row {
	return supabase.Row{
		idField: id,
		"type":  d.Type,
	}
}
