// Package dto はlistingsフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"fmt"
	"slices"
	"time"

	"umarket/internal/api"
	"umarket/internal/feature/listings/domain/entity"
)

// DetailsReq はカテゴリ別の詳細です。category で判別されます。
type DetailsReq struct {
	Category string  `json:"category" binding:"required,category"`
	Type     *string `json:"type"`
	Gender   string  `json:"gender"`
	Size     string  `json:"size"`
	Color    string  `json:"color"`
	Used     bool    `json:"used"`
	Length   *int    `json:"length" binding:"omitempty,gte=0"`
	Width    *int    `json:"width" binding:"omitempty,gte=0"`
	Height   *int    `json:"height" binding:"omitempty,gte=0"`
}

// ToEntity はカテゴリごとの必須項目と列挙値を検証して Details に変換します。
func (d *DetailsReq) ToEntity() (*entity.Details, error) {
	if d == nil {
		return nil, nil
	}
	out := &entity.Details{Category: entity.Category(d.Category)}
	typ := ""
	if d.Type != nil {
		typ = *d.Type
	}

	switch out.Category {
	case entity.CategoryClothing:
		if err := oneOf("details.gender", d.Gender, entity.ClothingGenders); err != nil {
			return nil, err
		}
		if err := oneOf("details.size", d.Size, entity.ClothingSizes); err != nil {
			return nil, err
		}
		if err := oneOf("details.type", typ, entity.ClothingTypes); err != nil {
			return nil, err
		}
		out.Gender, out.Size, out.Type, out.Used = d.Gender, d.Size, typ, d.Used
		out.Color = entity.Color(d.Color)
	case entity.CategoryDecor:
		if err := oneOf("details.type", typ, entity.DecorTypes); err != nil {
			return nil, err
		}
		out.Type, out.Used = typ, d.Used
		out.Color = entity.Color(d.Color)
		out.Length, out.Width, out.Height = d.Length, d.Width, d.Height
	case entity.CategoryTickets:
		if err := oneOf("details.type", typ, entity.TicketTypes); err != nil {
			return nil, err
		}
		out.Type = typ
	case entity.CategorySchoolSupplies:
		out.Type, out.Used = typ, d.Used
	case entity.CategoryMiscellaneous:
		out.Type = typ
	}

	if out.Category == entity.CategoryClothing || out.Category == entity.CategoryDecor {
		if !out.Color.Valid() {
			return nil, fmt.Errorf("details.color: invalid value %q", d.Color)
		}
	}
	return out, nil
}

func oneOf(field, v string, allowed []string) error {
	if v == "" {
		return fmt.Errorf("%s: field required", field)
	}
	if !slices.Contains(allowed, v) {
		return fmt.Errorf("%s: invalid value %q", field, v)
	}
	return nil
}

// CreateListingReq は POST /listings のリクエストボディです。
type CreateListingReq struct {
	Name        string      `json:"name" binding:"required"`
	Description *string     `json:"description" binding:"omitempty,max=1500"`
	Price       float64     `json:"price" binding:"required,gt=0"`
	Quantity    *int        `json:"quantity" binding:"omitempty,gte=0"`
	Category    string      `json:"category" binding:"required,category"`
	Details     *DetailsReq `json:"details"`
}

// UpdateListingReq は PATCH /listings/:id のリクエストボディです。
// description は null を指定すると削除されます。
type UpdateListingReq struct {
	Name        *string              `json:"name"`
	Description api.Nullable[string] `json:"description"`
	Price       *float64             `json:"price" binding:"omitempty,gt=0"`
	Quantity    *int                 `json:"quantity" binding:"omitempty,gte=0"`
	Sold        *bool                `json:"sold"`
	Category    *string              `json:"category" binding:"omitempty,category"`
	Details     *DetailsReq          `json:"details"`
}

// ListingRes はリスティングのレスポンスです。
type ListingRes struct {
	ID          string         `json:"id"`
	SellerID    string         `json:"seller_id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Price       float64        `json:"price"`
	Quantity    int            `json:"quantity"`
	Sold        bool           `json:"sold"`
	Category    string         `json:"category"`
	Details     map[string]any `json:"details"`
	CreatedAt   *time.Time     `json:"created_at"`
}

// FromEntity は Listing をレスポンスに変換します。
func FromEntity(l entity.Listing) ListingRes {
	res := ListingRes{
		ID:          l.ID,
		SellerID:    l.SellerID,
		Name:        l.Name,
		Description: l.Description,
		Price:       l.Price,
		Quantity:    l.Quantity,
		Sold:        l.Sold,
		Category:    string(l.Category),
		Details:     DetailsJSON(l.Details),
	}
	if !l.CreatedAt.IsZero() {
		t := l.CreatedAt
		res.CreatedAt = &t
	}
	return res
}

// FromEntities は Listing のスライスを変換します。
func FromEntities(ls []entity.Listing) []ListingRes {
	out := make([]ListingRes, 0, len(ls))
	for _, l := range ls {
		out = append(out, FromEntity(l))
	}
	return out
}

// DetailsJSON はカテゴリに応じたフィールドだけを持つ details オブジェクトを返します。
func DetailsJSON(d *entity.Details) map[string]any {
	if d == nil {
		return nil
	}
	m := map[string]any{"category": string(d.Category)}
	switch d.Category {
	case entity.CategoryClothing:
		m["gender"], m["size"], m["type"], m["color"], m["used"] = d.Gender, d.Size, d.Type, string(d.Color), d.Used
	case entity.CategoryDecor:
		m["type"], m["color"], m["used"] = d.Type, string(d.Color), d.Used
		m["length"], m["width"], m["height"] = d.Length, d.Width, d.Height
	case entity.CategoryTickets:
		m["type"] = d.Type
	case entity.CategorySchoolSupplies:
		m["type"], m["used"] = optional(d.Type), d.Used
	default:
		m["type"] = optional(d.Type)
	}
	return m
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
