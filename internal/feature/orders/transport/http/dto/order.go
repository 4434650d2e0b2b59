// Package dto はordersフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"fmt"
	"time"

	"umarket/internal/api"
	listingdto "umarket/internal/feature/listings/transport/http/dto"
	"umarket/internal/feature/orders/domain/entity"
	"umarket/internal/platform/validation"
)

// RegisterValidators は "payment_method" ルール（大文字小文字を区別しない）を登録します。
func RegisterValidators() error {
	return validation.RegisterEnum("payment_method", validation.Strings(entity.PaymentMethods), true)
}

// CreateOrderReq は POST /orders のリクエストボディです。
type CreateOrderReq struct {
	ListingID     string  `json:"listing_id" binding:"required"`
	PaymentMethod *string `json:"payment_method" binding:"omitempty,payment_method"`
}

// UpdateOrderReq は PATCH /orders/:id のリクエストボディです。
// payment_method は null を指定すると削除されます。
type UpdateOrderReq struct {
	PaymentMethod api.Nullable[string] `json:"payment_method"`
}

// Change は payment_method を検証して更新内容に変換します。
func (r UpdateOrderReq) Change() (entity.PaymentMethodChange, error) {
	pm := r.PaymentMethod
	if !pm.Set || pm.Value == nil {
		return entity.PaymentMethodChange{Set: pm.Set}, nil
	}
	method, ok := entity.ParsePaymentMethod(*pm.Value)
	if !ok {
		return entity.PaymentMethodChange{}, fmt.Errorf("PaymentMethod: invalid value %s", *pm.Value)
	}
	return entity.PaymentMethodChange{Set: true, Value: &method}, nil
}

// ConfirmReq は確認エンドポイントの任意のボディです。
type ConfirmReq struct {
	Notes *string `json:"notes" binding:"omitempty,max=1000"`
}

// PaymentMethod はバリデーション済みの支払い方法を大文字に正規化します。
func PaymentMethod(raw *string) *entity.PaymentMethod {
	if raw == nil {
		return nil
	}
	pm, ok := entity.ParsePaymentMethod(*raw)
	if !ok {
		return nil
	}
	return &pm
}

// OrderRes は注文のレスポンスです。
type OrderRes struct {
	ID                      string                 `json:"id"`
	ListingID               string                 `json:"listing_id"`
	BuyerID                 string                 `json:"buyer_id"`
	SellerID                *string                `json:"seller_id"`
	PaymentMethod           *string                `json:"payment_method"`
	CreatedAt               *time.Time             `json:"created_at"`
	Product                 *listingdto.ListingRes `json:"product"`
	Status                  string                 `json:"status"`
	BuyerConfirmed          bool                   `json:"buyer_confirmed"`
	SellerConfirmed         bool                   `json:"seller_confirmed"`
	BuyerConfirmedAt        *time.Time             `json:"buyer_confirmed_at"`
	SellerConfirmedAt       *time.Time             `json:"seller_confirmed_at"`
	BuyerConfirmationNotes  *string                `json:"buyer_confirmation_notes"`
	SellerConfirmationNotes *string                `json:"seller_confirmation_notes"`
}

// FromEntity は Order をレスポンスに変換します。
func FromEntity(o entity.Order) OrderRes {
	res := OrderRes{
		ID:                      o.ID,
		ListingID:               o.ListingID,
		BuyerID:                 o.BuyerID,
		CreatedAt:               o.CreatedAt,
		Status:                  string(entity.DeriveStatus(o.BuyerConfirmed, o.SellerConfirmed)),
		BuyerConfirmed:          o.BuyerConfirmed,
		SellerConfirmed:         o.SellerConfirmed,
		BuyerConfirmedAt:        o.BuyerConfirmedAt,
		SellerConfirmedAt:       o.SellerConfirmedAt,
		BuyerConfirmationNotes:  o.BuyerConfirmationNotes,
		SellerConfirmationNotes: o.SellerConfirmationNotes,
	}
	if seller := o.Seller(); seller != "" {
		res.SellerID = &seller
	}
	if o.PaymentMethod != nil {
		pm := string(*o.PaymentMethod)
		res.PaymentMethod = &pm
	}
	if o.Product != nil {
		p := listingdto.FromEntity(*o.Product)
		res.Product = &p
	}
	return res
}

// FromEntities は Order のスライスを変換します。
func FromEntities(os []entity.Order) []OrderRes {
	out := make([]OrderRes, 0, len(os))
	for _, o := range os {
		out = append(out, FromEntity(o))
	}
	return out
}
