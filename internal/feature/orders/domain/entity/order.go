// Package entity defines the domain models for the orders feature.
package entity

import (
	"slices"
	"strings"
	"time"

	listing "umarket/internal/feature/listings/domain/entity"
)

// PaymentMethod is how the buyer intends to pay at the meetup.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentStripe PaymentMethod = "STRIPE"
)

// PaymentMethods lists every valid payment method.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentStripe}

// ParsePaymentMethod upper-cases s and reports whether it is a known method.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	pm := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	return pm, slices.Contains(PaymentMethods, pm)
}

// Status is derived from the two confirmation flags and never stored.
type Status string

const (
	StatusPendingMeetup   Status = "pending_meetup"
	StatusBuyerConfirmed  Status = "buyer_confirmed"
	StatusSellerConfirmed Status = "seller_confirmed"
	StatusComplete        Status = "complete"
)

// DeriveStatus maps the buyer (item received) and seller (payment received) flags to a status.
func DeriveStatus(buyerConfirmed, sellerConfirmed bool) Status {
	switch {
	case buyerConfirmed && sellerConfirmed:
		return StatusComplete
	case buyerConfirmed:
		return StatusBuyerConfirmed
	case sellerConfirmed:
		return StatusSellerConfirmed
	default:
		return StatusPendingMeetup
	}
}

// Order is a purchase of one unit of a listing.
type Order struct {
	ID            string
	ListingID     string
	BuyerID       string
	SellerID      string // empty when neither the row nor the embedded product carries it
	PaymentMethod *PaymentMethod
	CreatedAt     *time.Time
	Product       *listing.Listing

	BuyerConfirmed          bool
	SellerConfirmed         bool
	BuyerConfirmedAt        *time.Time
	SellerConfirmedAt       *time.Time
	BuyerConfirmationNotes  *string
	SellerConfirmationNotes *string

	Status Status
}

// Seller returns the seller id, falling back to the embedded product.
func (o *Order) Seller() string {
	if o.SellerID != "" {
		return o.SellerID
	}
	if o.Product != nil {
		return o.Product.SellerID
	}
	return ""
}

// IsParticipant reports whether userID is the buyer or the seller.
func (o *Order) IsParticipant(userID string) bool {
	return userID != "" && (o.BuyerID == userID || o.Seller() == userID)
}

// Counterpart returns the other participant from userID's point of view.
func (o *Order) Counterpart(userID string) string {
	if userID == o.Seller() {
		return o.BuyerID
	}
	return o.Seller()
}

// OrderFilter selects orders by buyer or by the seller of the embedded product.
type OrderFilter struct {
	BuyerID  *string
	SellerID *string
}

// NewOrder is the insert payload for an order.
type NewOrder struct {
	ListingID     string
	BuyerID       string
	PaymentMethod *PaymentMethod
}

// Confirmation records one side confirming the exchange.
type Confirmation struct {
	At    time.Time
	Notes *string
}

// PaymentMethodChange is a tri-state payment method update: untouched, cleared, or replaced.
type PaymentMethodChange struct {
	Set   bool
	Value *PaymentMethod
}

// OrderChanges is a partial update. Nil fields are left untouched.
type OrderChanges struct {
	PaymentMethod      PaymentMethodChange
	BuyerConfirmation  *Confirmation
	SellerConfirmation *Confirmation
}

// IsEmpty reports whether c changes nothing.
func (c OrderChanges) IsEmpty() bool {
	return !c.PaymentMethod.Set && c.BuyerConfirmation == nil && c.SellerConfirmation == nil
}
