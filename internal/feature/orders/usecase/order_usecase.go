// Package usecase implements the order lifecycle: purchase, edits and the two-sided meetup confirmation.
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	listingdomain "umarket/internal/feature/listings/domain"
	listing "umarket/internal/feature/listings/domain/entity"
	"umarket/internal/feature/orders/domain"
	"umarket/internal/feature/orders/domain/entity"
)

// Role selects which side of the orders a user wants to see.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// OrderRepository abstracts the Transactions store.
type OrderRepository interface {
	List(ctx context.Context, filter entity.OrderFilter) ([]entity.Order, error)
	// FindByID returns domain.ErrOrderNotFound when no order exists.
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	Create(ctx context.Context, in entity.NewOrder) (*entity.Order, error)
	Update(ctx context.Context, id string, changes entity.OrderChanges) (*entity.Order, error)
}

// ListingStore is the part of the listings store that purchases touch.
// Both listings repositories satisfy it.
type ListingStore interface {
	FindByID(ctx context.Context, id string) (*listing.Listing, error)
	Update(ctx context.Context, id string, changes listing.ListingChanges) (*listing.Listing, error)
}

// OrderUsecase provides business logic for order operations.
type OrderUsecase struct {
	orders   OrderRepository
	listings ListingStore
	now      func() time.Time
}

// NewOrderUsecase creates a new OrderUsecase.
func NewOrderUsecase(orders OrderRepository, listings ListingStore) *OrderUsecase {
	return &OrderUsecase{orders: orders, listings: listings, now: time.Now}
}

// List returns the orders where userID is the buyer, or the seller of the product.
// An empty role means buyer.
func (u *OrderUsecase) List(ctx context.Context, userID string, role Role) ([]entity.Order, error) {
	var filter entity.OrderFilter
	switch role {
	case RoleBuyer, "":
		filter.BuyerID = &userID
	case RoleSeller:
		filter.SellerID = &userID
	default:
		return nil, domain.ErrInvalidRole
	}
	return u.orders.List(ctx, filter)
}

// Create purchases one unit of listingID for buyerID and decrements the listing's stock.
// The listing is marked sold when the last unit goes.
func (u *OrderUsecase) Create(ctx context.Context, buyerID, listingID string, method *entity.PaymentMethod) (*entity.Order, error) {
	l, err := u.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	switch {
	case l.SellerID == buyerID:
		return nil, domain.ErrSelfPurchase
	case l.Sold:
		return nil, domain.ErrListingSold
	case l.Quantity <= 0:
		return nil, domain.ErrOutOfStock
	}

	order, err := u.orders.Create(ctx, entity.NewOrder{
		ListingID:     listingID,
		BuyerID:       buyerID,
		PaymentMethod: method,
	})
	if err != nil {
		return nil, err
	}

	remaining := max(l.Quantity-1, 0)
	changes := listing.ListingChanges{Quantity: &remaining}
	if remaining == 0 {
		sold := true
		changes.Sold = &sold
	}
	if _, err := u.listings.Update(ctx, listingID, changes); err != nil {
		return nil, err
	}
	return order, nil
}

// Update changes or clears the payment method. Only the buyer or the seller may edit an order.
func (u *OrderUsecase) Update(ctx context.Context, userID, id string, method entity.PaymentMethodChange) (*entity.Order, error) {
	order, err := u.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Product == nil {
		p, err := u.listings.FindByID(ctx, order.ListingID)
		if errors.Is(err, listingdomain.ErrListingNotFound) {
			return nil, domain.ErrAssociatedListingNotFound
		}
		if err != nil {
			return nil, err
		}
		order.Product = p
	}
	if !order.IsParticipant(userID) {
		return nil, domain.ErrUpdateForbidden
	}

	changes := entity.OrderChanges{PaymentMethod: method}
	if changes.IsEmpty() {
		return order, nil
	}
	return u.orders.Update(ctx, id, changes)
}

// ConfirmItem records that the buyer received the item. Confirming twice is a no-op.
func (u *OrderUsecase) ConfirmItem(ctx context.Context, userID, id string, notes *string) (*entity.Order, error) {
	order, err := u.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != userID {
		return nil, domain.ErrBuyerConfirmOnly
	}
	if order.BuyerConfirmed {
		return order, nil
	}
	return u.orders.Update(ctx, id, entity.OrderChanges{
		BuyerConfirmation: u.confirmation(notes),
	})
}

// ConfirmPayment records that the seller received payment. Confirming twice is a no-op.
func (u *OrderUsecase) ConfirmPayment(ctx context.Context, userID, id string, notes *string) (*entity.Order, error) {
	order, err := u.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seller := order.Seller(); seller == "" || seller != userID {
		return nil, domain.ErrSellerConfirmOnly
	}
	if order.SellerConfirmed {
		return order, nil
	}
	return u.orders.Update(ctx, id, entity.OrderChanges{
		SellerConfirmation: u.confirmation(notes),
	})
}

// Get returns a single order. Used by reports to check transaction membership.
func (u *OrderUsecase) Get(ctx context.Context, id string) (*entity.Order, error) {
	return u.orders.FindByID(ctx, id)
}

func (u *OrderUsecase) confirmation(notes *string) *entity.Confirmation {
	c := &entity.Confirmation{At: u.now().UTC()}
	if notes != nil {
		if s := strings.TrimSpace(*notes); s != "" {
			c.Notes = &s
		}
	}
	return c
}
