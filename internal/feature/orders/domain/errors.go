// Package domain defines domain-level errors for the orders feature.
package domain

import "errors"

// Not found
var (
	ErrOrderNotFound = errors.New("Order not found")
	// ErrAssociatedListingNotFound means the order exists but its product does not.
	ErrAssociatedListingNotFound = errors.New("Associated listing not found")
)

// Forbidden
var (
	ErrUpdateForbidden   = errors.New("You are not authorized to update this order")
	ErrBuyerConfirmOnly  = errors.New("Only the buyer can confirm receiving the item")
	ErrSellerConfirmOnly = errors.New("Only the seller can confirm receiving payment")
)

// Bad request
var (
	ErrInvalidRole  = errors.New("role must be 'buyer' or 'seller'")
	ErrSelfPurchase = errors.New("You cannot purchase your own listing")
	ErrListingSold  = errors.New("Listing has already been sold")
	ErrOutOfStock   = errors.New("Listing is out of stock")
)
