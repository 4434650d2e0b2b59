package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	listing "umarket/internal/feature/listings/domain/entity"
	"umarket/internal/feature/orders/domain/entity"
)

func TestPaymentMethod(t *testing.T) {
	t.Parallel()

	lower := "stripe"
	bogus := "card"
	assert.Nil(t, PaymentMethod(nil))
	assert.Nil(t, PaymentMethod(&bogus))
	require.NotNil(t, PaymentMethod(&lower))
	assert.Equal(t, entity.PaymentStripe, *PaymentMethod(&lower))
}

func TestFromEntity(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	o := entity.Order{
		ID:              "o1",
		ListingID:       "p1",
		BuyerID:         "b1",
		CreatedAt:       &created,
		SellerConfirmed: true,
		Product:         &listing.Listing{ID: "p1", SellerID: "s1", Category: listing.CategoryMiscellaneous},
	}

	res := FromEntity(o)
	require.NotNil(t, res.SellerID)
	assert.Equal(t, "s1", *res.SellerID)
	assert.Equal(t, "seller_confirmed", res.Status)
	assert.Nil(t, res.PaymentMethod)
	require.NotNil(t, res.Product)
	assert.Equal(t, "p1", res.Product.ID)

	res = FromEntity(entity.Order{ID: "o2"})
	assert.Nil(t, res.SellerID)
	assert.Nil(t, res.Product)
	assert.Equal(t, "pending_meetup", res.Status)
}
