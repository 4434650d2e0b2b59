package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	listingdomain "umarket/internal/feature/listings/domain"
	listing "umarket/internal/feature/listings/domain/entity"
	"umarket/internal/feature/orders/domain"
	"umarket/internal/feature/orders/domain/entity"
	"umarket/internal/feature/orders/usecase"
)

// mockOrderRepository はOrderRepositoryインターフェースのモック実装です。
type mockOrderRepository struct {
	ListFunc     func(ctx context.Context, f entity.OrderFilter) ([]entity.Order, error)
	FindByIDFunc func(ctx context.Context, id string) (*entity.Order, error)
	CreateFunc   func(ctx context.Context, in entity.NewOrder) (*entity.Order, error)
	UpdateFunc   func(ctx context.Context, id string, c entity.OrderChanges) (*entity.Order, error)

	UpdateCalls int
}

func (m *mockOrderRepository) List(ctx context.Context, f entity.OrderFilter) ([]entity.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return nil, errors.New("ListFunc is not implemented")
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc is not implemented")
}

func (m *mockOrderRepository) Create(ctx context.Context, in entity.NewOrder) (*entity.Order, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return nil, errors.New("CreateFunc is not implemented")
}

func (m *mockOrderRepository) Update(ctx context.Context, id string, c entity.OrderChanges) (*entity.Order, error) {
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, c)
	}
	return nil, errors.New("UpdateFunc is not implemented")
}

// mockListingStore はListingStoreインターフェースのモック実装です。
type mockListingStore struct {
	FindByIDFunc func(ctx context.Context, id string) (*listing.Listing, error)
	UpdateFunc   func(ctx context.Context, id string, c listing.ListingChanges) (*listing.Listing, error)

	UpdateCalls int
}

func (m *mockListingStore) FindByID(ctx context.Context, id string) (*listing.Listing, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc is not implemented")
}

func (m *mockListingStore) Update(ctx context.Context, id string, c listing.ListingChanges) (*listing.Listing, error) {
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, c)
	}
	return nil, errors.New("UpdateFunc is not implemented")
}

func ptr[T any](v T) *T { return &v }

func TestOrderUsecase_List(t *testing.T) {
	t.Parallel()

	var got entity.OrderFilter
	orders := &mockOrderRepository{
		ListFunc: func(ctx context.Context, f entity.OrderFilter) ([]entity.Order, error) {
			got = f
			return []entity.Order{{ID: "o1"}}, nil
		},
	}
	uc := usecase.NewOrderUsecase(orders, &mockListingStore{})

	out, err := uc.List(context.Background(), "u1", usecase.RoleSeller)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	require.NotNil(t, got.SellerID)
	assert.Equal(t, "u1", *got.SellerID)
	assert.Nil(t, got.BuyerID)

	_, err = uc.List(context.Background(), "u1", usecase.RoleBuyer)
	require.NoError(t, err)
	require.NotNil(t, got.BuyerID)
	assert.Nil(t, got.SellerID)

	_, err = uc.List(context.Background(), "u2", "")
	require.NoError(t, err)
	require.NotNil(t, got.BuyerID)
	assert.Equal(t, "u2", *got.BuyerID)

	_, err = uc.List(context.Background(), "u1", usecase.Role("admin"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestOrderUsecase_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		listing      *listing.Listing
		findErr      error
		wantErr      error
		wantQuantity int
		wantSold     bool
	}{
		{
			name:         "success: decrements stock",
			listing:      &listing.Listing{ID: "p1", SellerID: "s1", Quantity: 3},
			wantQuantity: 2,
		},
		{
			name:         "success: last unit marks sold",
			listing:      &listing.Listing{ID: "p1", SellerID: "s1", Quantity: 1},
			wantQuantity: 0,
			wantSold:     true,
		},
		{
			name:    "error: listing not found",
			findErr: listingdomain.ErrListingNotFound,
			wantErr: listingdomain.ErrListingNotFound,
		},
		{
			name:    "error: own listing",
			listing: &listing.Listing{ID: "p1", SellerID: "b1", Quantity: 1},
			wantErr: domain.ErrSelfPurchase,
		},
		{
			name:    "error: already sold",
			listing: &listing.Listing{ID: "p1", SellerID: "s1", Quantity: 1, Sold: true},
			wantErr: domain.ErrListingSold,
		},
		{
			name:    "error: out of stock",
			listing: &listing.Listing{ID: "p1", SellerID: "s1", Quantity: 0},
			wantErr: domain.ErrOutOfStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var changes listing.ListingChanges
			listings := &mockListingStore{
				FindByIDFunc: func(ctx context.Context, id string) (*listing.Listing, error) {
					return tt.listing, tt.findErr
				},
				UpdateFunc: func(ctx context.Context, id string, c listing.ListingChanges) (*listing.Listing, error) {
					changes = c
					return tt.listing, nil
				},
			}
			var inserted entity.NewOrder
			orders := &mockOrderRepository{
				CreateFunc: func(ctx context.Context, in entity.NewOrder) (*entity.Order, error) {
					inserted = in
					return &entity.Order{ID: "o1", ListingID: in.ListingID, BuyerID: in.BuyerID}, nil
				},
			}
			uc := usecase.NewOrderUsecase(orders, listings)

			order, err := uc.Create(context.Background(), "b1", "p1", ptr(entity.PaymentCash))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, listings.UpdateCalls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "o1", order.ID)
			assert.Equal(t, entity.PaymentCash, *inserted.PaymentMethod)
			require.NotNil(t, changes.Quantity)
			assert.Equal(t, tt.wantQuantity, *changes.Quantity)
			assert.Equal(t, tt.wantSold, changes.Sold != nil && *changes.Sold)
			assert.False(t, changes.SyncDetails, "stock decrement must not touch details")
		})
	}
}

func TestOrderUsecase_Update(t *testing.T) {
	t.Parallel()

	order := func() *entity.Order {
		cash := entity.PaymentCash
		return &entity.Order{ID: "o1", ListingID: "p1", BuyerID: "b1", PaymentMethod: &cash}
	}
	set := func(pm entity.PaymentMethod) entity.PaymentMethodChange {
		return entity.PaymentMethodChange{Set: true, Value: &pm}
	}

	tests := []struct {
		name       string
		userID     string
		method     entity.PaymentMethodChange
		listingErr error
		wantErr    error
		wantUpdate bool
	}{
		{name: "success: buyer changes method", userID: "b1", method: set(entity.PaymentStripe), wantUpdate: true},
		{name: "success: seller changes method", userID: "s1", method: set(entity.PaymentCash), wantUpdate: true},
		{name: "success: null clears method", userID: "b1", method: entity.PaymentMethodChange{Set: true}, wantUpdate: true},
		{name: "success: empty patch returns order", userID: "b1"},
		{name: "error: stranger", userID: "x", method: set(entity.PaymentCash), wantErr: domain.ErrUpdateForbidden},
		{
			name: "error: listing gone", userID: "b1", method: set(entity.PaymentCash),
			listingErr: listingdomain.ErrListingNotFound, wantErr: domain.ErrAssociatedListingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			orders := &mockOrderRepository{
				FindByIDFunc: func(ctx context.Context, id string) (*entity.Order, error) { return order(), nil },
				UpdateFunc: func(ctx context.Context, id string, c entity.OrderChanges) (*entity.Order, error) {
					assert.True(t, c.PaymentMethod.Set)
					o := order()
					o.PaymentMethod = c.PaymentMethod.Value
					return o, nil
				},
			}
			listings := &mockListingStore{
				FindByIDFunc: func(ctx context.Context, id string) (*listing.Listing, error) {
					if tt.listingErr != nil {
						return nil, tt.listingErr
					}
					return &listing.Listing{ID: id, SellerID: "s1"}, nil
				},
			}
			uc := usecase.NewOrderUsecase(orders, listings)

			got, err := uc.Update(context.Background(), tt.userID, "o1", tt.method)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, orders.UpdateCalls)
				return
			}
			require.NoError(t, err)
			if tt.wantUpdate {
				assert.Equal(t, 1, orders.UpdateCalls)
				assert.Equal(t, tt.method.Value, got.PaymentMethod)
			} else {
				assert.Equal(t, 0, orders.UpdateCalls)
				require.NotNil(t, got.PaymentMethod)
				assert.Equal(t, entity.PaymentCash, *got.PaymentMethod)
			}
		})
	}

	t.Run("error: order not found", func(t *testing.T) {
		t.Parallel()
		orders := &mockOrderRepository{
			FindByIDFunc: func(ctx context.Context, id string) (*entity.Order, error) { return nil, domain.ErrOrderNotFound },
		}
		_, err := usecase.NewOrderUsecase(orders, &mockListingStore{}).Update(context.Background(), "b1", "o1", entity.PaymentMethodChange{})
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestOrderUsecase_ConfirmItem(t *testing.T) {
	t.Parallel()

	var changes entity.OrderChanges
	confirmed := false
	orders := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*entity.Order, error) {
			return &entity.Order{ID: id, BuyerID: "b1", SellerID: "s1", BuyerConfirmed: confirmed}, nil
		},
		UpdateFunc: func(ctx context.Context, id string, c entity.OrderChanges) (*entity.Order, error) {
			changes = c
			return &entity.Order{ID: id, BuyerConfirmed: true}, nil
		},
	}
	uc := usecase.NewOrderUsecase(orders, &mockListingStore{})
	ctx := context.Background()

	_, err := uc.ConfirmItem(ctx, "s1", "o1", nil)
	assert.ErrorIs(t, err, domain.ErrBuyerConfirmOnly)

	before := time.Now().UTC()
	_, err = uc.ConfirmItem(ctx, "b1", "o1", ptr("  met at library  "))
	require.NoError(t, err)
	require.NotNil(t, changes.BuyerConfirmation)
	assert.Nil(t, changes.SellerConfirmation)
	assert.Equal(t, "met at library", *changes.BuyerConfirmation.Notes)
	assert.False(t, changes.BuyerConfirmation.At.Before(before))
	assert.Equal(t, time.UTC, changes.BuyerConfirmation.At.Location())

	// 2回目は更新しない
	confirmed = true
	_, err = uc.ConfirmItem(ctx, "b1", "o1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, orders.UpdateCalls)
}

func TestOrderUsecase_ConfirmPayment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		order   entity.Order
		userID  string
		notes   *string
		wantErr error
		wantNil bool
	}{
		{name: "success: seller from row", order: entity.Order{BuyerID: "b1", SellerID: "s1"}, userID: "s1", notes: ptr("   "), wantNil: true},
		{name: "success: seller from product", order: entity.Order{BuyerID: "b1", Product: &listing.Listing{SellerID: "s1"}}, userID: "s1"},
		{name: "error: buyer cannot confirm payment", order: entity.Order{BuyerID: "b1", SellerID: "s1"}, userID: "b1", wantErr: domain.ErrSellerConfirmOnly},
		{name: "error: unknown seller", order: entity.Order{BuyerID: "b1"}, userID: "", wantErr: domain.ErrSellerConfirmOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var changes entity.OrderChanges
			orders := &mockOrderRepository{
				FindByIDFunc: func(ctx context.Context, id string) (*entity.Order, error) {
					o := tt.order
					return &o, nil
				},
				UpdateFunc: func(ctx context.Context, id string, c entity.OrderChanges) (*entity.Order, error) {
					changes = c
					return &entity.Order{ID: id, SellerConfirmed: true}, nil
				},
			}
			uc := usecase.NewOrderUsecase(orders, &mockListingStore{})

			_, err := uc.ConfirmPayment(context.Background(), tt.userID, "o1", tt.notes)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, changes.SellerConfirmation)
			if tt.wantNil {
				assert.Nil(t, changes.SellerConfirmation.Notes)
			}
		})
	}
}

func TestOrderUsecase_ConfirmPayment_AlreadyConfirmed(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	orders := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*entity.Order, error) {
			return &entity.Order{ID: id, BuyerID: "b1", SellerID: "s1", SellerConfirmed: true, SellerConfirmedAt: &at}, nil
		},
	}
	uc := usecase.NewOrderUsecase(orders, &mockListingStore{})

	got, err := uc.ConfirmPayment(context.Background(), "s1", "o1", ptr("again"))
	require.NoError(t, err)
	assert.True(t, got.SellerConfirmed)
	assert.Equal(t, &at, got.SellerConfirmedAt)
	assert.Nil(t, got.SellerConfirmationNotes)
	assert.Equal(t, 0, orders.UpdateCalls)
}
