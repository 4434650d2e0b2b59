// Package usecase implements the business logic for marketplace listings.
package usecase

import (
	"context"
	"fmt"
	"strings"

	"umarket/internal/feature/listings/domain"
	"umarket/internal/feature/listings/domain/entity"
)

const (
	// DefaultQuantity is used when a new listing does not specify a quantity.
	DefaultQuantity = 1
	// MaxDescriptionLength bounds the long-form description.
	MaxDescriptionLength = 1500
)

// ListingRepository abstracts the persistence layer for listings and their category side tables.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type ListingRepository interface {
	// List returns listings matching the seller and sold filters. Search is not applied by the store.
	List(ctx context.Context, filter entity.ListingFilter) ([]entity.Listing, error)

	// FindByID returns domain.ErrListingNotFound when no listing exists.
	FindByID(ctx context.Context, id string) (*entity.Listing, error)

	// Create inserts the listing, writes its details to the matching side table, and
	// returns the stored listing.
	Create(ctx context.Context, listing *entity.Listing) (*entity.Listing, error)

	// Update applies changes and returns the refreshed listing.
	Update(ctx context.Context, id string, changes entity.ListingChanges) (*entity.Listing, error)

	// Delete removes the listing and its side-table rows.
	Delete(ctx context.Context, id string) error
}

// CreateListingInput is the validated payload for a new listing.
type CreateListingInput struct {
	Name        string
	Description *string
	Price       float64
	Quantity    *int
	Category    entity.Category
	Details     *entity.Details
}

// UpdateListingInput is a partial update. Nil pointers leave the field untouched.
type UpdateListingInput struct {
	Name        *string
	Description entity.DescriptionChange
	Price       *float64
	Quantity    *int
	Sold        *bool
	Category    *entity.Category
	Details     *entity.Details
}

// ListingUsecase provides business logic for listing operations.
type ListingUsecase struct {
	repo ListingRepository
}

// NewListingUsecase creates a new ListingUsecase with the given repository.
func NewListingUsecase(r ListingRepository) *ListingUsecase {
	return &ListingUsecase{repo: r}
}

// List returns listings filtered by seller and sold flag, ranked by the fuzzy search term if given.
func (u *ListingUsecase) List(ctx context.Context, filter entity.ListingFilter) ([]entity.Listing, error) {
	listings, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return rankListings(listings, filter.Search), nil
}

// Get returns a single listing.
func (u *ListingUsecase) Get(ctx context.Context, id string) (*entity.Listing, error) {
	return u.repo.FindByID(ctx, id)
}

// Create stores a new listing owned by sellerID.
func (u *ListingUsecase) Create(ctx context.Context, sellerID string, in CreateListingInput) (*entity.Listing, error) {
	if err := validateCommon(in.Name, in.Price, in.Quantity, in.Description); err != nil {
		return nil, err
	}
	if !in.Category.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid category %q", in.Category))
	}
	if in.Category.RequiresDetails() && in.Details == nil {
		return nil, domain.NewValidationError(fmt.Sprintf("Details are required when creating a %s listing", in.Category))
	}
	if err := checkDetails(in.Category, in.Details); err != nil {
		return nil, err
	}

	quantity := DefaultQuantity
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	listing := &entity.Listing{
		SellerID:    sellerID,
		Name:        in.Name,
		Description: normalizeDescription(in.Description),
		Price:       in.Price,
		Quantity:    quantity,
		Sold:        false,
		Category:    in.Category,
		Details:     in.Details.Clone(),
	}
	return u.repo.Create(ctx, listing)
}

// Update modifies a listing owned by userID.
//
// Details to persist are the existing ones when neither details nor category change,
// otherwise the submitted details (which may be nil, clearing every side table).
func (u *ListingUsecase) Update(ctx context.Context, userID, id string, in UpdateListingInput) (*entity.Listing, error) {
	existing, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.SellerID != userID {
		return nil, domain.ErrEditForbidden
	}

	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	if in.Category != nil {
		if in.Category.RequiresDetails() && in.Details == nil {
			return nil, domain.NewValidationError(fmt.Sprintf("Details are required when changing a listing to %s", *in.Category))
		}
		if err := checkDetails(*in.Category, in.Details); err != nil {
			return nil, err
		}
	} else if err := checkDetails(existing.Category, in.Details); err != nil {
		return nil, err
	}

	finalCategory := existing.Category
	if in.Category != nil {
		finalCategory = *in.Category
	}
	detailsChanged := in.Details != nil && !in.Details.Equal(existing.Details)

	detailsToPersist := in.Details
	if in.Details == nil && finalCategory == existing.Category {
		detailsToPersist = existing.Details
	}

	changes := entity.ListingChanges{
		Name:     in.Name,
		Price:    in.Price,
		Quantity: in.Quantity,
		Sold:     in.Sold,
		Category: in.Category,
	}
	if in.Description.Set {
		changes.Description = entity.DescriptionChange{Set: true, Value: normalizeDescription(in.Description.Value)}
	}
	if !changes.HasFieldChanges() && !detailsChanged {
		return existing, nil
	}
	changes.SyncDetails = in.Details != nil || in.Category != nil
	changes.Details = detailsToPersist.Clone()

	return u.repo.Update(ctx, id, changes)
}

// Delete removes a listing owned by userID.
func (u *ListingUsecase) Delete(ctx context.Context, userID, id string) error {
	existing, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.SellerID != userID {
		return domain.ErrDeleteForbidden
	}
	return u.repo.Delete(ctx, id)
}

// checkDetails validates details against the category they will be stored under.
func checkDetails(category entity.Category, details *entity.Details) error {
	if details == nil {
		return nil
	}
	if details.Category != category {
		return domain.NewValidationError("Details category must match the listing category")
	}
	if err := details.Validate(); err != nil {
		return domain.NewValidationError(err.Error())
	}
	return nil
}

func validateCommon(name string, price float64, quantity *int, description *string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("name must not be empty")
	}
	if price <= 0 {
		return domain.NewValidationError("price must be greater than 0")
	}
	if quantity != nil && *quantity < 0 {
		return domain.NewValidationError("quantity must be greater than or equal to 0")
	}
	if description != nil && len([]rune(*description)) > MaxDescriptionLength {
		return domain.NewValidationError(fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}
	return nil
}

func validateUpdate(in UpdateListingInput) error {
	if in.Price != nil && *in.Price <= 0 {
		return domain.NewValidationError("price must be greater than 0")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return domain.NewValidationError("quantity must be greater than or equal to 0")
	}
	if in.Category != nil && !in.Category.Valid() {
		return domain.NewValidationError(fmt.Sprintf("invalid category %q", *in.Category))
	}
	if in.Description.Value != nil && len([]rune(*in.Description.Value)) > MaxDescriptionLength {
		return domain.NewValidationError(fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}
	return nil
}

// normalizeDescription trims the description; blank becomes nil.
func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	s := strings.TrimSpace(*desc)
	if s == "" {
		return nil
	}
	return &s
}
