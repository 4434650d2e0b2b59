// Package entity defines the domain models for the listings feature.
package entity

import (
	"fmt"
	"slices"
	"time"
)

// Listing is a product offered for sale by a seller.
type Listing struct {
	ID          string
	SellerID    string
	Name        string
	Description *string
	Price       float64
	Quantity    int
	Sold        bool
	Category    Category
	Details     *Details
	CreatedAt   time.Time
}

// Details holds the category-specific attributes of a listing.
// Which fields are meaningful depends on Category:
//
//	clothing         Gender, Size, Type, Color, Used
//	decor            Type, Color, Used, Length, Width, Height
//	tickets          Type
//	school-supplies  Type (free text, optional), Used
//	miscellaneous    Type (free text, optional)
type Details struct {
	Category Category
	Type     string
	Gender   string
	Size     string
	Color    Color
	Used     bool
	Length   *int
	Width    *int
	Height   *int
}

// Validate checks that d carries the attributes its category requires.
func (d *Details) Validate() error {
	switch d.Category {
	case CategoryClothing:
		if !slices.Contains(ClothingGenders, d.Gender) {
			return fmt.Errorf("invalid clothing gender %q", d.Gender)
		}
		if !slices.Contains(ClothingSizes, d.Size) {
			return fmt.Errorf("invalid clothing size %q", d.Size)
		}
		if !slices.Contains(ClothingTypes, d.Type) {
			return fmt.Errorf("invalid clothing type %q", d.Type)
		}
		if !d.Color.Valid() {
			return fmt.Errorf("invalid color %q", d.Color)
		}
	case CategoryDecor:
		if !slices.Contains(DecorTypes, d.Type) {
			return fmt.Errorf("invalid decor type %q", d.Type)
		}
		if !d.Color.Valid() {
			return fmt.Errorf("invalid color %q", d.Color)
		}
		dims := []struct {
			name string
			v    *int
		}{{"length", d.Length}, {"width", d.Width}, {"height", d.Height}}
		for _, dim := range dims {
			if dim.v != nil && *dim.v < 0 {
				return fmt.Errorf("%s must be greater than or equal to 0", dim.name)
			}
		}
	case CategoryTickets:
		if !slices.Contains(TicketTypes, d.Type) {
			return fmt.Errorf("invalid ticket type %q", d.Type)
		}
	case CategorySchoolSupplies, CategoryMiscellaneous:
	default:
		return fmt.Errorf("invalid details category %q", d.Category)
	}
	return nil
}

// Equal reports whether d and o describe the same attributes. Two nil values are equal.
func (d *Details) Equal(o *Details) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Category == o.Category &&
		d.Type == o.Type &&
		d.Gender == o.Gender &&
		d.Size == o.Size &&
		d.Color == o.Color &&
		d.Used == o.Used &&
		intPtrEqual(d.Length, o.Length) &&
		intPtrEqual(d.Width, o.Width) &&
		intPtrEqual(d.Height, o.Height)
}

// Clone returns a deep copy of d.
func (d *Details) Clone() *Details {
	if d == nil {
		return nil
	}
	c := *d
	c.Length = cloneInt(d.Length)
	c.Width = cloneInt(d.Width)
	c.Height = cloneInt(d.Height)
	return &c
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ListingFilter narrows a listing query. Nil fields are not applied.
type ListingFilter struct {
	SellerID *string
	Sold     *bool
	Search   string
}

// DescriptionChange is a tri-state description update: untouched, cleared, or replaced.
type DescriptionChange struct {
	Set   bool
	Value *string
}

// ListingChanges is a partial update of a listing row plus an optional side-table sync.
// When SyncDetails is true the side tables are rewritten so that only the table of the
// final category holds Details (or none, if Details is nil).
type ListingChanges struct {
	Name        *string
	Description DescriptionChange
	Price       *float64
	Quantity    *int
	Sold        *bool
	Category    *Category

	SyncDetails bool
	Details     *Details
}

// HasFieldChanges reports whether any column of the listing row itself changes.
func (c ListingChanges) HasFieldChanges() bool {
	return c.Name != nil || c.Description.Set || c.Price != nil ||
		c.Quantity != nil || c.Sold != nil || c.Category != nil
}
