package entity

import "slices"

// Category is the slug used to group listings on the homepage.
type Category string

const (
	CategoryDecor          Category = "decor"
	CategoryClothing       Category = "clothing"
	CategorySchoolSupplies Category = "school-supplies"
	CategoryTickets        Category = "tickets"
	CategoryMiscellaneous  Category = "miscellaneous"
)

// Categories lists every valid category slug.
var Categories = []Category{
	CategoryDecor,
	CategoryClothing,
	CategorySchoolSupplies,
	CategoryTickets,
	CategoryMiscellaneous,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// RequiresDetails reports whether listings in this category must carry details.
// These are exactly the categories backed by a side table.
func (c Category) RequiresDetails() bool {
	switch c {
	case CategoryClothing, CategoryDecor, CategoryTickets:
		return true
	}
	return false
}

// Color is shared by clothing and decor details.
type Color string

// Colors lists every valid color.
var Colors = []Color{
	"RED", "ORANGE", "YELLOW", "GREEN", "BLUE", "PURPLE",
	"PINK", "BLACK", "WHITE", "BROWN", "GREY", "OTHER",
}

// Valid reports whether c is a known color.
func (c Color) Valid() bool { return slices.Contains(Colors, c) }

// ClothingGenders lists the accepted clothing gender values.
var ClothingGenders = []string{"MENS", "WOMENS", "UNISEX", "KIDS"}

// ClothingSizes lists the accepted clothing sizes, letter sizes first then US shoe sizes.
var ClothingSizes = []string{
	"XS", "S", "M", "L", "XL", "XXL", "PLUS",
	"US_5", "US_5.5", "US_6", "US_6.5", "US_7", "US_7.5", "US_8", "US_8.5",
	"US_9", "US_9.5", "US_10", "US_10.5", "US_11", "US_11.5", "US_12", "US_12.5",
	"OTHER",
}

// ClothingTypes lists the accepted clothing types.
var ClothingTypes = []string{"SHIRTS", "BOTTOMS", "SWEATERS", "TOPS", "SHOES", "FORMALS", "ACCESSORY", "OTHER"}

// DecorTypes lists the accepted decor types.
var DecorTypes = []string{"LIGHTS", "RUGS", "DISPLAY_ITEMS", "FURNITURE", "STORAGE", "ORGANIZERS", "LAMPS", "OTHER"}

// TicketTypes lists the accepted ticket types.
var TicketTypes = []string{"SPORT", "EVENTS", "MOVIES", "PERFORMANCE", "OTHER"}
