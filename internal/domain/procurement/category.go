package procurement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the product family a shipment belongs to.
// Each category has its own lifecycle and quantity unit.
type Category string

const (
	CategoryIron   Category = "iron"
	CategoryCement Category = "cement"
	CategoryWood   Category = "wood"
	CategoryPaint  Category = "paint"
)

// AllCategories lists the categories in display order
var AllCategories = []Category{CategoryCement, CategoryIron, CategoryWood, CategoryPaint}

// ParseCategory normalizes and validates a category name
func ParseCategory(value string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(value)))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category: %q", value)
	}
	return c, nil
}

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryIron, CategoryCement, CategoryWood, CategoryPaint:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// CodePrefix is the three-letter tag used in shipment codes
func (c Category) CodePrefix() string {
	switch c {
	case CategoryIron:
		return "IRN"
	case CategoryCement:
		return "CEM"
	case CategoryWood:
		return "WOD"
	case CategoryPaint:
		return "PNT"
	}
	return "GEN"
}

// QuantityUnit is the unit quantities of this category are counted in
func (c Category) QuantityUnit() string {
	switch c {
	case CategoryIron:
		return "tonne"
	case CategoryCement:
		return "bag"
	case CategoryWood:
		return "piece"
	case CategoryPaint:
		return "bucket"
	}
	return "unit"
}

// EstimateMarkup is applied to cost per unit to estimate a selling price
// while no sales exist to derive an average from.
func (c Category) EstimateMarkup() decimal.Decimal {
	switch c {
	case CategoryCement:
		return decimal.RequireFromString("1.20")
	case CategoryIron:
		return decimal.RequireFromString("1.25")
	default:
		return decimal.RequireFromString("1.30")
	}
}

// SellsThroughInventory reports whether received goods become stock units
// sold at the counter rather than being sold directly off the shipment.
func (c Category) SellsThroughInventory() bool {
	return c == CategoryIron
}

// RequiresReception reports whether the category models ordered vs received
// discrepancies, making the reception the only way into the sellable state.
func (c Category) RequiresReception() bool {
	return c != CategoryCement
}
