// Package menu normalizes the vendor POS menu into the storefront's catalog
// model and serves it with a short-lived cache.
package menu

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrMenuUnavailable is returned when the vendor menu cannot be fetched or
// does not carry a usable payload. There is no partial-menu mode.
var ErrMenuUnavailable = errors.New("menu data invalid or unavailable")

// Menu is the normalized catalog for one restaurant.
type Menu struct {
	Restaurant Restaurant
	Categories []Category
	Taxes      []TaxRule
	Discounts  []DiscountRule
}

// Restaurant is the restaurant identity carried by the menu response.
type Restaurant struct {
	ID      string
	Name    string
	Address string
	Contact string
}

type Category struct {
	ID         string
	Name       string
	Tagline    string
	HeroImage  string
	Layout     string
	Background string
	Items      []Item
}

// Item is an immutable catalog entry. When Variations is non-empty the
// item's own Price is not used by the cart; each variation is addable.
type Item struct {
	ID           string
	CategoryID   string
	Name         string
	Price        decimal.Decimal
	Image        string
	Description  string
	IsVeg        bool
	TaxInclusive bool
	Variations   []Variation
}

// Variation is a priced sub-option of an item (e.g. "Half" / "Full").
type Variation struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// TaxRule applies uniformly to the whole subtotal.
type TaxRule struct {
	ID      string
	Name    string
	Percent decimal.Decimal
	Active  bool
}

// Contributes reports whether the rule adds to the order tax.
func (t TaxRule) Contributes() bool {
	return t.Active && t.Percent.IsPositive()
}

type DiscountKind int

const (
	DiscountPercentage DiscountKind = iota + 1
	DiscountFixed
)

func (k DiscountKind) String() string {
	switch k {
	case DiscountPercentage:
		return "PERCENTAGE"
	case DiscountFixed:
		return "FIXED"
	default:
		return "UNKNOWN"
	}
}

// DiscountRule is a vendor discount record. It applies automatically when
// Active and Apply are set and the subtotal reaches MinOrderAmount; the same
// record can also be redeemed as a coupon by entering its Name.
type DiscountRule struct {
	ID                string
	Name              string
	Kind              DiscountKind
	Amount            decimal.Decimal
	MinOrderAmount    decimal.Decimal
	MaxDiscountAmount decimal.Decimal // zero means uncapped
	Active            bool
	Apply             bool
}

// Item looks up a catalog item by ID across all categories.
func (m *Menu) Item(id string) (Item, bool) {
	for _, c := range m.Categories {
		for _, it := range c.Items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return Item{}, false
}

// Variation looks up one of the item's variations by ID.
func (it Item) Variation(id string) (Variation, bool) {
	for _, v := range it.Variations {
		if v.ID == id {
			return v, true
		}
	}
	return Variation{}, false
}

// HasVariations reports whether the item must be added through a variation.
func (it Item) HasVariations() bool {
	return len(it.Variations) > 0
}
