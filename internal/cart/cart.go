// Package cart holds one ordering session's line items and applied coupon
// and derives every monetary total from them.
package cart

import (
	"errors"
	"sync"

	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	"github.com/shopspring/decimal"
)

// ErrItemIDRequired is returned by Add for an item without an ID.
var ErrItemIDRequired = errors.New("item id is required")

// LineKind tags a Line as a bare item or an item with a chosen variation.
type LineKind int

const (
	LineSimple LineKind = iota + 1
	LineVariant
)

func (k LineKind) String() string {
	switch k {
	case LineSimple:
		return "SIMPLE"
	case LineVariant:
		return "VARIANT"
	default:
		return "UNKNOWN"
	}
}

// Key identifies a line. VariationID is empty for simple lines.
type Key struct {
	ItemID      string
	VariationID string
}

// Line is one priced, quantified cart entry. Variation is only meaningful
// when Kind is LineVariant.
type Line struct {
	Kind      LineKind
	Item      menu.Item
	Variation menu.Variation
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l Line) Key() Key {
	if l.Kind == LineVariant {
		return Key{ItemID: l.Item.ID, VariationID: l.Variation.ID}
	}
	return Key{ItemID: l.Item.ID}
}

// Total is UnitPrice × Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// VariationName is empty for simple lines.
func (l Line) VariationName() string {
	if l.Kind == LineVariant {
		return l.Variation.Name
	}
	return ""
}

// Cart is safe for concurrent use. Lines are only changed through its
// methods, which keeps at most one line per Key.
type Cart struct {
	mu        sync.Mutex
	lines     []Line
	coupon    *menu.DiscountRule
	taxes     []menu.TaxRule
	discounts []menu.DiscountRule
}

// New creates an empty cart priced with the given tax and discount tables.
func New(taxes []menu.TaxRule, discounts []menu.DiscountRule) *Cart {
	return &Cart{taxes: taxes, discounts: discounts}
}

// SetPricing swaps the tax and discount tables, e.g. after a menu reload.
// An applied coupon is kept only if its record is still present and active.
func (c *Cart) SetPricing(taxes []menu.TaxRule, discounts []menu.DiscountRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taxes = taxes
	c.discounts = discounts
	if c.coupon != nil {
		rule, ok := findCoupon(discounts, c.coupon.Name)
		if ok {
			c.coupon = &rule
		} else {
			c.coupon = nil
		}
	}
}

// Add puts one unit of item (or of the given variation) in the cart. The
// unit price is captured now: the variation price when variation is non-nil,
// else the item price.
func (c *Cart) Add(item menu.Item, variation *menu.Variation) error {
	if item.ID == "" {
		return ErrItemIDRequired
	}
	line := Line{Kind: LineSimple, Item: item, Quantity: 1, UnitPrice: item.Price}
	if variation != nil {
		line.Kind = LineVariant
		line.Variation = *variation
		line.UnitPrice = variation.Price
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(line.Key()); i >= 0 {
		c.lines[i].Quantity++
		return nil
	}
	c.lines = append(c.lines, line)
	return nil
}

// Remove takes one unit off the matching line and deletes the line when its
// last unit goes. Removing a line that is not in the cart does nothing.
func (c *Cart) Remove(itemID, variationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(Key{ItemID: itemID, VariationID: variationID})
	if i < 0 {
		return
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
		return
	}
	c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
}

// Quantity returns the quantity of the matching line, or 0.
func (c *Cart) Quantity(itemID, variationID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(Key{ItemID: itemID, VariationID: variationID}); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Clear empties the cart and drops the applied coupon.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.coupon = nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// TotalItems is the sum of all line quantities.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalItems()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Snapshot returns the lines and their totals from the same instant.
func (c *Cart) Snapshot() ([]Line, Totals) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...), c.totals()
}

// Priced is Snapshot plus the tax table the totals were computed with, all
// read under one lock.
func (c *Cart) Priced() ([]Line, Totals, []menu.TaxRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...), c.totals(), append([]menu.TaxRule(nil), c.taxes...)
}

// Settle takes ordered lines out of the cart after an order is placed and
// drops the coupon. Units added since the order was snapshotted stay.
func (c *Cart) Settle(ordered []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range ordered {
		i := c.indexOf(o.Key())
		if i < 0 {
			continue
		}
		if c.lines[i].Quantity > o.Quantity {
			c.lines[i].Quantity -= o.Quantity
			continue
		}
		c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
	}
	c.coupon = nil
}

// Taxes returns the tax table the cart prices with.
func (c *Cart) Taxes() []menu.TaxRule {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]menu.TaxRule(nil), c.taxes...)
}

func (c *Cart) indexOf(k Key) int {
	for i, l := range c.lines {
		if l.Key() == k {
			return i
		}
	}
	return -1
}

func (c *Cart) totalItems() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}
