package cart

import (
	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TaxLine is one tax rule's share of the order tax.
type TaxLine struct {
	ID      string
	Name    string
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

// DiscountLine is one discount rule's contribution.
type DiscountLine struct {
	ID     string
	Name   string
	Kind   menu.DiscountKind
	Amount decimal.Decimal
}

// Totals is derived from the cart on every read. Each amount is rounded
// to two decimals.
type Totals struct {
	Subtotal          decimal.Decimal
	Tax               decimal.Decimal
	TaxLines          []TaxLine
	RuleDiscount      decimal.Decimal
	RuleDiscountLines []DiscountLine
	CouponDiscount    decimal.Decimal
	Coupon            string
	GrandTotal        decimal.Decimal
	TotalItems        int
}

// Discount is the rule discount plus the coupon discount.
func (t Totals) Discount() decimal.Decimal {
	return t.RuleDiscount.Add(t.CouponDiscount)
}

// Totals computes subtotal, tax, discounts and grand total.
func (c *Cart) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals()
}

func (c *Cart) totals() Totals {
	subtotal := decimal.Zero
	for _, l := range c.lines {
		subtotal = subtotal.Add(l.Total())
	}

	t := Totals{
		Subtotal:       subtotal.Round(2),
		Tax:            decimal.Zero,
		RuleDiscount:   decimal.Zero,
		CouponDiscount: decimal.Zero,
		TotalItems:     c.totalItems(),
	}

	for _, rule := range c.taxes {
		if !rule.Contributes() {
			continue
		}
		amount := subtotal.Mul(rule.Percent).Div(hundred).Round(2)
		t.TaxLines = append(t.TaxLines, TaxLine{ID: rule.ID, Name: rule.Name, Percent: rule.Percent, Amount: amount})
		t.Tax = t.Tax.Add(amount)
	}

	// Rule discounts stack; each is judged on its own minimum.
	for _, rule := range c.discounts {
		if !rule.Active || !rule.Apply {
			continue
		}
		amount, ok := discountFor(rule, subtotal)
		if !ok {
			continue
		}
		t.RuleDiscountLines = append(t.RuleDiscountLines, DiscountLine{ID: rule.ID, Name: rule.Name, Kind: rule.Kind, Amount: amount})
		t.RuleDiscount = t.RuleDiscount.Add(amount)
	}

	if c.coupon != nil {
		t.Coupon = c.coupon.Name
		if amount, ok := discountFor(*c.coupon, subtotal); ok {
			t.CouponDiscount = amount
		}
	}

	t.GrandTotal = t.Subtotal.Add(t.Tax).Sub(t.RuleDiscount).Sub(t.CouponDiscount)
	if t.GrandTotal.IsNegative() {
		t.GrandTotal = decimal.Zero
	}
	return t
}

// discountFor prices rule against subtotal. ok is false when the subtotal is
// below the rule's minimum order amount. A cap of zero or less is no cap.
func discountFor(rule menu.DiscountRule, subtotal decimal.Decimal) (amount decimal.Decimal, ok bool) {
	if subtotal.LessThan(rule.MinOrderAmount) {
		return decimal.Zero, false
	}
	switch rule.Kind {
	case menu.DiscountPercentage:
		amount = subtotal.Mul(rule.Amount).Div(hundred)
	case menu.DiscountFixed:
		amount = rule.Amount
	default:
		return decimal.Zero, false
	}
	if rule.MaxDiscountAmount.IsPositive() && amount.GreaterThan(rule.MaxDiscountAmount) {
		amount = rule.MaxDiscountAmount
	}
	return amount.Round(2), true
}
