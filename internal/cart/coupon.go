package cart

import (
	"fmt"
	"strings"

	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	"github.com/shopspring/decimal"
)

// Coupon outcome messages, shown to the customer as-is.
const (
	MsgCouponEmpty   = "Please enter a coupon code"
	MsgCouponInvalid = "Invalid coupon code"
	MsgCouponApplied = "Coupon applied successfully"
)

// CouponResult reports whether a code was applied. A failed attempt never
// changes the cart.
type CouponResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ApplyCoupon matches code against the names of active discount records,
// ignoring case and surrounding space. A successful match replaces any
// coupon already applied.
func (c *Cart) ApplyCoupon(code string) CouponResult {
	code = strings.TrimSpace(code)
	if code == "" {
		return CouponResult{Message: MsgCouponEmpty}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rule, ok := findCoupon(c.discounts, code)
	if !ok {
		return CouponResult{Message: MsgCouponInvalid}
	}

	subtotal := decimal.Zero
	for _, l := range c.lines {
		subtotal = subtotal.Add(l.Total())
	}
	if subtotal.LessThan(rule.MinOrderAmount) {
		return CouponResult{Message: minimumMessage(rule.MinOrderAmount)}
	}

	c.coupon = &rule
	return CouponResult{Success: true, Message: MsgCouponApplied}
}

// RemoveCoupon drops the applied coupon, if any.
func (c *Cart) RemoveCoupon() {
	c.mu.Lock()
	c.coupon = nil
	c.mu.Unlock()
}

// AppliedCoupon returns the applied coupon's name.
func (c *Cart) AppliedCoupon() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.coupon == nil {
		return "", false
	}
	return c.coupon.Name, true
}

func findCoupon(discounts []menu.DiscountRule, code string) (menu.DiscountRule, bool) {
	code = strings.TrimSpace(code)
	for _, d := range discounts {
		if d.Active && strings.EqualFold(strings.TrimSpace(d.Name), code) {
			return d, true
		}
	}
	return menu.DiscountRule{}, false
}

func minimumMessage(minAmount decimal.Decimal) string {
	return fmt.Sprintf("Minimum order amount of ₹%s required for this coupon", minAmount.String())
}
