package cart_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/biztalbox/avaya-food-ordering/internal/cart"
	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type cartTestContext struct {
	items     map[string]menu.Item
	taxes     []menu.TaxRule
	discounts []menu.DiscountRule
	cart      *cart.Cart
	coupon    cart.CouponResult
}

func (c *cartTestContext) reset() {
	c.items = map[string]menu.Item{}
	c.taxes = nil
	c.discounts = nil
	c.cart = nil
	c.coupon = cart.CouponResult{}
}

// current builds the cart on first use so Given steps can extend the
// pricing tables first.
func (c *cartTestContext) current() *cart.Cart {
	if c.cart == nil {
		c.cart = cart.New(c.taxes, c.discounts)
	}
	return c.cart
}

func (c *cartTestContext) theMenuHasAnItemPriced(name string, price int) error {
	c.items[name] = menu.Item{ID: name, Name: name, Price: decimal.NewFromInt(int64(price))}
	return nil
}

func (c *cartTestContext) theMenuHasAnItemWithVariation(name string, price int, variation string, vprice int) error {
	c.items[name] = menu.Item{
		ID:    name,
		Name:  name,
		Price: decimal.NewFromInt(int64(price)),
		Variations: []menu.Variation{
			{ID: variation, Name: variation, Price: decimal.NewFromInt(int64(vprice))},
		},
	}
	return nil
}

func (c *cartTestContext) anActiveTax(name string, percent int) error {
	c.taxes = append(c.taxes, menu.TaxRule{ID: name, Name: name, Percent: decimal.NewFromInt(int64(percent)), Active: true})
	return nil
}

func (c *cartTestContext) anAutomaticPercentageDiscount(name string, amount, minimum, maxAmount int) error {
	c.discounts = append(c.discounts, menu.DiscountRule{
		ID:                name,
		Name:              name,
		Kind:              menu.DiscountPercentage,
		Amount:            decimal.NewFromInt(int64(amount)),
		MinOrderAmount:    decimal.NewFromInt(int64(minimum)),
		MaxDiscountAmount: decimal.NewFromInt(int64(maxAmount)),
		Active:            true,
		Apply:             true,
	})
	return nil
}

func (c *cartTestContext) aFixedCoupon(name string, amount, minimum int) error {
	c.discounts = append(c.discounts, menu.DiscountRule{
		ID:             name,
		Name:           name,
		Kind:           menu.DiscountFixed,
		Amount:         decimal.NewFromInt(int64(amount)),
		MinOrderAmount: decimal.NewFromInt(int64(minimum)),
		Active:         true,
	})
	return nil
}

func (c *cartTestContext) aPercentageCoupon(name string, amount int) error {
	c.discounts = append(c.discounts, menu.DiscountRule{
		ID:     name,
		Name:   name,
		Kind:   menu.DiscountPercentage,
		Amount: decimal.NewFromInt(int64(amount)),
		Active: true,
	})
	return nil
}

func (c *cartTestContext) iAdd(name string) error {
	item, ok := c.items[name]
	if !ok {
		return fmt.Errorf("unknown item %q", name)
	}
	return c.current().Add(item, nil)
}

func (c *cartTestContext) iAddAs(name, variation string) error {
	item, ok := c.items[name]
	if !ok {
		return fmt.Errorf("unknown item %q", name)
	}
	v, ok := item.Variation(variation)
	if !ok {
		return fmt.Errorf("item %q has no variation %q", name, variation)
	}
	return c.current().Add(item, &v)
}

func (c *cartTestContext) iRemove(name string) error {
	c.current().Remove(name, "")
	return nil
}

func (c *cartTestContext) iApplyCoupon(code string) error {
	c.coupon = c.current().ApplyCoupon(code)
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if got := len(c.current().Lines()); got != n {
		return fmt.Errorf("lines: got %d, want %d", got, n)
	}
	return nil
}

func (c *cartTestContext) theCartHasItems(n int) error {
	if got := c.current().Totals().TotalItems; got != n {
		return fmt.Errorf("total items: got %d, want %d", got, n)
	}
	return nil
}

func (c *cartTestContext) theQuantityOfIs(name string, n int) error {
	if got := c.current().Quantity(name, ""); got != n {
		return fmt.Errorf("quantity of %s: got %d, want %d", name, got, n)
	}
	return nil
}

func (c *cartTestContext) theQuantityOfAsIs(name, variation string, n int) error {
	if got := c.current().Quantity(name, variation); got != n {
		return fmt.Errorf("quantity of %s/%s: got %d, want %d", name, variation, got, n)
	}
	return nil
}

func (c *cartTestContext) amountIs(label string, pick func(cart.Totals) decimal.Decimal) func(string) error {
	return func(want string) error {
		if got := pick(c.current().Totals()).StringFixed(2); got != want {
			return fmt.Errorf("%s: got %s, want %s", label, got, want)
		}
		return nil
	}
}

func (c *cartTestContext) theCouponResultIs(msg string) error {
	if c.coupon.Message != msg {
		return fmt.Errorf("coupon message: got %q, want %q", c.coupon.Message, msg)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the menu has an item "([^"]*)" priced (\d+)$`, tc.theMenuHasAnItemPriced)
	ctx.Step(`^the menu has an item "([^"]*)" priced (\d+) with variation "([^"]*)" priced (\d+)$`, tc.theMenuHasAnItemWithVariation)
	ctx.Step(`^an active tax "([^"]*)" of (\d+) percent$`, tc.anActiveTax)
	ctx.Step(`^an automatic percentage discount "([^"]*)" of (\d+) with minimum (\d+) and cap (\d+)$`, tc.anAutomaticPercentageDiscount)
	ctx.Step(`^a coupon "([^"]*)" worth (\d+) with minimum (\d+)$`, tc.aFixedCoupon)
	ctx.Step(`^a percentage coupon "([^"]*)" of (\d+)$`, tc.aPercentageCoupon)

	// When steps
	ctx.Step(`^I add "([^"]*)"$`, tc.iAdd)
	ctx.Step(`^I add "([^"]*)" as "([^"]*)"$`, tc.iAddAs)
	ctx.Step(`^I remove "([^"]*)"$`, tc.iRemove)
	ctx.Step(`^I apply coupon "([^"]*)"$`, tc.iApplyCoupon)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart has (\d+) items$`, tc.theCartHasItems)
	ctx.Step(`^the quantity of "([^"]*)" is (\d+)$`, tc.theQuantityOfIs)
	ctx.Step(`^the quantity of "([^"]*)" as "([^"]*)" is (\d+)$`, tc.theQuantityOfAsIs)
	ctx.Step(`^the subtotal is "([^"]*)"$`, tc.amountIs("subtotal", func(t cart.Totals) decimal.Decimal { return t.Subtotal }))
	ctx.Step(`^the tax is "([^"]*)"$`, tc.amountIs("tax", func(t cart.Totals) decimal.Decimal { return t.Tax }))
	ctx.Step(`^the rule discount is "([^"]*)"$`, tc.amountIs("rule discount", func(t cart.Totals) decimal.Decimal { return t.RuleDiscount }))
	ctx.Step(`^the coupon discount is "([^"]*)"$`, tc.amountIs("coupon discount", func(t cart.Totals) decimal.Decimal { return t.CouponDiscount }))
	ctx.Step(`^the grand total is "([^"]*)"$`, tc.amountIs("grand total", func(t cart.Totals) decimal.Decimal { return t.GrandTotal }))
	ctx.Step(`^the coupon result is "([^"]*)"$`, tc.theCouponResultIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
