package menu

import (
	"fmt"
	"sort"
	"strings"

	"github.com/biztalbox/avaya-food-ordering/internal/enum"
)

// Normalize maps a vendor menu response into the internal Menu model.
// A response without the success flag or without a menu payload fails with
// ErrMenuUnavailable.
func Normalize(resp *APIResponse) (*Menu, error) {
	if resp == nil || !resp.Success || resp.Menu == nil {
		return nil, ErrMenuUnavailable
	}
	api := resp.Menu

	categories := append([]APICategory(nil), api.Categories...)
	sort.SliceStable(categories, func(i, j int) bool {
		return parseRank(categories[i].CategoryRank) < parseRank(categories[j].CategoryRank)
	})

	// Group items by category once, preserving vendor order for stable ties.
	byCategory := make(map[string][]APIItem)
	for _, it := range api.Items {
		cid := it.ItemCategoryID.String()
		byCategory[cid] = append(byCategory[cid], it)
	}

	menu := &Menu{
		Restaurant: normalizeRestaurant(resp),
		Categories: make([]Category, 0, len(categories)),
		Taxes:      normalizeTaxes(api.Taxes),
		Discounts:  normalizeDiscounts(api.Discounts),
	}

	for i, c := range categories {
		cid := c.CategoryID.String()
		apiItems := byCategory[cid]
		sort.SliceStable(apiItems, func(a, b int) bool {
			return parseRank(apiItems[a].ItemRank) < parseRank(apiItems[b].ItemRank)
		})

		items := make([]Item, 0, len(apiItems))
		for _, it := range apiItems {
			items = append(items, normalizeItem(it))
		}

		menu.Categories = append(menu.Categories, Category{
			ID:         cid,
			Name:       c.CategoryName,
			HeroImage:  HeroImage(c.CategoryName, c.CategoryImageURL),
			Layout:     layoutFor(i),
			Background: backgroundFor(i),
			Items:      items,
		})
	}

	return menu, nil
}

func normalizeItem(it APIItem) Item {
	item := Item{
		ID:          it.ItemID.String(),
		CategoryID:  it.ItemCategoryID.String(),
		Name:        it.ItemName,
		Price:       parseAmount(it.Price),
		Description: it.ItemDescription,
		Image:       ItemImage(it.ItemName, it.ItemImageURL),
		// item_attributeid: "1" = veg, everything else is non-veg
		IsVeg:        it.ItemAttributeID.String() == enum.AttributeVeg,
		TaxInclusive: it.IgnoreTaxes.String() == enum.FlagOff,
	}

	if len(it.Variation) > 0 {
		vars := append([]APIVariation(nil), it.Variation...)
		sort.SliceStable(vars, func(a, b int) bool {
			return parseRank(vars[a].VariationRank) < parseRank(vars[b].VariationRank)
		})
		item.Variations = make([]Variation, 0, len(vars))
		for _, v := range vars {
			item.Variations = append(item.Variations, Variation{
				ID:    v.VariationID.String(),
				Name:  v.Name,
				Price: parseAmount(v.Price),
			})
		}
	}
	return item
}

func normalizeRestaurant(resp *APIResponse) Restaurant {
	r := Restaurant{ID: resp.RestaurantID.String()}
	if len(resp.Menu.Restaurants) == 0 {
		return r
	}
	d := resp.Menu.Restaurants[0].Details
	if r.ID == "" {
		r.ID = d.RestaurantID.String()
	}
	r.Name = d.RestaurantName
	r.Address = d.Address
	r.Contact = d.Contact.String()
	return r
}

// normalizeTaxes keeps every vendor tax; rules with a non-positive percent
// stay in the table but never contribute (see TaxRule.Contributes).
func normalizeTaxes(taxes []APITax) []TaxRule {
	out := make([]TaxRule, 0, len(taxes))
	for _, t := range taxes {
		out = append(out, TaxRule{
			ID:      t.TaxID.String(),
			Name:    t.TaxName,
			Percent: parseAmount(t.Tax),
			Active:  t.Active.String() != enum.FlagOff,
		})
	}
	return out
}

// normalizeDiscounts keeps percentage and fixed discounts. Other vendor
// kinds (BOGO, freebies) have no pricing rule here and are dropped.
func normalizeDiscounts(discounts []APIDiscount) []DiscountRule {
	out := make([]DiscountRule, 0, len(discounts))
	for _, d := range discounts {
		var kind DiscountKind
		switch d.DiscountType.String() {
		case enum.DiscountKindPercentage:
			kind = DiscountPercentage
		case enum.DiscountKindFixed:
			kind = DiscountFixed
		default:
			continue
		}
		ignore := d.IgnoreDiscount.String()
		out = append(out, DiscountRule{
			ID:                d.DiscountID.String(),
			Name:              strings.TrimSpace(d.DiscountName),
			Kind:              kind,
			Amount:            parseAmount(d.Discount),
			MinOrderAmount:    parseAmount(d.DiscountMinAmount),
			MaxDiscountAmount: parseAmount(d.DiscountMaxAmount),
			Active:            d.Active.String() == enum.FlagOn,
			Apply:             ignore == "" || ignore == enum.FlagOff,
		})
	}
	return out
}

func layoutFor(index int) string {
	if index%2 == 0 {
		return enum.LayoutRight
	}
	return enum.LayoutLeft
}

func backgroundFor(index int) string {
	variants := [...]string{enum.BackgroundDefault, enum.BackgroundDark, enum.BackgroundLight}
	return variants[index%len(variants)]
}

// String is used in log lines.
func (m *Menu) String() string {
	items := 0
	for _, c := range m.Categories {
		items += len(c.Items)
	}
	return fmt.Sprintf("menu(%s: %d categories, %d items, %d taxes, %d discounts)",
		m.Restaurant.ID, len(m.Categories), items, len(m.Taxes), len(m.Discounts))
}
