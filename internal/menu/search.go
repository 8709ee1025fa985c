package menu

import (
	"sort"
	"strings"
)

// Filter narrows the menu shown to a customer.
type Filter struct {
	Query   string
	VegOnly bool
}

func (f Filter) empty() bool {
	return strings.TrimSpace(f.Query) == "" && !f.VegOnly
}

// Search returns the categories that still have items after applying f.
// With a query, items match on a case-insensitive substring of their name
// or description, and categories with more matches come first (ties keep
// menu order). Categories left without items are dropped.
func Search(m *Menu, f Filter) []Category {
	if f.empty() {
		return m.Categories
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		var items []Item
		for _, it := range c.Items {
			if f.VegOnly && !it.IsVeg {
				continue
			}
			if query != "" && !matches(it, query) {
				continue
			}
			items = append(items, it)
		}
		if len(items) == 0 {
			continue
		}
		c.Items = items
		out = append(out, c)
	}

	if query != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return len(out[i].Items) > len(out[j].Items)
		})
	}
	return out
}

func matches(it Item, query string) bool {
	return strings.Contains(strings.ToLower(it.Name), query) ||
		strings.Contains(strings.ToLower(it.Description), query)
}
