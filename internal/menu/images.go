package menu

import (
	"encoding/binary"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var itemPlaceholders = []string{
	"/assets/placeholders/dish-1.jpg",
	"/assets/placeholders/dish-2.jpg",
	"/assets/placeholders/dish-3.jpg",
	"/assets/placeholders/dish-4.jpg",
	"/assets/placeholders/dish-5.jpg",
	"/assets/placeholders/dish-6.jpg",
}

var heroPlaceholders = []string{
	"/assets/hero-coffee.jpg",
	"/assets/hero-breakfast.jpg",
	"/assets/hero-pizza.jpg",
	"/assets/hero-salad.jpg",
	"/assets/hero-rolls.jpg",
}

// ItemImage returns the vendor URL when present, otherwise a placeholder
// that depends only on the item name.
func ItemImage(name, vendorURL string) string {
	if u := strings.TrimSpace(vendorURL); u != "" {
		return u
	}
	return pickPlaceholder(itemPlaceholders, name)
}

// HeroImage is ItemImage for category hero banners.
func HeroImage(name, vendorURL string) string {
	if u := strings.TrimSpace(vendorURL); u != "" {
		return u
	}
	return pickPlaceholder(heroPlaceholders, name)
}

// PlaceholderFor is used by clients that need to replace an image that
// failed to load with the same placeholder the normalizer would pick.
func PlaceholderFor(name string, hero bool) string {
	if hero {
		return pickPlaceholder(heroPlaceholders, name)
	}
	return pickPlaceholder(itemPlaceholders, name)
}

func pickPlaceholder(set []string, name string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(name))))
	idx := binary.BigEndian.Uint64(sum[:8]) % uint64(len(set))
	return set[idx]
}
