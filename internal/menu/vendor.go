package menu

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// vendorString decodes a JSON string or number into a string. The vendor
// API is not consistent about quoting numeric fields.
type vendorString string

func (s *vendorString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = vendorString(v)
		return nil
	}
	*s = vendorString(b)
	return nil
}

func (s vendorString) String() string { return strings.TrimSpace(string(s)) }

// APIResponse is the vendor fetchMenu response.
type APIResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message,omitempty"`
	RestaurantID vendorString `json:"restaurant_id,omitempty"`
	Menu         *APIMenu     `json:"menu,omitempty"`
}

type APIMenu struct {
	Restaurants []APIRestaurant `json:"restaurants,omitempty"`
	Categories  []APICategory   `json:"categories,omitempty"`
	Items       []APIItem       `json:"items,omitempty"`
	Taxes       []APITax        `json:"taxes,omitempty"`
	Discounts   []APIDiscount   `json:"discounts,omitempty"`
}

type APIRestaurant struct {
	Details struct {
		RestaurantID   vendorString `json:"restaurantid"`
		RestaurantName string       `json:"restaurantname"`
		Address        string       `json:"address"`
		Contact        vendorString `json:"contact"`
	} `json:"details"`
}

type APICategory struct {
	CategoryID       vendorString `json:"categoryid"`
	CategoryName     string       `json:"categoryname"`
	CategoryImageURL string       `json:"category_image_url"`
	CategoryRank     vendorString `json:"categoryrank"`
	Active           vendorString `json:"active"`
}

type APIItem struct {
	ItemID          vendorString   `json:"itemid"`
	ItemName        string         `json:"itemname"`
	Price           vendorString   `json:"price"`
	ItemDescription string         `json:"itemdescription"`
	ItemCategoryID  vendorString   `json:"item_categoryid"`
	ItemImageURL    string         `json:"item_image_url"`
	ItemAttributeID vendorString   `json:"item_attributeid"`
	ItemRank        vendorString   `json:"itemrank"`
	IgnoreTaxes     vendorString   `json:"ignore_taxes"`
	Variation       []APIVariation `json:"variation"`
	Active          vendorString   `json:"active"`
	InStock         vendorString   `json:"in_stock"`
}

type APIVariation struct {
	VariationID   vendorString `json:"variationid"`
	Name          string       `json:"name"`
	Price         vendorString `json:"price"`
	VariationRank vendorString `json:"variationrank"`
}

type APITax struct {
	TaxID   vendorString `json:"taxid"`
	TaxName string       `json:"taxname"`
	Tax     vendorString `json:"tax"`
	Active  vendorString `json:"active"`
}

type APIDiscount struct {
	DiscountID        vendorString `json:"discountid"`
	DiscountName      string       `json:"discountname"`
	DiscountType      vendorString `json:"discounttype"`
	Discount          vendorString `json:"discount"`
	DiscountMinAmount vendorString `json:"discountminamount"`
	DiscountMaxAmount vendorString `json:"discountmaxamount"`
	Active            vendorString `json:"active"`
	IgnoreDiscount    vendorString `json:"ignore_discount"`
}

var amountPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)`)

// parseAmount reads the leading number of s, so "12abc" is 12. Anything
// that does not start with a number is zero.
func parseAmount(s vendorString) decimal.Decimal {
	str := strings.TrimSpace(s.String())
	if d, err := decimal.NewFromString(str); err == nil {
		return d
	}
	m := strings.TrimPrefix(amountPrefix.FindString(str), "+")
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseRank(s vendorString) int {
	n, err := strconv.Atoi(s.String())
	if err != nil {
		return 0
	}
	return n
}
