package checkout

import (
	"strconv"
	"time"

	"github.com/biztalbox/avaya-food-ordering/internal/cart"
	"github.com/biztalbox/avaya-food-ordering/internal/enum"
	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	"github.com/biztalbox/avaya-food-ordering/internal/profile"
	"github.com/shopspring/decimal"
)

const (
	urgentTime  = 20
	minPrepTime = 20
	zeroAmount  = "0"
)

// Credentials are the static vendor credentials carried in the order body.
type Credentials struct {
	AppKey      string
	AppSecret   string
	AccessToken string
}

// SaveOrderRequest is the vendor save_order body.
type SaveOrderRequest struct {
	AppKey      string    `json:"app_key"`
	AppSecret   string    `json:"app_secret"`
	AccessToken string    `json:"access_token"`
	OrderInfo   OrderInfo `json:"orderinfo"`
	UDID        string    `json:"udid"`
	DeviceType  string    `json:"device_type"`
}

type OrderInfo struct {
	OrderInfo OrderInfoDetails `json:"OrderInfo"`
}

type OrderInfoDetails struct {
	Restaurant RestaurantSection `json:"Restaurant"`
	Customer   CustomerSection   `json:"Customer"`
	Order      OrderSection      `json:"Order"`
	OrderItem  OrderItemSection  `json:"OrderItem"`
	Tax        TaxSection        `json:"Tax"`
	Discount   DiscountSection   `json:"Discount"`
}

type RestaurantSection struct {
	Details profile.Profile `json:"details"`
}

type CustomerSection struct {
	Details CustomerDetails `json:"details"`
}

type CustomerDetails struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

type OrderSection struct {
	Details OrderDetails `json:"details"`
}

type GSTDetail struct {
	GSTLiable string `json:"gst_liable"`
	Amount    string `json:"amount"`
}

type OrderDetails struct {
	OrderID         string      `json:"orderID"`
	PreorderDate    string      `json:"preorder_date"`
	PreorderTime    string      `json:"preorder_time"`
	ServiceCharge   string      `json:"service_charge"`
	SCTaxAmount     string      `json:"sc_tax_amount"`
	DeliveryCharges string      `json:"delivery_charges"`
	DCTaxPercentage string      `json:"dc_tax_percentage"`
	DCTaxAmount     string      `json:"dc_tax_amount"`
	DCGSTDetails    []GSTDetail `json:"dc_gst_details"`
	PackingCharges  string      `json:"packing_charges"`
	PCTaxAmount     string      `json:"pc_tax_amount"`
	PCTaxPercentage string      `json:"pc_tax_percentage"`
	PCGSTDetails    []GSTDetail `json:"pc_gst_details"`
	OrderType       string      `json:"order_type"`
	OndcBap         string      `json:"ondc_bap"`
	AdvancedOrder   string      `json:"advanced_order"`
	UrgentOrder     bool        `json:"urgent_order"`
	UrgentTime      int         `json:"urgent_time"`
	PaymentType     string      `json:"payment_type"`
	TableNo         string      `json:"table_no"`
	NoOfPersons     string      `json:"no_of_persons"`
	DiscountTotal   string      `json:"discount_total"`
	TaxTotal        string      `json:"tax_total"`
	DiscountType    string      `json:"discount_type"`
	Total           string      `json:"total"`
	Description     string      `json:"description"`
	CreatedOn       string      `json:"created_on"`
	EnableDelivery  int         `json:"enable_delivery"`
	MinPrepTime     int         `json:"min_prep_time"`
	CallbackURL     string      `json:"callback_url"`
	CollectCash     string      `json:"collect_cash"`
	OTP             string      `json:"otp"`
}

type OrderItemSection struct {
	Details []OrderItemDetail `json:"details"`
}

type ItemTax struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TaxPercentage string `json:"tax_percentage"`
	Amount        string `json:"amount"`
}

type AddonSection struct {
	Details []AddonItemDetail `json:"details"`
}

// AddonItemDetail is part of the vendor schema; the storefront never sends
// addons.
type AddonItemDetail struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GroupName string `json:"group_name"`
	Price     string `json:"price"`
	GroupID   int    `json:"group_id"`
	Quantity  string `json:"quantity"`
}

type OrderItemDetail struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	TaxInclusive  bool         `json:"tax_inclusive"`
	GSTLiability  string       `json:"gst_liability"`
	ItemTax       []ItemTax    `json:"item_tax"`
	ItemDiscount  string       `json:"item_discount"`
	Price         string       `json:"price"`
	FinalPrice    string       `json:"final_price"`
	Quantity      string       `json:"quantity"`
	Description   string       `json:"description"`
	VariationName string       `json:"variation_name"`
	VariationID   string       `json:"variation_id"`
	AddonItem     AddonSection `json:"AddonItem"`
}

type TaxSection struct {
	Details []TaxDetail `json:"details"`
}

type TaxDetail struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Type                string `json:"type"`
	Price               string `json:"price"`
	Tax                 string `json:"tax"`
	RestaurantLiableAmt string `json:"restaurant_liable_amt"`
}

type DiscountSection struct {
	Details []DiscountDetail `json:"details"`
}

type DiscountDetail struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Price string `json:"price"`
}

// PayloadInput is everything BuildPayload reads. Lines and Totals should
// come from one cart.Snapshot.
type PayloadInput struct {
	Credentials Credentials
	Restaurant  profile.Profile
	Form        Form
	TableNo     string
	Lines       []cart.Line
	Totals      cart.Totals
	Taxes       []menu.TaxRule
	OrderID     string
	Now         time.Time
}

// BuildPayload maps a cart snapshot and contact form to the vendor order
// body. The order discount is split evenly across lines, not by price.
func BuildPayload(in PayloadInput) *SaveOrderRequest {
	form := in.Form.Normalized()
	discount := in.Totals.Discount()

	taxes := make([]menu.TaxRule, 0, len(in.Taxes))
	for _, t := range in.Taxes {
		if t.Contributes() {
			taxes = append(taxes, t)
		}
	}

	itemDiscount := decimal.Zero
	itemDiscountText := zeroAmount
	if discount.IsPositive() && len(in.Lines) > 0 {
		itemDiscount = discount.Div(decimal.NewFromInt(int64(len(in.Lines)))).Round(2)
		itemDiscountText = itemDiscount.StringFixed(2)
	}

	items := make([]OrderItemDetail, 0, len(in.Lines))
	for _, l := range in.Lines {
		lineTotal := l.Total()
		itemTaxes := make([]ItemTax, 0, len(taxes))
		for _, t := range taxes {
			itemTaxes = append(itemTaxes, ItemTax{
				ID:            t.ID,
				Name:          t.Name,
				TaxPercentage: t.Percent.String(),
				Amount:        lineTotal.Mul(t.Percent).Div(decimal.NewFromInt(100)).StringFixed(2),
			})
		}
		detail := OrderItemDetail{
			ID:           l.Item.ID,
			Name:         l.Item.Name,
			TaxInclusive: l.Item.TaxInclusive,
			GSTLiability: enum.GSTLiableRestaurant,
			ItemTax:      itemTaxes,
			ItemDiscount: itemDiscountText,
			Price:        l.UnitPrice.StringFixed(2),
			FinalPrice:   lineTotal.Sub(itemDiscount).StringFixed(2),
			Quantity:     strconv.Itoa(l.Quantity),
			AddonItem:    AddonSection{Details: []AddonItemDetail{}},
		}
		if l.Kind == cart.LineVariant {
			detail.VariationID = l.Variation.ID
			detail.VariationName = l.Variation.Name
		}
		items = append(items, detail)
	}

	taxDetails := make([]TaxDetail, 0, len(taxes))
	for _, t := range taxes {
		taxDetails = append(taxDetails, TaxDetail{
			ID:                  t.ID,
			Title:               t.Name,
			Type:                enum.TaxTypePercentage,
			Price:               t.Percent.String(),
			Tax:                 in.Totals.Subtotal.Mul(t.Percent).Div(decimal.NewFromInt(100)).StringFixed(2),
			RestaurantLiableAmt: "0.00",
		})
	}

	discounts := []DiscountDetail{}
	if discount.IsPositive() {
		discounts = append(discounts, DiscountDetail{
			ID:    "0",
			Title: "Discount",
			Type:  enum.DiscountTypeFlat,
			Price: discount.StringFixed(2),
		})
	}

	date := in.Now.Format("2006-01-02")
	clock := in.Now.Format("15:04:05")
	total := in.Totals.GrandTotal.StringFixed(2)

	return &SaveOrderRequest{
		AppKey:      in.Credentials.AppKey,
		AppSecret:   in.Credentials.AppSecret,
		AccessToken: in.Credentials.AccessToken,
		OrderInfo: OrderInfo{OrderInfo: OrderInfoDetails{
			Restaurant: RestaurantSection{Details: in.Restaurant},
			Customer: CustomerSection{Details: CustomerDetails{
				Name:  form.Name,
				Phone: form.Phone,
			}},
			Order: OrderSection{Details: OrderDetails{
				OrderID:         in.OrderID,
				PreorderDate:    date,
				PreorderTime:    clock,
				ServiceCharge:   zeroAmount,
				SCTaxAmount:     zeroAmount,
				DeliveryCharges: zeroAmount,
				DCTaxPercentage: zeroAmount,
				DCTaxAmount:     zeroAmount,
				DCGSTDetails:    zeroGST(),
				PackingCharges:  zeroAmount,
				PCTaxAmount:     zeroAmount,
				PCTaxPercentage: zeroAmount,
				PCGSTDetails:    zeroGST(),
				OrderType:       enum.OrderTypeDineIn,
				OndcBap:         enum.OndcBap,
				AdvancedOrder:   enum.AdvancedOrderNo,
				UrgentOrder:     false,
				UrgentTime:      urgentTime,
				PaymentType:     enum.PaymentTypeCOD,
				TableNo:         in.TableNo,
				NoOfPersons:     zeroAmount,
				DiscountTotal:   discount.StringFixed(2),
				TaxTotal:        in.Totals.Tax.StringFixed(2),
				DiscountType:    enum.DiscountTypeFlat,
				Total:           total,
				Description:     form.Remark,
				CreatedOn:       date + " " + clock,
				EnableDelivery:  0,
				MinPrepTime:     minPrepTime,
				CallbackURL:     "",
				CollectCash:     total,
				OTP:             "",
			}},
			OrderItem: OrderItemSection{Details: items},
			Tax:       TaxSection{Details: taxDetails},
			Discount:  DiscountSection{Details: discounts},
		}},
		UDID:       "",
		DeviceType: enum.DeviceTypeWeb,
	}
}

func zeroGST() []GSTDetail {
	return []GSTDetail{
		{GSTLiable: enum.GSTLiableVendor, Amount: zeroAmount},
		{GSTLiable: enum.GSTLiableRestaurant, Amount: zeroAmount},
	}
}
