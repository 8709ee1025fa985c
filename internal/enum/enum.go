package enum

// ── Group A: Vendor menu codes (fixed by the POS menu API) ──

const (
	DiscountKindPercentage = "1"
	DiscountKindFixed      = "2"
)

const (
	AttributeVeg    = "1"
	AttributeNonVeg = "2"
)

const (
	FlagOn  = "1"
	FlagOff = "0"
)

// ── Group B: Vendor order defaults (dine-in, cash on delivery) ──

const (
	OrderTypeDineIn     = "D"
	PaymentTypeCOD      = "COD"
	DiscountTypeFlat    = "F"
	TaxTypePercentage   = "P"
	GSTLiableVendor     = "vendor"
	GSTLiableRestaurant = "restaurant"
	DeviceTypeWeb       = "Web"
	OndcBap             = "buyerAppName"
	AdvancedOrderNo     = "N"
)

// ── Group C: Service-side state ──

const (
	CheckoutIdle       = "IDLE"
	CheckoutSubmitting = "SUBMITTING"
	CheckoutSuccess    = "SUCCESS"
	CheckoutFailed     = "FAILED"
)

const (
	EventCartUpdated    = "cart.updated"
	EventCheckoutState  = "checkout.state"
	EventOrderSubmitted = "order.submitted"
)

const (
	LayoutRight = "right"
	LayoutLeft  = "left"
)

const (
	BackgroundDefault = "default"
	BackgroundDark    = "dark"
	BackgroundLight   = "light"
)
