package models

import (
	"time"
)

// DeliveryType classifies a delivery day. MONTHLY is the first Tuesday of
// a month, MONTHLY_3RD the third; everything else is a NORMAL delivery day.
type DeliveryType string

const (
	DeliveryTypeNormal     DeliveryType = "NORMAL"
	DeliveryTypeMonthly    DeliveryType = "MONTHLY"
	DeliveryTypeMonthly3rd DeliveryType = "MONTHLY_3RD"
)

type SubscriptionType string

const (
	SubscriptionTypePrivate     SubscriptionType = "PRIVATE"
	SubscriptionTypePrivateGift SubscriptionType = "PRIVATE_GIFT"
	SubscriptionTypeB2B         SubscriptionType = "B2B"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive     SubscriptionStatus = "ACTIVE"
	SubscriptionStatusNotStarted SubscriptionStatus = "NOT_STARTED"
	SubscriptionStatusOnHold     SubscriptionStatus = "ON_HOLD"
	SubscriptionStatusPassive    SubscriptionStatus = "PASSIVE"
	SubscriptionStatusCompleted  SubscriptionStatus = "COMPLETED"
	SubscriptionStatusDeleted    SubscriptionStatus = "DELETED"
)

type SubscriptionFrequency string

const (
	FrequencyMonthly     SubscriptionFrequency = "MONTHLY"
	FrequencyMonthly3rd  SubscriptionFrequency = "MONTHLY_3RD"
	FrequencyFortnightly SubscriptionFrequency = "FORTNIGHTLY"
)

type SpecialRequest string

const (
	SpecialRequestNone           SpecialRequest = "NONE"
	SpecialRequestTwoCoffeeTypes SpecialRequest = "TWO_COFFEE_TYPES"
	SpecialRequestNoDarkRoast    SpecialRequest = "NO_DARK_ROAST"
)

type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusOnHold    OrderStatus = "ON_HOLD"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusDeleted   OrderStatus = "DELETED"
)

type OrderType string

const (
	OrderTypeRenewal    OrderType = "RENEWAL"
	OrderTypeNonRenewal OrderType = "NON_RENEWAL"
	OrderTypeCustom     OrderType = "CUSTOM"
)

type ShippingType string

const (
	ShippingTypeShip        ShippingType = "SHIP"
	ShippingTypeLocalPickup ShippingType = "LOCAL_PICK_UP"
)

// Coffee is a roastable product. Referenced by delivery slots and by
// custom-order items; read-only for the planning code.
type Coffee struct {
	ID          int64     `json:"id"`
	ProductCode string    `json:"product_code"` // short code, e.g. "ETM"
	Name        string    `json:"name"`
	Status      string    `json:"status"` // "in_stock", "out_of_stock", "archived"
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Delivery is one scheduled roast/shipment date. Up to four coffees are
// assigned manually after the row is created; slot ids stay nil until then.
// Dates are unique, which is what makes find-or-create safe.
type Delivery struct {
	ID        int64        `json:"id"`
	Date      time.Time    `json:"date"` // normalized to midnight UTC
	Type      DeliveryType `json:"type"`
	CoffeeIDs [4]*int64    `json:"coffee_ids"` // slots 1..4
	Orders    []Order      `json:"orders,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Coffee returns the coffee id assigned to slot (1-based), or nil.
func (d *Delivery) Coffee(slot int) *int64 {
	if slot < 1 || slot > 4 {
		return nil
	}
	return d.CoffeeIDs[slot-1]
}

type Subscription struct {
	ID             int64                 `json:"id"`
	Type           SubscriptionType      `json:"type"`
	Status         SubscriptionStatus    `json:"status"`
	Frequency      SubscriptionFrequency `json:"frequency"`
	Quantity250    int                   `json:"quantity250"`
	Quantity500    int                   `json:"quantity500"`
	Quantity1200   int                   `json:"quantity1200"`
	ShippingType   ShippingType          `json:"shipping_type"`
	SpecialRequest SpecialRequest        `json:"special_request"`

	RecipientName     string `json:"recipient_name"`
	RecipientEmail    string `json:"recipient_email"`
	RecipientMobile   string `json:"recipient_mobile"`
	RecipientStreet1  string `json:"recipient_street1"`
	RecipientStreet2  string `json:"recipient_street2"`
	RecipientPostcode string `json:"recipient_postcode"`
	RecipientCity     string `json:"recipient_city"`
	RecipientCountry  string `json:"recipient_country"`

	InternalNote string `json:"internal_note"`

	// Set for subscriptions imported from the webshop; nil otherwise.
	WebshopSubscriptionID *int64     `json:"webshop_subscription_id,omitempty"`
	NextPaymentDate       *time.Time `json:"next_payment_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BagCount is the total number of bags across all size tiers.
func (s *Subscription) BagCount() int {
	return s.Quantity250 + s.Quantity500 + s.Quantity1200
}

type Order struct {
	ID             int64        `json:"id"`
	SubscriptionID *int64       `json:"subscription_id,omitempty"`
	DeliveryID     int64        `json:"delivery_id"`
	Type           OrderType    `json:"type"`
	Status         OrderStatus  `json:"status"`
	ShippingType   ShippingType `json:"shipping_type"`

	Quantity250  int `json:"quantity250"`
	Quantity500  int `json:"quantity500"`
	Quantity1200 int `json:"quantity1200"`

	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Street1  string `json:"street1"`
	Street2  string `json:"street2"`
	Postcode string `json:"postcode"`
	City     string `json:"city"`
	Country  string `json:"country"`

	CustomerNote string `json:"customer_note"`
	InternalNote string `json:"internal_note"`

	// Correlation id in the webshop; only set for imported orders.
	WebshopOrderID *int64 `json:"webshop_order_id,omitempty"`
	TrackingURL    string `json:"tracking_url,omitempty"`

	Items []OrderItem `json:"items,omitempty"`

	// Populated on joined reads, never written back through the order.
	Subscription *Subscription `json:"subscription,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is a custom-order line referencing a specific coffee.
// Variation is the bag size in grams ("250", "500" or "1200").
type OrderItem struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	CoffeeID  int64  `json:"coffee_id"`
	Variation string `json:"variation"`
	Quantity  int    `json:"quantity"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt hash
}
