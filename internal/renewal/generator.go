// Package renewal generates the recurring orders for a subscription
// delivery day.
package renewal

import (
	"fmt"
	"time"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/store"
)

type Status string

const (
	// StatusCreated means the run completed; OrdersCreated may be zero
	// when every eligible subscription already had its renewal order.
	StatusCreated Status = "CREATED"
	// StatusNotRunDay means the weekly schedule gate blocked the run.
	StatusNotRunDay Status = "NOT_RUN_DAY"
	// StatusNotSubscriptionDelivery means the upcoming delivery is a
	// NORMAL one; renewals only exist for MONTHLY / MONTHLY_3RD days.
	StatusNotSubscriptionDelivery Status = "NOT_SUBSCRIPTION_DELIVERY"
)

// Result is the structured summary every run returns.
type Result struct {
	Status        Status              `json:"status"`
	DeliveryID    int64               `json:"delivery_id,omitempty"`
	DeliveryDate  time.Time           `json:"delivery_date"`
	DeliveryType  models.DeliveryType `json:"delivery_type,omitempty"`
	OrdersCreated int                 `json:"orders_created"`
}

type DeliveryResolver interface {
	GetOrCreate(refDate *time.Time) (*models.Delivery, error)
}

type SubscriptionStore interface {
	GetSubscriptions(f store.SubscriptionFilter) ([]models.Subscription, error)
}

type OrderStore interface {
	RenewalSubscriptionIDs(deliveryID int64) (map[int64]struct{}, error)
	BulkCreateOrders(orders []models.Order) (int, error)
}

type Generator struct {
	Deliveries    DeliveryResolver
	Subscriptions SubscriptionStore
	Orders        OrderStore
	// RunDay gates the weekly cron trigger; runs on other days are
	// no-ops unless explicitly forced.
	RunDay time.Weekday
	Now    func() time.Time
}

func NewGenerator(d DeliveryResolver, s SubscriptionStore, o OrderStore, runDay time.Weekday) *Generator {
	return &Generator{Deliveries: d, Subscriptions: s, Orders: o, RunDay: runDay, Now: time.Now}
}

// EligibleForDelivery reports whether an active subscription renews on a
// delivery of the given classification.
//
// MONTHLY days serve gift subscriptions plus the B2B monthly and
// fortnightly plans; MONTHLY_3RD days serve the B2B fortnightly and
// third-week plans. Fortnightly private subscriptions renew through the
// webshop on their own payment dates and are never generated here.
func EligibleForDelivery(sub models.Subscription, dt models.DeliveryType) bool {
	if sub.Status != models.SubscriptionStatusActive {
		return false
	}
	switch dt {
	case models.DeliveryTypeMonthly:
		if sub.Type == models.SubscriptionTypePrivateGift && sub.Frequency == models.FrequencyMonthly {
			return true
		}
		return sub.Type == models.SubscriptionTypeB2B &&
			(sub.Frequency == models.FrequencyMonthly || sub.Frequency == models.FrequencyFortnightly)
	case models.DeliveryTypeMonthly3rd:
		return sub.Type == models.SubscriptionTypeB2B &&
			(sub.Frequency == models.FrequencyFortnightly || sub.Frequency == models.FrequencyMonthly3rd)
	default:
		return false
	}
}

// CreateRenewalOrders resolves the upcoming delivery and creates one
// renewal order per eligible subscription that does not already have one.
// The write is a single all-or-nothing bulk insert.
func (g *Generator) CreateRenewalOrders(ignoreScheduleGate bool) (*Result, error) {
	if !ignoreScheduleGate && g.Now().Weekday() != g.RunDay {
		return &Result{Status: StatusNotRunDay}, nil
	}

	d, err := g.Deliveries.GetOrCreate(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve upcoming delivery: %w", err)
	}

	result := &Result{
		DeliveryID:   d.ID,
		DeliveryDate: d.Date,
		DeliveryType: d.Type,
	}
	if d.Type == models.DeliveryTypeNormal {
		result.Status = StatusNotSubscriptionDelivery
		return result, nil
	}

	subs, err := g.Subscriptions.GetSubscriptions(store.SubscriptionFilter{
		Statuses: []models.SubscriptionStatus{models.SubscriptionStatusActive},
	})
	if err != nil {
		return nil, fmt.Errorf("load active subscriptions: %w", err)
	}

	existing, err := g.Orders.RenewalSubscriptionIDs(d.ID)
	if err != nil {
		return nil, fmt.Errorf("load existing renewals for delivery %d: %w", d.ID, err)
	}

	var orders []models.Order
	for _, sub := range subs {
		if !EligibleForDelivery(sub, d.Type) {
			continue
		}
		if _, ok := existing[sub.ID]; ok {
			// Expected dedup path, not an error.
			continue
		}
		orders = append(orders, NewRenewalOrder(sub, d.ID))
	}

	created, err := g.Orders.BulkCreateOrders(orders)
	if err != nil {
		return nil, fmt.Errorf("bulk create renewal orders: %w", err)
	}

	result.Status = StatusCreated
	result.OrdersCreated = created
	return result, nil
}

// NewRenewalOrder builds the renewal order for one subscription: bag
// quantities and shipping fields copied verbatim, status ACTIVE.
func NewRenewalOrder(sub models.Subscription, deliveryID int64) models.Order {
	subID := sub.ID
	return models.Order{
		SubscriptionID: &subID,
		DeliveryID:     deliveryID,
		Type:           models.OrderTypeRenewal,
		Status:         models.OrderStatusActive,
		ShippingType:   sub.ShippingType,
		Quantity250:    sub.Quantity250,
		Quantity500:    sub.Quantity500,
		Quantity1200:   sub.Quantity1200,
		Name:           sub.RecipientName,
		Email:          sub.RecipientEmail,
		Mobile:         sub.RecipientMobile,
		Street1:        sub.RecipientStreet1,
		Street2:        sub.RecipientStreet2,
		Postcode:       sub.RecipientPostcode,
		City:           sub.RecipientCity,
		Country:        sub.RecipientCountry,
	}
}
