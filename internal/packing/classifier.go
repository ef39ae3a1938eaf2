// Package packing partitions a delivery's active orders into the fixed
// pack/ship taxonomy the packing crew works from: private vs B2B, abo
// (subscription-quantity) vs custom, ship vs local pick-up, and for the
// private ship abos the standard 1..7 bag packing lines.
package packing

import (
	"fmt"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/store"
)

// BagBuckets is the number of standard packing lines for private ship
// abo orders, keyed by 250g bag count (1 through 7).
const BagBuckets = 7

type OrderSource interface {
	GetOrders(f store.OrderFilter) ([]models.Order, error)
}

type Classifier struct {
	Orders OrderSource
	Config *Config
}

func NewClassifier(orders OrderSource, cfg *Config) *Classifier {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Classifier{Orders: orders, Config: cfg}
}

// Preview is the grouped packing view. TotalCount always equals the sum
// of every leaf bucket; the special request list flags orders that also
// appear in a leaf and is not part of the total.
type Preview struct {
	PrivateAboShipBags [BagBuckets][]models.Order `json:"private_abo_ship_bags"`
	PrivateAboShipOther []models.Order            `json:"private_abo_ship_other"`
	PrivateAboPickup    []models.Order            `json:"private_abo_pickup"`
	PrivateCustomShip   []models.Order            `json:"private_custom_ship"`
	PrivateCustomPickup []models.Order            `json:"private_custom_pickup"`

	B2BAboShip      []models.Order `json:"b2b_abo_ship"`
	B2BAboPickup    []models.Order `json:"b2b_abo_pickup"`
	B2BCustomShip   []models.Order `json:"b2b_custom_ship"`
	B2BCustomPickup []models.Order `json:"b2b_custom_pickup"`

	SpecialRequests []models.Order `json:"special_requests"`

	TotalCount int `json:"total_count"`
}

// GeneratePreview loads all ACTIVE orders for the given deliveries and
// partitions them. Read-only.
func (c *Classifier) GeneratePreview(deliveryIDs []int64) (*Preview, error) {
	if len(deliveryIDs) == 0 {
		return nil, fmt.Errorf("packing: at least one delivery id is required")
	}

	orders, err := c.Orders.GetOrders(store.OrderFilter{
		DeliveryIDs: deliveryIDs,
		Statuses:    []models.OrderStatus{models.OrderStatusActive},
	})
	if err != nil {
		return nil, fmt.Errorf("packing: load orders: %w", err)
	}

	return Partition(orders, c.Config.ExcludedIDs()), nil
}

// Partition applies the taxonomy to an order set. Exposed separately so
// it stays testable without a store.
func Partition(orders []models.Order, excluded map[int64]struct{}) *Preview {
	p := &Preview{}

	for _, o := range orders {
		if o.SubscriptionID != nil {
			if _, skip := excluded[*o.SubscriptionID]; skip {
				continue
			}
		}

		if o.Subscription != nil && o.Subscription.SpecialRequest != "" &&
			o.Subscription.SpecialRequest != models.SpecialRequestNone {
			p.SpecialRequests = append(p.SpecialRequests, o)
		}

		// Orders without a subscription (one-off customs and imports)
		// are packed with the private flow.
		b2b := o.Subscription != nil && o.Subscription.Type == models.SubscriptionTypeB2B
		custom := o.Type == models.OrderTypeCustom
		ship := o.ShippingType != models.ShippingTypeLocalPickup

		switch {
		case b2b && custom && ship:
			p.B2BCustomShip = append(p.B2BCustomShip, o)
		case b2b && custom:
			p.B2BCustomPickup = append(p.B2BCustomPickup, o)
		case b2b && ship:
			p.B2BAboShip = append(p.B2BAboShip, o)
		case b2b:
			p.B2BAboPickup = append(p.B2BAboPickup, o)
		case custom && ship:
			p.PrivateCustomShip = append(p.PrivateCustomShip, o)
		case custom:
			p.PrivateCustomPickup = append(p.PrivateCustomPickup, o)
		case !ship:
			p.PrivateAboPickup = append(p.PrivateAboPickup, o)
		case o.Type == models.OrderTypeRenewal && o.Quantity250 >= 1 && o.Quantity250 <= BagBuckets:
			p.PrivateAboShipBags[o.Quantity250-1] = append(p.PrivateAboShipBags[o.Quantity250-1], o)
		default:
			// Non-renewal abos and bag counts off the standard lines.
			p.PrivateAboShipOther = append(p.PrivateAboShipOther, o)
		}
	}

	for _, bucket := range p.PrivateAboShipBags {
		p.TotalCount += len(bucket)
	}
	p.TotalCount += len(p.PrivateAboShipOther) + len(p.PrivateAboPickup) +
		len(p.PrivateCustomShip) + len(p.PrivateCustomPickup) +
		len(p.B2BAboShip) + len(p.B2BAboPickup) +
		len(p.B2BCustomShip) + len(p.B2BCustomPickup)

	return p
}
