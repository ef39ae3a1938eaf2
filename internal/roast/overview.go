// Package roast aggregates subscription and order data into the
// roast-quantity forecast for a delivery day: how many bags of each size
// go to each of the four coffee slots, and how many kilos that is.
package roast

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/renewal"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/schedule"
)

// ErrNoDelivery is returned when the overview is requested without a
// delivery to aggregate against.
var ErrNoDelivery = errors.New("roast: delivery is required")

// Bag weights in grams per size tier.
const (
	gram250  = 250
	gram500  = 500
	gram1200 = 1200
)

// SlotSummary is the per-slot bag and weight total across all sources.
type SlotSummary struct {
	CoffeeID    *int64          `json:"coffee_id,omitempty"`
	ProductCode string          `json:"product_code,omitempty"`
	Count250    int             `json:"count250"`
	Count500    int             `json:"count500"`
	Count1200   int             `json:"count1200"`
	TotalKg     decimal.Decimal `json:"total_kg"`
}

// UnassignedCoffee collects custom-order items whose coffee is not
// assigned to any of the delivery's slots. Deduplicated per coffee.
type UnassignedCoffee struct {
	CoffeeID    int64  `json:"coffee_id"`
	ProductCode string `json:"product_code"`
	Name        string `json:"name"`
	Count250    int    `json:"count250"`
	Count500    int    `json:"count500"`
	Count1200   int    `json:"count1200"`
}

// Overview is the aggregated forecast/actual roast breakdown for one
// delivery.
type Overview struct {
	DeliveryID   int64               `json:"delivery_id"`
	DeliveryDate time.Time           `json:"delivery_date"`
	DeliveryType models.DeliveryType `json:"delivery_type"`

	Slots            [4]SlotSummary     `json:"slots"`
	NotSetOnDelivery []UnassignedCoffee `json:"not_set_on_delivery"`

	// Audit counters: how many sources were folded into the numbers.
	SubscriptionEstimates int `json:"subscription_estimates"`
	OrderContributions    int `json:"order_contributions"`
}

// DistributeRoundRobin assigns q units to the four slots cyclically
// starting at slot 1, so no slot ends up more than one unit ahead of any
// other and the slot sum always equals q.
func DistributeRoundRobin(q int) [4]int {
	var slots [4]int
	if q <= 0 {
		return slots
	}
	base := q / 4
	rest := q % 4
	for i := 0; i < 4; i++ {
		slots[i] = base
		if i < rest {
			slots[i]++
		}
	}
	return slots
}

// tally accumulates bag counts per size tier per slot.
type tally struct {
	count250  [4]int
	count500  [4]int
	count1200 [4]int
}

func (t *tally) addDistributed(q250, q500, q1200 int) {
	for i, n := range DistributeRoundRobin(q250) {
		t.count250[i] += n
	}
	for i, n := range DistributeRoundRobin(q500) {
		t.count500[i] += n
	}
	for i, n := range DistributeRoundRobin(q1200) {
		t.count1200[i] += n
	}
}

// GetRoastOverview computes the forecast for the delivery from two
// additive sources: estimates from the active subscription base and
// actual orders already placed on the delivery. Read-only and
// deterministic for identical input.
func GetRoastOverview(subs []models.Subscription, d *models.Delivery, coffees []models.Coffee) (*Overview, error) {
	if d == nil {
		return nil, ErrNoDelivery
	}

	o := &Overview{
		DeliveryID:   d.ID,
		DeliveryDate: d.Date,
		DeliveryType: d.Type,
	}

	// Renewal orders already on the delivery, by subscription. These
	// decide when an estimate would double-count an actual order.
	renewalBySub := make(map[int64]struct{})
	for _, ord := range d.Orders {
		if ord.Type == models.OrderTypeRenewal && ord.SubscriptionID != nil && countableStatus(ord.Status) {
			renewalBySub[*ord.SubscriptionID] = struct{}{}
		}
	}

	var t tally

	// Source 1: estimates from the subscription base.
	for _, sub := range subs {
		if renewal.EligibleForDelivery(sub, d.Type) {
			t.addDistributed(sub.Quantity250, sub.Quantity500, sub.Quantity1200)
			o.SubscriptionEstimates++
			continue
		}
		if projectedFortnightlyRenewal(sub, d.Date) {
			if _, hasOrder := renewalBySub[sub.ID]; hasOrder {
				// The actual order is counted below instead.
				continue
			}
			t.addDistributed(sub.Quantity250, sub.Quantity500, sub.Quantity1200)
			o.SubscriptionEstimates++
		}
	}

	// Source 2: actual orders on the delivery.
	notSet := make(map[int64]*UnassignedCoffee)
	for _, ord := range d.Orders {
		if !countableStatus(ord.Status) {
			continue
		}
		switch ord.Type {
		case models.OrderTypeNonRenewal:
			t.addDistributed(ord.Quantity250, ord.Quantity500, ord.Quantity1200)
			o.OrderContributions++
		case models.OrderTypeCustom:
			addCustomOrder(&t, d, ord, coffees, notSet)
			o.OrderContributions++
		case models.OrderTypeRenewal:
			// Monthly renewals are already covered by the subscription
			// estimate; only the webshop-driven fortnightly private
			// renewals carry their own quantities here.
			if isFortnightlyPrivate(ord.Subscription) {
				t.addDistributed(ord.Quantity250, ord.Quantity500, ord.Quantity1200)
				o.OrderContributions++
			}
		}
	}

	for i := 0; i < 4; i++ {
		s := SlotSummary{
			CoffeeID:  d.CoffeeIDs[i],
			Count250:  t.count250[i],
			Count500:  t.count500[i],
			Count1200: t.count1200[i],
		}
		if s.CoffeeID != nil {
			if c := findCoffee(coffees, *s.CoffeeID); c != nil {
				s.ProductCode = c.ProductCode
			}
		}
		s.TotalKg = totalKg(s.Count250, s.Count500, s.Count1200)
		o.Slots[i] = s
	}

	o.NotSetOnDelivery = make([]UnassignedCoffee, 0, len(notSet))
	for _, u := range notSet {
		o.NotSetOnDelivery = append(o.NotSetOnDelivery, *u)
	}
	sort.Slice(o.NotSetOnDelivery, func(i, j int) bool {
		return o.NotSetOnDelivery[i].ProductCode < o.NotSetOnDelivery[j].ProductCode
	})

	return o, nil
}

// totalKg converts tier counts to kilograms.
func totalKg(c250, c500, c1200 int) decimal.Decimal {
	grams := int64(c250*gram250 + c500*gram500 + c1200*gram1200)
	return decimal.NewFromInt(grams).Div(decimal.NewFromInt(1000))
}

// countableStatus: ACTIVE and COMPLETED orders count toward the roast.
func countableStatus(s models.OrderStatus) bool {
	return s == models.OrderStatusActive || s == models.OrderStatusCompleted
}

func isFortnightlyPrivate(sub *models.Subscription) bool {
	return sub != nil &&
		sub.Type == models.SubscriptionTypePrivate &&
		sub.Frequency == models.FrequencyFortnightly
}

// projectedFortnightlyRenewal reports whether a fortnightly private
// subscription is expected to renew on the delivery date: the first
// delivery weekday on or after its next payment date.
func projectedFortnightlyRenewal(sub models.Subscription, deliveryDate time.Time) bool {
	if sub.Status != models.SubscriptionStatusActive {
		return false
	}
	if sub.Type != models.SubscriptionTypePrivate || sub.Frequency != models.FrequencyFortnightly {
		return false
	}
	if sub.NextPaymentDate == nil {
		return false
	}
	return schedule.DeliveryDateOnOrAfter(*sub.NextPaymentDate).Equal(schedule.Normalize(deliveryDate))
}

// addCustomOrder matches each line item to the delivery's slots by
// coffee identity. Items whose coffee is not on the delivery go to the
// "not set on delivery" list instead.
func addCustomOrder(t *tally, d *models.Delivery, ord models.Order, coffees []models.Coffee, notSet map[int64]*UnassignedCoffee) {
	for _, item := range ord.Items {
		slot := -1
		for i, id := range d.CoffeeIDs {
			if id != nil && *id == item.CoffeeID {
				slot = i
				break
			}
		}
		if slot >= 0 {
			switch item.Variation {
			case "500":
				t.count500[slot] += item.Quantity
			case "1200":
				t.count1200[slot] += item.Quantity
			default:
				t.count250[slot] += item.Quantity
			}
			continue
		}

		u, ok := notSet[item.CoffeeID]
		if !ok {
			u = &UnassignedCoffee{CoffeeID: item.CoffeeID}
			if c := findCoffee(coffees, item.CoffeeID); c != nil {
				u.ProductCode = c.ProductCode
				u.Name = c.Name
			}
			notSet[item.CoffeeID] = u
		}
		switch item.Variation {
		case "500":
			u.Count500 += item.Quantity
		case "1200":
			u.Count1200 += item.Quantity
		default:
			u.Count250 += item.Quantity
		}
	}
}

func findCoffee(coffees []models.Coffee, id int64) *models.Coffee {
	for i := range coffees {
		if coffees[i].ID == id {
			return &coffees[i]
		}
	}
	return nil
}
