// Package schedule resolves the roastery's weekly delivery calendar.
// Deliveries go out on Tuesdays; the first Tuesday of a month is the
// monthly subscription delivery and the third Tuesday the fortnightly
// in-between run. Everything here is pure date arithmetic.
package schedule

import (
	"time"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

// DeliveryWeekday is the fixed weekly roast/shipment day.
const DeliveryWeekday = time.Tuesday

// DeliveryDay pairs a resolved delivery date with its classification.
type DeliveryDay struct {
	Date time.Time
	Type models.DeliveryType
}

// Normalize truncates t to midnight UTC so calendar dates compare with ==.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextDeliveryDate returns the first delivery weekday strictly after ref.
// A ref that already falls on the delivery weekday advances a full week.
func NextDeliveryDate(ref time.Time) time.Time {
	d := Normalize(ref).AddDate(0, 0, 1)
	for d.Weekday() != DeliveryWeekday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// DeliveryDateOnOrAfter is the same-day-allowing variant used for
// classification lookups and renewal projections: a ref already on the
// delivery weekday resolves to itself.
func DeliveryDateOnOrAfter(ref time.Time) time.Time {
	d := Normalize(ref)
	for d.Weekday() != DeliveryWeekday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// FirstDeliveryDayOfMonth returns the first delivery weekday in the
// given month. It always lands within the first 7 days of the month.
func FirstDeliveryDayOfMonth(year int, month time.Month) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != DeliveryWeekday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// ThirdDeliveryDayOfMonth is exactly two weeks after the first.
func ThirdDeliveryDayOfMonth(year int, month time.Month) time.Time {
	return FirstDeliveryDayOfMonth(year, month).AddDate(0, 0, 14)
}

// Classify tags a delivery date against its month's landmarks.
func Classify(date time.Time) models.DeliveryType {
	d := Normalize(date)
	switch {
	case d.Equal(FirstDeliveryDayOfMonth(d.Year(), d.Month())):
		return models.DeliveryTypeMonthly
	case d.Equal(ThirdDeliveryDayOfMonth(d.Year(), d.Month())):
		return models.DeliveryTypeMonthly3rd
	default:
		return models.DeliveryTypeNormal
	}
}

// NextDelivery resolves the upcoming delivery day strictly after ref and
// classifies it. Deterministic: same ref, same result.
func NextDelivery(ref time.Time) DeliveryDay {
	date := NextDeliveryDate(ref)
	return DeliveryDay{Date: date, Type: Classify(date)}
}

// NextMonthlyDelivery returns the next MONTHLY delivery day on or after
// ref. If the current month's first delivery weekday has already passed,
// the rule rolls over to the following month.
func NextMonthlyDelivery(ref time.Time) time.Time {
	d := Normalize(ref)
	first := FirstDeliveryDayOfMonth(d.Year(), d.Month())
	if first.Before(d) {
		return NextMonthlyDelivery(time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0))
	}
	return first
}

// NextMonthly3rdDelivery returns the next MONTHLY_3RD delivery day on or
// after ref, rolling over to the following month when it has passed.
func NextMonthly3rdDelivery(ref time.Time) time.Time {
	d := Normalize(ref)
	third := ThirdDeliveryDayOfMonth(d.Year(), d.Month())
	if third.Before(d) {
		return NextMonthly3rdDelivery(time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0))
	}
	return third
}
