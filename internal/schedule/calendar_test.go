package schedule

import (
	"testing"
	"time"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDeliveryDate(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		// 2026-03-03 is the first Tuesday of March 2026.
		{"monday before", date(2026, time.March, 2), date(2026, time.March, 3)},
		{"same tuesday advances a week", date(2026, time.March, 3), date(2026, time.March, 10)},
		{"wednesday after", date(2026, time.March, 4), date(2026, time.March, 10)},
		{"month rollover", date(2026, time.March, 31), date(2026, time.April, 7)},
		{"year rollover", date(2026, time.December, 30), date(2027, time.January, 5)},
		{"ignores time of day", time.Date(2026, time.March, 2, 23, 59, 0, 0, time.UTC), date(2026, time.March, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDeliveryDate(tt.ref)
			if !got.Equal(tt.want) {
				t.Errorf("NextDeliveryDate(%v) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestDeliveryDateOnOrAfter_SameDay(t *testing.T) {
	tue := date(2026, time.March, 3)
	if got := DeliveryDateOnOrAfter(tue); !got.Equal(tue) {
		t.Errorf("DeliveryDateOnOrAfter(%v) = %v, want same day", tue, got)
	}
	if got := DeliveryDateOnOrAfter(date(2026, time.March, 1)); !got.Equal(tue) {
		t.Errorf("DeliveryDateOnOrAfter(Sunday) = %v, want %v", got, tue)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want models.DeliveryType
	}{
		{"first tuesday of march", date(2026, time.March, 3), models.DeliveryTypeMonthly},
		{"second tuesday", date(2026, time.March, 10), models.DeliveryTypeNormal},
		{"third tuesday", date(2026, time.March, 17), models.DeliveryTypeMonthly3rd},
		{"fourth tuesday", date(2026, time.March, 24), models.DeliveryTypeNormal},
		// September 2026 starts on a Tuesday.
		{"month starting on tuesday", date(2026, time.September, 1), models.DeliveryTypeMonthly},
		{"third in month starting on tuesday", date(2026, time.September, 15), models.DeliveryTypeMonthly3rd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.date); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

// The monthly landmark must be a Tuesday within the first 7 days of its
// month, and the third landmark exactly 14 days later.
func TestMonthLandmarks(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		first := FirstDeliveryDayOfMonth(2026, m)
		if first.Weekday() != DeliveryWeekday {
			t.Errorf("%v: first landmark %v is not a %v", m, first, DeliveryWeekday)
		}
		if first.Day() > 7 {
			t.Errorf("%v: first landmark %v outside first week", m, first)
		}
		third := ThirdDeliveryDayOfMonth(2026, m)
		if got := third.Sub(first); got != 14*24*time.Hour {
			t.Errorf("%v: third landmark offset = %v, want 336h", m, got)
		}
	}
}

func TestNextDelivery_Deterministic(t *testing.T) {
	ref := time.Date(2026, time.July, 9, 14, 30, 0, 0, time.UTC)
	a := NextDelivery(ref)
	b := NextDelivery(ref)
	if !a.Date.Equal(b.Date) || a.Type != b.Type {
		t.Errorf("NextDelivery not deterministic: %+v vs %+v", a, b)
	}
}

func TestNextMonthlyDelivery_RollsOver(t *testing.T) {
	// First Tuesday of March 2026 is the 3rd; asking after it must give April.
	got := NextMonthlyDelivery(date(2026, time.March, 4))
	want := date(2026, time.April, 7)
	if !got.Equal(want) {
		t.Errorf("NextMonthlyDelivery = %v, want %v", got, want)
	}

	// On the landmark itself it resolves to that same day.
	onDay := NextMonthlyDelivery(date(2026, time.March, 3))
	if !onDay.Equal(date(2026, time.March, 3)) {
		t.Errorf("NextMonthlyDelivery on landmark = %v, want same day", onDay)
	}
}

func TestNextMonthly3rdDelivery_RollsOver(t *testing.T) {
	got := NextMonthly3rdDelivery(date(2026, time.March, 18))
	want := date(2026, time.April, 21)
	if !got.Equal(want) {
		t.Errorf("NextMonthly3rdDelivery = %v, want %v", got, want)
	}
}
