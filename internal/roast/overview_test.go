package roast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

func TestDistributeRoundRobin(t *testing.T) {
	tests := []struct {
		q    int
		want [4]int
	}{
		{0, [4]int{0, 0, 0, 0}},
		{1, [4]int{1, 0, 0, 0}},
		{2, [4]int{1, 1, 0, 0}},
		{3, [4]int{1, 1, 1, 0}},
		{4, [4]int{1, 1, 1, 1}},
		{5, [4]int{2, 1, 1, 1}},
		{7, [4]int{2, 2, 2, 1}},
		{8, [4]int{2, 2, 2, 2}},
		{-1, [4]int{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		if got := DistributeRoundRobin(tt.q); got != tt.want {
			t.Errorf("DistributeRoundRobin(%d) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

// Conservation: the slot sum equals Q and no slot leads another by more
// than one unit.
func TestDistributeRoundRobin_Conservation(t *testing.T) {
	for q := 0; q <= 100; q++ {
		slots := DistributeRoundRobin(q)
		sum, min, max := 0, slots[0], slots[0]
		for _, n := range slots {
			sum += n
			if n < min {
				min = n
			}
			if n > max {
				max = n
			}
		}
		if sum != q {
			t.Fatalf("q=%d: slot sum %d != q", q, sum)
		}
		if max-min > 1 {
			t.Fatalf("q=%d: slots %v differ by more than 1", q, slots)
		}
	}
}

func i64(v int64) *int64 { return &v }

func testDelivery(dt models.DeliveryType) *models.Delivery {
	return &models.Delivery{
		ID:        1,
		Date:      time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		Type:      dt,
		CoffeeIDs: [4]*int64{i64(10), i64(11), i64(12), i64(13)},
	}
}

var testCoffees = []models.Coffee{
	{ID: 10, ProductCode: "ETM", Name: "Etiopia Mokka"},
	{ID: 11, ProductCode: "KEN", Name: "Kenya Kiambu"},
	{ID: 12, ProductCode: "GUA", Name: "Guatemala Antigua"},
	{ID: 13, ProductCode: "BRA", Name: "Brasil Santos"},
	{ID: 14, ProductCode: "COL", Name: "Colombia Huila"},
}

func TestGetRoastOverview_RequiresDelivery(t *testing.T) {
	if _, err := GetRoastOverview(nil, nil, nil); err != ErrNoDelivery {
		t.Errorf("err = %v, want ErrNoDelivery", err)
	}
}

func TestGetRoastOverview_SubscriptionEstimate(t *testing.T) {
	d := testDelivery(models.DeliveryTypeMonthly)
	subs := []models.Subscription{
		{ID: 1, Type: models.SubscriptionTypeB2B, Frequency: models.FrequencyMonthly,
			Status: models.SubscriptionStatusActive, Quantity250: 5},
		// Ineligible on a MONTHLY day; must not contribute.
		{ID: 2, Type: models.SubscriptionTypePrivate, Frequency: models.FrequencyMonthly,
			Status: models.SubscriptionStatusActive, Quantity250: 100},
	}

	o, err := GetRoastOverview(subs, d, testCoffees)
	if err != nil {
		t.Fatal(err)
	}
	want := [4]int{2, 1, 1, 1}
	for i, s := range o.Slots {
		if s.Count250 != want[i] {
			t.Errorf("slot %d count250 = %d, want %d", i+1, s.Count250, want[i])
		}
	}
	if o.SubscriptionEstimates != 1 {
		t.Errorf("subscription estimates = %d, want 1", o.SubscriptionEstimates)
	}
	if got := o.Slots[0].TotalKg; !got.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("slot 1 kg = %s, want 0.5", got)
	}
}

func TestGetRoastOverview_NormalDeliverySkipsMonthlyEstimates(t *testing.T) {
	d := testDelivery(models.DeliveryTypeNormal)
	subs := []models.Subscription{
		{ID: 1, Type: models.SubscriptionTypeB2B, Frequency: models.FrequencyMonthly,
			Status: models.SubscriptionStatusActive, Quantity250: 8},
	}
	o, err := GetRoastOverview(subs, d, testCoffees)
	if err != nil {
		t.Fatal(err)
	}
	if o.SubscriptionEstimates != 0 {
		t.Errorf("estimates on NORMAL delivery = %d, want 0", o.SubscriptionEstimates)
	}
}

func TestGetRoastOverview_FortnightlyProjection(t *testing.T) {
	d := testDelivery(models.DeliveryTypeNormal)
	nextPayment := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) // Sunday -> Tuesday 3rd
	otherPayment := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)

	subs := []models.Subscription{
		{ID: 1, Type: models.SubscriptionTypePrivate, Frequency: models.FrequencyFortnightly,
			Status: models.SubscriptionStatusActive, Quantity250: 4, NextPaymentDate: &nextPayment},
		// Projects onto the following week, not this delivery.
		{ID: 2, Type: models.SubscriptionTypePrivate, Frequency: models.FrequencyFortnightly,
			Status: models.SubscriptionStatusActive, Quantity250: 4, NextPaymentDate: &otherPayment},
		// No known payment date: nothing to project.
		{ID: 3, Type: models.SubscriptionTypePrivate, Frequency: models.FrequencyFortnightly,
			Status: models.SubscriptionStatusActive, Quantity250: 4},
	}

	o, err := GetRoastOverview(subs, d, testCoffees)
	if err != nil {
		t.Fatal(err)
	}
	if o.SubscriptionEstimates != 1 {
		t.Fatalf("estimates = %d, want 1", o.SubscriptionEstimates)
	}
	if o.Slots[0].Count250 != 1 || o.Slots[3].Count250 != 1 {
		t.Errorf("projection not distributed: %+v", o.Slots)
	}
}

// A fortnightly private subscription with an actual renewal order on the
// delivery is counted once, through the order.
func TestGetRoastOverview_NoDoubleCounting(t *testing.T) {
	d := testDelivery(models.DeliveryTypeNormal)
	nextPayment := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	subID := int64(1)

	d.Orders = []models.Order{
		{ID: 100, SubscriptionID: &subID, DeliveryID: 1,
			Type: models.OrderTypeRenewal, Status: models.OrderStatusActive,
			Quantity250: 6, // differs from the standing quantity on purpose
			Subscription: &models.Subscription{ID: subID,
				Type: models.SubscriptionTypePrivate, Frequency: models.FrequencyFortnightly}},
	}
	subs := []models.Subscription{
		{ID: subID, Type: models.SubscriptionTypePrivate, Frequency: models.FrequencyFortnightly,
			Status: models.SubscriptionStatusActive, Quantity250: 4, NextPaymentDate: &nextPayment},
	}

	o, err := GetRoastOverview(subs, d, testCoffees)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, s := range o.Slots {
		total += s.Count250
	}
	if total != 6 {
		t.Errorf("total 250g bags = %d, want 6 (actual order only)", total)
	}
	if o.SubscriptionEstimates != 0 || o.OrderContributions != 1 {
		t.Errorf("audit counters = %d/%d, want 0/1", o.SubscriptionEstimates, o.OrderContributions)
	}
}

// Monthly renewals already generated must not be added on top of the
// subscription estimate.
func TestGetRoastOverview_MonthlyRenewalOrderNotDoubleCounted(t *testing.T) {
	d := testDelivery(models.DeliveryTypeMonthly)
	subID := int64(1)
	d.Orders = []models.Order{
		{ID: 100, SubscriptionID: &subID, DeliveryID: 1,
			Type: models.OrderTypeRenewal, Status: models.OrderStatusActive,
			Quantity250: 5,
			Subscription: &models.Subscription{ID: subID,
				Type: models.SubscriptionTypeB2B, Frequency: models.FrequencyMonthly}},
	}
	subs := []models.Subscription{
		{ID: subID, Type: models.SubscriptionTypeB2B, Frequency: models.FrequencyMonthly,
			Status: models.SubscriptionStatusActive, Quantity250: 5},
	}

	o, err := GetRoastOverview(subs, d, testCoffees)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, s := range o.Slots {
		total += s.Count250
	}
	if total != 5 {
		t.Errorf("total 250g bags = %d, want 5 (estimate only)", total)
	}
}

func TestGetRoastOverview_CustomOrderSlotMatching(t *testing.T) {
	d := testDelivery(models.DeliveryTypeNormal)
	d.Orders = []models.Order{
		{ID: 100, DeliveryID: 1, Type: models.OrderTypeCustom, Status: models.OrderStatusActive,
			Items: []models.OrderItem{
				{CoffeeID: 12, Variation: "250", Quantity: 3}, // slot 3
				{CoffeeID: 10, Variation: "500", Quantity: 2}, // slot 1
				{CoffeeID: 14, Variation: "250", Quantity: 4}, // not on delivery
				{CoffeeID: 14, Variation: "1200", Quantity: 1},
			}},
	}

	o, err := GetRoastOverview(nil, d, testCoffees)
	if err != nil {
		t.Fatal(err)
	}
	if o.Slots[2].Count250 != 3 {
		t.Errorf("slot 3 count250 = %d, want 3", o.Slots[2].Count250)
	}
	if o.Slots[0].Count500 != 2 {
		t.Errorf("slot 1 count500 = %d, want 2", o.Slots[0].Count500)
	}
	if len(o.NotSetOnDelivery) != 1 {
		t.Fatalf("not-set list = %+v, want one coffee", o.NotSetOnDelivery)
	}
	u := o.NotSetOnDelivery[0]
	if u.CoffeeID != 14 || u.ProductCode != "COL" || u.Count250 != 4 || u.Count1200 != 1 {
		t.Errorf("unassigned coffee = %+v", u)
	}
}

func TestGetRoastOverview_SkipsCancelledOrders(t *testing.T) {
	d := testDelivery(models.DeliveryTypeNormal)
	d.Orders = []models.Order{
		{ID: 1, DeliveryID: 1, Type: models.OrderTypeNonRenewal, Status: models.OrderStatusCancelled, Quantity250: 9},
		{ID: 2, DeliveryID: 1, Type: models.OrderTypeNonRenewal, Status: models.OrderStatusCompleted, Quantity250: 4},
	}
	o, err := GetRoastOverview(nil, d, testCoffees)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, s := range o.Slots {
		total += s.Count250
	}
	if total != 4 {
		t.Errorf("total = %d, want 4 (completed only)", total)
	}
	if o.OrderContributions != 1 {
		t.Errorf("order contributions = %d, want 1", o.OrderContributions)
	}
}

func TestGetRoastOverview_Deterministic(t *testing.T) {
	d := testDelivery(models.DeliveryTypeMonthly)
	subs := []models.Subscription{
		{ID: 1, Type: models.SubscriptionTypeB2B, Frequency: models.FrequencyMonthly,
			Status: models.SubscriptionStatusActive, Quantity250: 5, Quantity500: 3, Quantity1200: 2},
	}
	a, err := GetRoastOverview(subs, d, testCoffees)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GetRoastOverview(subs, d, testCoffees)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Slots {
		if a.Slots[i].Count250 != b.Slots[i].Count250 ||
			a.Slots[i].Count500 != b.Slots[i].Count500 ||
			a.Slots[i].Count1200 != b.Slots[i].Count1200 ||
			!a.Slots[i].TotalKg.Equal(b.Slots[i].TotalKg) {
			t.Fatalf("slot %d differs between runs", i+1)
		}
	}
}

func TestTotalKg(t *testing.T) {
	tests := []struct {
		c250, c500, c1200 int
		want              string
	}{
		{2, 0, 0, "0.5"},
		{0, 0, 1, "1.2"},
		{1, 1, 1, "1.95"},
		{0, 0, 0, "0"},
	}
	for _, tt := range tests {
		got := totalKg(tt.c250, tt.c500, tt.c1200)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("totalKg(%d,%d,%d) = %s, want %s", tt.c250, tt.c500, tt.c1200, got, tt.want)
		}
	}
}
