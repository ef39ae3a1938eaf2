package delivery

import (
	"testing"
	"time"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/store"
)

// memStore is an in-memory delivery store keyed by calendar date.
type memStore struct {
	nextID     int64
	byDate     map[string]*models.Delivery
	createErrs int // counts create attempts that hit the unique constraint
}

func newMemStore() *memStore {
	return &memStore{byDate: map[string]*models.Delivery{}}
}

func (m *memStore) GetDeliveryByDate(date time.Time) (*models.Delivery, error) {
	if d, ok := m.byDate[date.Format("2006-01-02")]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetDeliveryBetween(from, to time.Time) (*models.Delivery, error) {
	var best *models.Delivery
	for _, d := range m.byDate {
		if !d.Date.Before(from) && d.Date.Before(to) {
			if best == nil || d.Date.Before(best.Date) {
				best = d
			}
		}
	}
	if best == nil {
		return nil, store.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *memStore) CreateDelivery(d *models.Delivery) error {
	key := d.Date.Format("2006-01-02")
	if _, ok := m.byDate[key]; ok {
		m.createErrs++
		return store.ErrDuplicate
	}
	m.nextID++
	d.ID = m.nextID
	cp := *d
	m.byDate[key] = &cp
	return nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGetOrCreate_CreatesForCurrentWeek(t *testing.T) {
	ms := newMemStore()
	r := NewRegistry(ms)
	// Wednesday 2026-03-04; next Tuesday is 2026-03-10.
	r.Now = fixedNow(time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC))

	d, err := r.GetOrCreate(nil)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	want := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	if !d.Date.Equal(want) {
		t.Errorf("delivery date = %v, want %v", d.Date, want)
	}
	if d.Type != models.DeliveryTypeNormal {
		t.Errorf("delivery type = %v, want NORMAL", d.Type)
	}
	if d.ID == 0 {
		t.Error("delivery was not persisted")
	}
}

func TestGetOrCreate_FindsExistingInWindow(t *testing.T) {
	ms := newMemStore()
	existing := &models.Delivery{Date: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), Type: models.DeliveryTypeNormal}
	if err := ms.CreateDelivery(existing); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(ms)
	r.Now = fixedNow(time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC))

	d, err := r.GetOrCreate(nil)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if d.ID != existing.ID {
		t.Errorf("got delivery %d, want existing %d", d.ID, existing.ID)
	}
	if ms.createErrs != 0 {
		t.Errorf("unexpected create attempts: %d", ms.createErrs)
	}
}

func TestGetOrCreate_ExactDateClassified(t *testing.T) {
	ms := newMemStore()
	r := NewRegistry(ms)
	r.Now = fixedNow(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))

	// First Tuesday of March 2026.
	ref := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	d, err := r.GetOrCreate(&ref)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !d.Date.Equal(ref) {
		t.Errorf("delivery date = %v, want %v", d.Date, ref)
	}
	if d.Type != models.DeliveryTypeMonthly {
		t.Errorf("delivery type = %v, want MONTHLY", d.Type)
	}
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	ms := newMemStore()
	r := NewRegistry(ms)
	r.Now = fixedNow(time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC))

	first, err := r.GetOrCreate(nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.GetOrCreate(nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("repeated resolution produced different rows: %d vs %d", first.ID, second.ID)
	}
	if len(ms.byDate) != 1 {
		t.Errorf("expected one delivery row, got %d", len(ms.byDate))
	}
}

// raceStore simulates losing the insert race: the row appears between the
// lookup and the create.
type raceStore struct {
	*memStore
	raced bool
}

func (r *raceStore) GetDeliveryByDate(date time.Time) (*models.Delivery, error) {
	d, err := r.memStore.GetDeliveryByDate(date)
	if err != nil && !r.raced {
		return nil, store.ErrNotFound
	}
	return d, err
}

func (r *raceStore) CreateDelivery(d *models.Delivery) error {
	if !r.raced {
		// Concurrent caller commits first.
		winner := *d
		winner.ID = 99
		r.byDate[d.Date.Format("2006-01-02")] = &winner
		r.raced = true
		return store.ErrDuplicate
	}
	return r.memStore.CreateDelivery(d)
}

func TestGetOrCreate_ConvergesOnInsertRace(t *testing.T) {
	rs := &raceStore{memStore: newMemStore()}
	r := NewRegistry(rs)
	r.Now = fixedNow(time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC))

	d, err := r.GetOrCreate(nil)
	if err != nil {
		t.Fatalf("GetOrCreate after race: %v", err)
	}
	if d.ID != 99 {
		t.Errorf("expected the race winner's row (id 99), got %d", d.ID)
	}
}
