// Package delivery finds or creates the Delivery row backing a resolved
// calendar slot.
package delivery

import (
	"errors"
	"fmt"
	"time"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/schedule"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/store"
)

// Store is the persistence surface the registry needs.
type Store interface {
	GetDeliveryByDate(date time.Time) (*models.Delivery, error)
	GetDeliveryBetween(from, to time.Time) (*models.Delivery, error)
	CreateDelivery(d *models.Delivery) error
}

type Registry struct {
	Store Store
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewRegistry(s Store) *Registry {
	return &Registry{Store: s, Now: time.Now}
}

// GetOrCreate resolves the delivery for refDate, or for the current week
// when refDate is nil, creating the row on first use.
//
// The only concurrency guard is the uniqueness constraint on the date
// column: if a concurrent caller wins the insert we re-read their row,
// so callers resolving the same week always converge.
func (r *Registry) GetOrCreate(refDate *time.Time) (*models.Delivery, error) {
	if refDate != nil {
		date := schedule.Normalize(*refDate)
		d, err := r.Store.GetDeliveryByDate(date)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return r.create(schedule.DeliveryDateOnOrAfter(date))
	}

	today := schedule.Normalize(r.Now())
	d, err := r.Store.GetDeliveryBetween(today, today.AddDate(0, 0, 7))
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return r.create(schedule.NextDeliveryDate(r.Now()))
}

func (r *Registry) create(date time.Time) (*models.Delivery, error) {
	d := &models.Delivery{
		Date: date,
		Type: schedule.Classify(date),
	}
	err := r.Store.CreateDelivery(d)
	if err == nil {
		return d, nil
	}
	if errors.Is(err, store.ErrDuplicate) {
		// Lost the race; the winner's row is the delivery.
		return r.Store.GetDeliveryByDate(date)
	}
	return nil, fmt.Errorf("create delivery for %s: %w", date.Format("2006-01-02"), err)
}
