package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

const dateLayout = "2006-01-02"

const deliveryColumns = `id, delivery_date, type, coffee1_id, coffee2_id, coffee3_id, coffee4_id, created_at`

func scanDelivery(row interface{ Scan(...any) error }) (*models.Delivery, error) {
	var d models.Delivery
	var date time.Time
	if err := row.Scan(&d.ID, &date, &d.Type, &d.CoffeeIDs[0], &d.CoffeeIDs[1], &d.CoffeeIDs[2], &d.CoffeeIDs[3], &d.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// The driver hands DATE columns back as time.Time; pin to midnight
	// UTC so date equality holds across the codebase.
	d.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}

func (s *Store) GetDeliveryByID(id int64) (*models.Delivery, error) {
	row := s.DB.QueryRow(`SELECT `+deliveryColumns+` FROM deliveries WHERE id = ?`, id)
	return scanDelivery(row)
}

// GetDeliveryByDate looks up the delivery on that exact calendar day.
func (s *Store) GetDeliveryByDate(date time.Time) (*models.Delivery, error) {
	row := s.DB.QueryRow(`SELECT `+deliveryColumns+` FROM deliveries WHERE delivery_date = ?`,
		date.Format(dateLayout))
	return scanDelivery(row)
}

// GetDeliveryBetween returns the earliest delivery with from <= date < to.
func (s *Store) GetDeliveryBetween(from, to time.Time) (*models.Delivery, error) {
	row := s.DB.QueryRow(`SELECT `+deliveryColumns+` FROM deliveries
		WHERE delivery_date >= ? AND delivery_date < ?
		ORDER BY delivery_date ASC LIMIT 1`,
		from.Format(dateLayout), to.Format(dateLayout))
	return scanDelivery(row)
}

// CreateDelivery inserts a new delivery row. A date collision (two
// callers resolving the same calendar week) surfaces as ErrDuplicate so
// the caller can re-find the winner's row.
func (s *Store) CreateDelivery(d *models.Delivery) error {
	res, err := s.DB.Exec(`
		INSERT INTO deliveries (delivery_date, type, coffee1_id, coffee2_id, coffee3_id, coffee4_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, d.Date.Format(dateLayout), d.Type, d.CoffeeIDs[0], d.CoffeeIDs[1], d.CoffeeIDs[2], d.CoffeeIDs[3])
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (s *Store) GetRecentDeliveries(limit, offset int) ([]models.Delivery, error) {
	rows, err := s.DB.Query(`SELECT `+deliveryColumns+` FROM deliveries
		ORDER BY delivery_date DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, *d)
	}
	return deliveries, rows.Err()
}

func (s *Store) GetTotalDeliveriesCount() (int, error) {
	var count int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM deliveries`).Scan(&count)
	return count, err
}

// SetDeliveryCoffees assigns the four coffee slots in one update.
func (s *Store) SetDeliveryCoffees(id int64, coffeeIDs [4]*int64) error {
	res, err := s.DB.Exec(`UPDATE deliveries
		SET coffee1_id = ?, coffee2_id = ?, coffee3_id = ?, coffee4_id = ?
		WHERE id = ?`,
		coffeeIDs[0], coffeeIDs[1], coffeeIDs[2], coffeeIDs[3], id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
