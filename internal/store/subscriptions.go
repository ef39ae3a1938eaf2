package store

import (
	"database/sql"
	"time"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

const subscriptionColumns = `id, type, status, frequency, quantity250, quantity500, quantity1200,
	shipping_type, special_request, recipient_name, recipient_email, recipient_mobile,
	recipient_street1, recipient_street2, recipient_postcode, recipient_city, recipient_country,
	internal_note, webshop_subscription_id, next_payment_date, created_at, updated_at`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	var sub models.Subscription
	var nextPayment sql.NullTime
	if err := row.Scan(
		&sub.ID, &sub.Type, &sub.Status, &sub.Frequency,
		&sub.Quantity250, &sub.Quantity500, &sub.Quantity1200,
		&sub.ShippingType, &sub.SpecialRequest,
		&sub.RecipientName, &sub.RecipientEmail, &sub.RecipientMobile,
		&sub.RecipientStreet1, &sub.RecipientStreet2, &sub.RecipientPostcode,
		&sub.RecipientCity, &sub.RecipientCountry,
		&sub.InternalNote, &sub.WebshopSubscriptionID, &nextPayment,
		&sub.CreatedAt, &sub.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if nextPayment.Valid {
		d := time.Date(nextPayment.Time.Year(), nextPayment.Time.Month(), nextPayment.Time.Day(),
			0, 0, 0, 0, time.UTC)
		sub.NextPaymentDate = &d
	}
	return &sub, nil
}

// GetSubscriptions returns subscriptions matching the filter, newest first.
func (s *Store) GetSubscriptions(f SubscriptionFilter) ([]models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	var where []string
	var args []any

	if len(f.Statuses) > 0 {
		where = append(where, `status IN (`+placeholders(len(f.Statuses))+`)`)
		for _, v := range f.Statuses {
			args = append(args, v)
		}
	}
	if len(f.Types) > 0 {
		where = append(where, `type IN (`+placeholders(len(f.Types))+`)`)
		for _, v := range f.Types {
			args = append(args, v)
		}
	}
	if len(f.Frequencies) > 0 {
		where = append(where, `frequency IN (`+placeholders(len(f.Frequencies))+`)`)
		for _, v := range f.Frequencies {
			args = append(args, v)
		}
	}
	if len(where) > 0 {
		query += ` WHERE ` + joinAnd(where)
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *Store) GetSubscriptionByID(id int64) (*models.Subscription, error) {
	row := s.DB.QueryRow(`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	return scanSubscription(row)
}

func (s *Store) GetTotalSubscriptionsCount() (int, error) {
	var count int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM subscriptions`).Scan(&count)
	return count, err
}

// CreateSubscription is mainly for seeding and the webshop import job.
func (s *Store) CreateSubscription(sub *models.Subscription) error {
	var nextPayment any
	if sub.NextPaymentDate != nil {
		nextPayment = sub.NextPaymentDate.Format(dateLayout)
	}
	res, err := s.DB.Exec(`
		INSERT INTO subscriptions (type, status, frequency, quantity250, quantity500, quantity1200,
			shipping_type, special_request, recipient_name, recipient_email, recipient_mobile,
			recipient_street1, recipient_street2, recipient_postcode, recipient_city, recipient_country,
			internal_note, webshop_subscription_id, next_payment_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, sub.Type, sub.Status, sub.Frequency, sub.Quantity250, sub.Quantity500, sub.Quantity1200,
		sub.ShippingType, sub.SpecialRequest, sub.RecipientName, sub.RecipientEmail, sub.RecipientMobile,
		sub.RecipientStreet1, sub.RecipientStreet2, sub.RecipientPostcode, sub.RecipientCity, sub.RecipientCountry,
		sub.InternalNote, sub.WebshopSubscriptionID, nextPayment)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sub.ID = id
	return nil
}

func joinAnd(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ` AND ` + p
	}
	return out
}
