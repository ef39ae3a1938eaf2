package store

import (
	"database/sql"
	"fmt"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

const orderColumns = `o.id, o.subscription_id, o.delivery_id, o.type, o.status, o.shipping_type,
	o.quantity250, o.quantity500, o.quantity1200,
	o.name, o.email, o.mobile, o.street1, o.street2, o.postcode, o.city, o.country,
	o.customer_note, o.internal_note, o.webshop_order_id, o.tracking_url, o.created_at, o.updated_at,
	s.type, s.frequency, s.special_request`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	var subType, subFrequency, subSpecial sql.NullString
	if err := row.Scan(
		&o.ID, &o.SubscriptionID, &o.DeliveryID, &o.Type, &o.Status, &o.ShippingType,
		&o.Quantity250, &o.Quantity500, &o.Quantity1200,
		&o.Name, &o.Email, &o.Mobile, &o.Street1, &o.Street2, &o.Postcode, &o.City, &o.Country,
		&o.CustomerNote, &o.InternalNote, &o.WebshopOrderID, &o.TrackingURL, &o.CreatedAt, &o.UpdatedAt,
		&subType, &subFrequency, &subSpecial,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.SubscriptionID != nil && subType.Valid {
		o.Subscription = &models.Subscription{
			ID:             *o.SubscriptionID,
			Type:           models.SubscriptionType(subType.String),
			Frequency:      models.SubscriptionFrequency(subFrequency.String),
			SpecialRequest: models.SpecialRequest(subSpecial.String),
		}
	}
	return &o, nil
}

// GetOrders returns orders matching the filter, newest first, with the
// owning subscription's planning fields joined in and custom-order line
// items attached.
func (s *Store) GetOrders(f OrderFilter) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o
		LEFT JOIN subscriptions s ON o.subscription_id = s.id`
	var where []string
	var args []any

	if len(f.IDs) > 0 {
		where = append(where, `o.id IN (`+placeholders(len(f.IDs))+`)`)
		for _, v := range f.IDs {
			args = append(args, v)
		}
	}
	if len(f.DeliveryIDs) > 0 {
		where = append(where, `o.delivery_id IN (`+placeholders(len(f.DeliveryIDs))+`)`)
		for _, v := range f.DeliveryIDs {
			args = append(args, v)
		}
	}
	if len(f.Statuses) > 0 {
		where = append(where, `o.status IN (`+placeholders(len(f.Statuses))+`)`)
		for _, v := range f.Statuses {
			args = append(args, v)
		}
	}
	if len(f.Types) > 0 {
		where = append(where, `o.type IN (`+placeholders(len(f.Types))+`)`)
		for _, v := range f.Types {
			args = append(args, v)
		}
	}
	if len(where) > 0 {
		query += ` WHERE ` + joinAnd(where)
	}
	query += ` ORDER BY o.created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachItems(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) attachItems(orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Order, len(orders))
	args := make([]any, 0, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
		args = append(args, orders[i].ID)
	}

	rows, err := s.DB.Query(`SELECT id, order_id, coffee_id, variation, quantity
		FROM order_items WHERE order_id IN (`+placeholders(len(args))+`) ORDER BY id`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.CoffeeID, &item.Variation, &item.Quantity); err != nil {
			return err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

// GetOrderWithDetails loads one order with its full subscription row and
// line items. Used by the fulfillment pipeline.
func (s *Store) GetOrderWithDetails(id int64) (*models.Order, error) {
	orders, err := s.GetOrders(OrderFilter{IDs: []int64{id}})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNotFound
	}
	o := orders[0]
	if o.SubscriptionID != nil {
		sub, err := s.GetSubscriptionByID(*o.SubscriptionID)
		if err != nil && err != ErrNotFound {
			return nil, err
		}
		o.Subscription = sub
	}
	return &o, nil
}

// RenewalSubscriptionIDs returns the ids of subscriptions that already
// have a RENEWAL order on the delivery, regardless of order status.
func (s *Store) RenewalSubscriptionIDs(deliveryID int64) (map[int64]struct{}, error) {
	rows, err := s.DB.Query(`SELECT subscription_id FROM orders
		WHERE delivery_id = ? AND type = ? AND subscription_id IS NOT NULL`,
		deliveryID, models.OrderTypeRenewal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// BulkCreateOrders inserts all orders in one transaction. All-or-nothing:
// any failure, including a renewal uniqueness violation, rolls the whole
// batch back.
func (s *Store) BulkCreateOrders(orders []models.Order) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO orders (subscription_id, delivery_id, type, status, shipping_type,
			quantity250, quantity500, quantity1200,
			name, email, mobile, street1, street2, postcode, city, country,
			customer_note, internal_note, webshop_order_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, o := range orders {
		if _, err := stmt.Exec(o.SubscriptionID, o.DeliveryID, o.Type, o.Status, o.ShippingType,
			o.Quantity250, o.Quantity500, o.Quantity1200,
			o.Name, o.Email, o.Mobile, o.Street1, o.Street2, o.Postcode, o.City, o.Country,
			o.CustomerNote, o.InternalNote, o.WebshopOrderID); err != nil {
			return 0, fmt.Errorf("bulk create orders: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(orders), nil
}

// MarkOrderCompleted sets the order COMPLETED and stores the tracking
// reference returned by the shipping provider.
func (s *Store) MarkOrderCompleted(id int64, trackingURL string) error {
	res, err := s.DB.Exec(`UPDATE orders
		SET status = ?, tracking_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, models.OrderStatusCompleted, trackingURL, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateOrderStatus(id int64, status models.OrderStatus) error {
	res, err := s.DB.Exec(`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetTotalOrdersCount() (int, error) {
	var count int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

// CreateOrderItem adds a line item to a custom order.
func (s *Store) CreateOrderItem(item *models.OrderItem) error {
	res, err := s.DB.Exec(`INSERT INTO order_items (order_id, coffee_id, variation, quantity)
		VALUES (?, ?, ?, ?)`, item.OrderID, item.CoffeeID, item.Variation, item.Quantity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}
