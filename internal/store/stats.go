package store

import "database/sql"

type DashboardStats struct {
	TotalCoffees            int
	TotalDeliveries         int
	TotalOrders             int
	ActiveSubscriptions     int
	OrdersByStatus          map[string]int
	SubscriptionsByType     map[string]int
	SubscriptionFrequencies map[string]int
}

func (s *Store) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{
		OrdersByStatus:          make(map[string]int),
		SubscriptionsByType:     make(map[string]int),
		SubscriptionFrequencies: make(map[string]int),
	}

	err := s.DB.QueryRow("SELECT COUNT(*) FROM coffees").Scan(&stats.TotalCoffees)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRow("SELECT COUNT(*) FROM deliveries").Scan(&stats.TotalDeliveries)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRow("SELECT COUNT(*) FROM orders").Scan(&stats.TotalOrders)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRow("SELECT COUNT(*) FROM subscriptions WHERE status = 'ACTIVE'").Scan(&stats.ActiveSubscriptions)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := s.DB.Query("SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.OrdersByStatus[status] = count
	}

	typeRows, err := s.DB.Query("SELECT type, COUNT(*) FROM subscriptions WHERE status = 'ACTIVE' GROUP BY type")
	if err != nil {
		return nil, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var subType string
		var count int
		if err := typeRows.Scan(&subType, &count); err != nil {
			return nil, err
		}
		stats.SubscriptionsByType[subType] = count
	}

	freqRows, err := s.DB.Query("SELECT frequency, COUNT(*) FROM subscriptions WHERE status = 'ACTIVE' GROUP BY frequency")
	if err != nil {
		return nil, err
	}
	defer freqRows.Close()
	for freqRows.Next() {
		var freq string
		var count int
		if err := freqRows.Scan(&freq, &count); err != nil {
			return nil, err
		}
		stats.SubscriptionFrequencies[freq] = count
	}

	return stats, nil
}
