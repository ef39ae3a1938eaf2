package store

import (
	"strings"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

// Explicit query parameter structs keep the planning code's intent
// readable and testable instead of passing opaque filter maps around.

type SubscriptionFilter struct {
	Statuses    []models.SubscriptionStatus
	Types       []models.SubscriptionType
	Frequencies []models.SubscriptionFrequency
	Limit       int
	Offset      int
}

type OrderFilter struct {
	IDs         []int64
	DeliveryIDs []int64
	Statuses    []models.OrderStatus
	Types       []models.OrderType
	Limit       int
	Offset      int
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
