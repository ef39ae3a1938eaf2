// Package fulfillment drives order completion against the shipping
// provider and the webshop: bounded-concurrency batches, per-order
// failure isolation, one label print job at the end.
package fulfillment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/shipping"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/webshop"
)

// Step names the sub-step a failed order got stuck on.
type Step string

const (
	StepLoad        Step = "load"
	StepConsignment Step = "consignment"
	StepWebshop     Step = "webshop"
	StepPersist     Step = "persist"
)

// OrderResult is the outcome for one order, independent of its siblings.
type OrderResult struct {
	OrderID       int64  `json:"order_id"`
	Success       bool   `json:"success"`
	FailedStep    Step   `json:"failed_step,omitempty"`
	Error         string `json:"error,omitempty"`
	ConsignmentID int64  `json:"consignment_id,omitempty"`
	TrackingURL   string `json:"tracking_url,omitempty"`
}

// RunResult summarizes a pipeline run. PrintWarning is set when the
// final label print call failed; the consignments themselves exist, so
// that is not attributed to individual orders.
type RunResult struct {
	RunID        string        `json:"run_id"`
	Results      []OrderResult `json:"results"`
	Completed    int           `json:"completed"`
	Failed       int           `json:"failed"`
	PrintWarning string        `json:"print_warning,omitempty"`
}

type OrderStore interface {
	GetOrderWithDetails(id int64) (*models.Order, error)
	MarkOrderCompleted(id int64, trackingURL string) error
}

type Pipeline struct {
	Orders   OrderStore
	Shipping shipping.Service
	Webshop  webshop.Service

	// BatchSize bounds how many orders hit the external systems at
	// once; BatchDelay is the pause between batches for their rate
	// limits.
	BatchSize  int
	BatchDelay time.Duration

	// sleep is swappable in tests.
	sleep func(time.Duration)
}

func NewPipeline(orders OrderStore, ship shipping.Service, shop webshop.Service, batchSize int, batchDelay time.Duration) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Pipeline{
		Orders:     orders,
		Shipping:   ship,
		Webshop:    shop,
		BatchSize:  batchSize,
		BatchDelay: batchDelay,
		sleep:      time.Sleep,
	}
}

// CompleteAndShipOrders processes each order id independently: create a
// consignment unless the order is picked up locally, sync the webshop
// status for imported orders, then mark the order COMPLETED. One order's
// failure never touches another's outcome. Returns one result per input
// id, in input order.
func (p *Pipeline) CompleteAndShipOrders(ctx context.Context, orderIDs []int64, printLabels bool) *RunResult {
	run := &RunResult{
		RunID:   uuid.New().String(),
		Results: make([]OrderResult, len(orderIDs)),
	}
	logger := slog.With("run_id", run.RunID)
	logger.Info("Starting fulfillment run", "orders", len(orderIDs), "batch_size", p.BatchSize)

	for start := 0; start < len(orderIDs); start += p.BatchSize {
		end := start + p.BatchSize
		if end > len(orderIDs) {
			end = len(orderIDs)
		}

		// Each order writes only its own pre-assigned result slot, so
		// the batch needs no locking around the results collection.
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				run.Results[idx] = p.completeOne(ctx, orderIDs[idx])
			}(i)
		}
		wg.Wait()

		if end < len(orderIDs) && p.BatchDelay > 0 {
			p.sleep(p.BatchDelay)
		}
	}

	var consignmentIDs []int64
	for _, r := range run.Results {
		if r.Success {
			run.Completed++
			if r.ConsignmentID != 0 {
				consignmentIDs = append(consignmentIDs, r.ConsignmentID)
			}
		} else {
			run.Failed++
		}
	}

	if printLabels && len(consignmentIDs) > 0 {
		if err := p.Shipping.PrintLabels(ctx, consignmentIDs); err != nil {
			run.PrintWarning = err.Error()
			logger.Warn("Label printing failed", "error", err, "consignments", len(consignmentIDs))
		}
	}

	logger.Info("Fulfillment run finished", "completed", run.Completed, "failed", run.Failed)
	return run
}

func (p *Pipeline) completeOne(ctx context.Context, orderID int64) OrderResult {
	res := OrderResult{OrderID: orderID}

	order, err := p.Orders.GetOrderWithDetails(orderID)
	if err != nil {
		res.FailedStep = StepLoad
		res.Error = err.Error()
		return res
	}

	if order.ShippingType != models.ShippingTypeLocalPickup {
		consignment, err := p.Shipping.CreateConsignment(ctx, order)
		if err != nil {
			res.FailedStep = StepConsignment
			res.Error = err.Error()
			return res
		}
		res.ConsignmentID = consignment.ID
		res.TrackingURL = consignment.TrackingURL
	}

	if order.WebshopOrderID != nil {
		if err := p.Webshop.UpdateOrderStatus(ctx, *order.WebshopOrderID, webshop.StatusCompleted); err != nil {
			res.FailedStep = StepWebshop
			res.Error = err.Error()
			return res
		}
	}

	if err := p.Orders.MarkOrderCompleted(orderID, res.TrackingURL); err != nil {
		res.FailedStep = StepPersist
		res.Error = err.Error()
		return res
	}

	res.Success = true
	return res
}
