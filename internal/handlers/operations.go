package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/delivery"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/fulfillment"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/packing"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/renewal"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/roast"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/store"
)

// OpsHandler exposes the planning and fulfillment operations as JSON
// endpoints for the admin UI and the CLI.
type OpsHandler struct {
	Store      *store.Store
	Registry   *delivery.Registry
	Generator  *renewal.Generator
	Classifier *packing.Classifier
	Pipeline   *fulfillment.Pipeline
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// TriggerRenewals creates renewal orders for the upcoming delivery.
// ?ignore_gate=true skips the run-day check for manual runs.
func (h *OpsHandler) TriggerRenewals(w http.ResponseWriter, r *http.Request) {
	ignoreGate := r.URL.Query().Get("ignore_gate") == "true" || r.FormValue("ignore_gate") == "true"

	result, err := h.Generator.CreateRenewalOrders(ignoreGate)
	if err != nil {
		slog.Error("Renewal generation failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "renewal generation failed")
		return
	}

	slog.Info("Renewal generation finished",
		"status", result.Status,
		"orders_created", result.OrdersCreated,
		"ignore_gate", ignoreGate)
	writeJSON(w, http.StatusOK, result)
}

// RoastOverview returns the roast forecast for a delivery. Without a
// ?date parameter it resolves the current week's delivery.
func (h *OpsHandler) RoastOverview(w http.ResponseWriter, r *http.Request) {
	var refDate *time.Time
	if ds := r.URL.Query().Get("date"); ds != "" {
		parsed, err := time.ParseInLocation("2006-01-02", ds, time.UTC)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		refDate = &parsed
	}

	d, err := h.Registry.GetOrCreate(refDate)
	if err != nil {
		slog.Error("Delivery lookup failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "delivery lookup failed")
		return
	}

	orders, err := h.Store.GetOrders(store.OrderFilter{DeliveryIDs: []int64{d.ID}})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "error fetching orders")
		return
	}
	d.Orders = orders

	subs, err := h.Store.GetSubscriptions(store.SubscriptionFilter{
		Statuses: []models.SubscriptionStatus{models.SubscriptionStatusActive},
	})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "error fetching subscriptions")
		return
	}
	coffees, err := h.Store.GetAllCoffees()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "error fetching coffees")
		return
	}

	overview, err := roast.GetRoastOverview(subs, d, coffees)
	if err != nil {
		if errors.Is(err, roast.ErrNoDelivery) {
			writeJSONError(w, http.StatusNotFound, "no delivery found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "overview failed")
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// PackingPreview groups the active orders of one or more deliveries
// into packing categories. ?deliveries=1,2 selects the deliveries;
// without it the current week's delivery is used.
func (h *OpsHandler) PackingPreview(w http.ResponseWriter, r *http.Request) {
	var deliveryIDs []int64
	if ds := r.URL.Query().Get("deliveries"); ds != "" {
		for _, part := range strings.Split(ds, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid delivery id")
				return
			}
			deliveryIDs = append(deliveryIDs, id)
		}
	} else {
		d, err := h.Registry.GetOrCreate(nil)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "delivery lookup failed")
			return
		}
		deliveryIDs = []int64{d.ID}
	}

	preview, err := h.Classifier.GeneratePreview(deliveryIDs)
	if err != nil {
		slog.Error("Packing preview failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "packing preview failed")
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

type fulfillmentRequest struct {
	OrderIDs    []int64 `json:"order_ids"`
	PrintLabels bool    `json:"print_labels"`
}

// TriggerFulfillment ships and completes the given orders. Accepts a
// JSON body or form values (order_ids as comma-separated list).
func (h *OpsHandler) TriggerFulfillment(w http.ResponseWriter, r *http.Request) {
	var req fulfillmentRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	} else {
		for _, part := range strings.Split(r.FormValue("order_ids"), ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid order id")
				return
			}
			req.OrderIDs = append(req.OrderIDs, id)
		}
		req.PrintLabels = r.FormValue("print_labels") == "true"
	}

	if len(req.OrderIDs) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no order ids given")
		return
	}

	result := h.Pipeline.CompleteAndShipOrders(r.Context(), req.OrderIDs, req.PrintLabels)

	slog.Info("Fulfillment run finished",
		"run_id", result.RunID,
		"completed", result.Completed,
		"failed", result.Failed,
		"print_warning", result.PrintWarning)
	writeJSON(w, http.StatusOK, result)
}
