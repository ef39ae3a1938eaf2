package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/store"
)

const rowsPerPage = 25

func pageParam(r *http.Request) (page, offset int) {
	page = 1
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page, (page - 1) * rowsPerPage
}

func (h *AdminHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	page, offset := pageParam(r)

	filter := store.SubscriptionFilter{Limit: rowsPerPage, Offset: offset}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Statuses = []models.SubscriptionStatus{models.SubscriptionStatus(s)}
	}
	if t := r.URL.Query().Get("type"); t != "" {
		filter.Types = []models.SubscriptionType{models.SubscriptionType(t)}
	}

	subs, err := h.Store.GetSubscriptions(filter)
	if err != nil {
		http.Error(w, "Error fetching subscriptions", http.StatusInternalServerError)
		return
	}
	total, err := h.Store.GetTotalSubscriptionsCount()
	if err != nil {
		http.Error(w, "Error fetching subscriptions", http.StatusInternalServerError)
		return
	}
	totalPages := (total + rowsPerPage - 1) / rowsPerPage

	tmpl := h.Templates.Get("admin_subscriptions.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"Subscriptions": subs,
		"Page":          page,
		"TotalPages":    totalPages,
		"Status":        r.URL.Query().Get("status"),
		"Type":          r.URL.Query().Get("type"),
		"Flashes":       GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, offset := pageParam(r)

	filter := store.OrderFilter{Limit: rowsPerPage, Offset: offset}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Statuses = []models.OrderStatus{models.OrderStatus(s)}
	}
	if d := r.URL.Query().Get("delivery"); d != "" {
		if deliveryID, err := strconv.ParseInt(d, 10, 64); err == nil {
			filter.DeliveryIDs = []int64{deliveryID}
		}
	}

	orders, err := h.Store.GetOrders(filter)
	if err != nil {
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}
	total, err := h.Store.GetTotalOrdersCount()
	if err != nil {
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}
	totalPages := (total + rowsPerPage - 1) / rowsPerPage

	tmpl := h.Templates.Get("admin_orders.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"Orders":     orders,
		"Page":       page,
		"TotalPages": totalPages,
		"Status":     r.URL.Query().Get("status"),
		"Flashes":    GetFlash(session),
		"CsrfField":  csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}
