package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
)

const deliveriesPerPage = 20

// deliveryRow flattens the nullable slot pointers for template
// rendering; 0 means the slot is unassigned.
type deliveryRow struct {
	ID    int64
	Date  string
	Type  string
	Slots [4]int64
}

func (h *AdminHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	offset := (page - 1) * deliveriesPerPage

	deliveries, err := h.Store.GetRecentDeliveries(deliveriesPerPage, offset)
	if err != nil {
		http.Error(w, "Error fetching deliveries", http.StatusInternalServerError)
		return
	}
	total, err := h.Store.GetTotalDeliveriesCount()
	if err != nil {
		http.Error(w, "Error fetching deliveries", http.StatusInternalServerError)
		return
	}
	coffees, err := h.Store.GetAllCoffees()
	if err != nil {
		http.Error(w, "Error fetching coffees", http.StatusInternalServerError)
		return
	}

	totalPages := (total + deliveriesPerPage - 1) / deliveriesPerPage

	rows := make([]deliveryRow, 0, len(deliveries))
	for _, d := range deliveries {
		row := deliveryRow{
			ID:   d.ID,
			Date: d.Date.Format("2006-01-02"),
			Type: string(d.Type),
		}
		for i, id := range d.CoffeeIDs {
			if id != nil {
				row.Slots[i] = *id
			}
		}
		rows = append(rows, row)
	}

	tmpl := h.Templates.Get("admin_deliveries.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"Deliveries": rows,
		"Coffees":    coffees,
		"Page":       page,
		"TotalPages": totalPages,
		"Flashes":    GetFlash(session),
		"CsrfField":  csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// SetDeliveryCoffees assigns coffees to the four bag slots of a delivery.
// Empty form values clear the slot.
func (h *AdminHandler) SetDeliveryCoffees(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid delivery ID."})
		http.Redirect(w, r, "/admin/deliveries", http.StatusSeeOther)
		return
	}

	var coffeeIDs [4]*int64
	for i, field := range []string{"coffee1", "coffee2", "coffee3", "coffee4"} {
		v := r.FormValue(field)
		if v == "" {
			continue
		}
		coffeeID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			session.AddFlash(FlashMessage{Type: "error", Message: "Invalid coffee selection."})
			http.Redirect(w, r, "/admin/deliveries", http.StatusSeeOther)
			return
		}
		coffeeIDs[i] = &coffeeID
	}

	if err := h.Store.SetDeliveryCoffees(id, coffeeIDs); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Error updating delivery."})
		http.Redirect(w, r, "/admin/deliveries", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Delivery coffees updated!"})
	http.Redirect(w, r, "/admin/deliveries", http.StatusSeeOther)
}
