package handlers

import (
	"fmt"
	"image"
	"io"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/nfnt/resize"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

func (h *AdminHandler) ListCoffees(w http.ResponseWriter, r *http.Request) {
	coffees, err := h.Store.GetAllCoffees()
	if err != nil {
		http.Error(w, "Error fetching coffees", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("admin_coffees.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"Coffees":   coffees,
		"Flashes":   GetFlash(session),
		"CsrfField": csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) AddCoffeeForm(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("admin_add_coffee.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) CreateCoffee(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	err := r.ParseMultipartForm(10 << 20) // 10MB
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large. Max 10MB."})
		http.Redirect(w, r, "/admin/coffees/new", http.StatusSeeOther)
		return
	}

	productCode := strings.ToUpper(strings.TrimSpace(r.FormValue("product_code")))
	name := strings.TrimSpace(r.FormValue("name"))
	status := r.FormValue("status")
	if status == "" {
		status = "in_stock"
	}

	// Validation
	errors := make(map[string]string)
	if productCode == "" {
		errors["product_code"] = "Product code is required."
	}
	if name == "" {
		errors["name"] = "Name is required."
	}
	validStatuses := map[string]bool{"in_stock": true, "out_of_stock": true, "archived": true}
	if !validStatuses[status] {
		errors["status"] = "Invalid status selected."
	}

	if len(errors) > 0 {
		for _, msg := range errors {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/admin/coffees/new", http.StatusSeeOther)
		return
	}

	coffee := &models.Coffee{
		ProductCode: productCode,
		Name:        name,
		Status:      status,
	}

	// Label image is optional on create
	if file, header, fileErr := r.FormFile("image"); fileErr == nil {
		defer file.Close()
		imageURL, err := h.saveCoffeeImage(file, header.Filename)
		if err != nil {
			session.AddFlash(FlashMessage{Type: "error", Message: err.Error()})
			http.Redirect(w, r, "/admin/coffees/new", http.StatusSeeOther)
			return
		}
		coffee.ImageURL = imageURL
	}

	if err := h.Store.CreateCoffee(coffee); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Error saving coffee to database."})
		http.Redirect(w, r, "/admin/coffees/new", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Coffee added successfully!"})
	http.Redirect(w, r, "/admin/coffees", http.StatusSeeOther)
}

func (h *AdminHandler) EditCoffeeForm(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	coffee, err := h.Store.GetCoffeeByID(id)
	if err != nil {
		http.Error(w, "Coffee not found", http.StatusNotFound)
		return
	}

	tmpl := h.Templates.Get("admin_edit_coffee.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"Coffee":    coffee,
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) UpdateCoffee(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	err := r.ParseMultipartForm(10 << 20) // 10MB
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large."})
		http.Redirect(w, r, "/admin/coffees", http.StatusSeeOther)
		return
	}

	id, _ := strconv.ParseInt(r.FormValue("id"), 10, 64)
	coffee := &models.Coffee{
		ID:          id,
		ProductCode: strings.ToUpper(strings.TrimSpace(r.FormValue("product_code"))),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Status:      r.FormValue("status"),
	}

	if err := h.Store.UpdateCoffee(coffee); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Error updating coffee."})
		http.Redirect(w, r, fmt.Sprintf("/admin/coffees/edit?id=%d", id), http.StatusSeeOther)
		return
	}

	// Handle optional image update
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imageURL, err := h.saveCoffeeImage(file, header.Filename)
		if err != nil {
			session.AddFlash(FlashMessage{Type: "error", Message: err.Error()})
			http.Redirect(w, r, fmt.Sprintf("/admin/coffees/edit?id=%d", id), http.StatusSeeOther)
			return
		}
		h.Store.UpdateCoffeeImage(id, imageURL)
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Coffee updated successfully!"})
	http.Redirect(w, r, "/admin/coffees", http.StatusSeeOther)
}

func (h *AdminHandler) DeleteCoffee(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid ID."})
		http.Redirect(w, r, "/admin/coffees", http.StatusSeeOther)
		return
	}

	if err := h.Store.DeleteCoffee(id); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Error deleting coffee. It may still be assigned to a delivery."})
		http.Redirect(w, r, "/admin/coffees", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Coffee deleted successfully!"})
	http.Redirect(w, r, "/admin/coffees", http.StatusSeeOther)
}

// saveCoffeeImage decodes, downsizes and stores an uploaded label image,
// returning its public URL.
func (h *AdminHandler) saveCoffeeImage(file io.Reader, originalName string) (string, error) {
	var img image.Image
	var err error
	ext := filepath.Ext(originalName)
	if ext == ".png" {
		img, err = png.Decode(file)
	} else if ext == ".jpeg" || ext == ".jpg" {
		img, err = jpeg.Decode(file)
	} else {
		return "", fmt.Errorf("Unsupported image format. Only PNG, JPG, JPEG are allowed.")
	}
	if err != nil {
		return "", fmt.Errorf("Failed to decode image.")
	}

	// Resize image (max width 800px, preserve aspect ratio)
	newImage := resize.Resize(800, 0, img, resize.Lanczos3)

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())
	uploadPath := filepath.Join("static/uploads", filename)

	out, err := os.Create(uploadPath)
	if err != nil {
		return "", fmt.Errorf("Error saving image file.")
	}
	defer out.Close()

	if err := jpeg.Encode(out, newImage, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("Error encoding image.")
	}

	return "/static/uploads/" + filename, nil
}
