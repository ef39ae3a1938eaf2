package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

func TestCreateConsignment(t *testing.T) {
	var gotReq consignmentRequest
	var gotKey, gotSender string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/consignments" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("X-Api-Key")
		gotSender = r.Header.Get("X-Sender-Id")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(Consignment{ID: 42, TrackingURL: "https://track.example/42"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-1", "sender-1", "agreement-1")
	order := &models.Order{
		ID:          7,
		Type:        models.OrderTypeRenewal,
		Quantity250: 4,
		Quantity500: 1,
		Name:        "Kari Nordmann",
		Street1:     "Maridalsveien 1",
		Postcode:    "0461",
		City:        "Oslo",
		Country:     "NO",
	}

	got, err := c.CreateConsignment(context.Background(), order)
	if err != nil {
		t.Fatalf("CreateConsignment: %v", err)
	}
	if got.ID != 42 || got.TrackingURL != "https://track.example/42" {
		t.Errorf("consignment = %+v", got)
	}
	if gotKey != "key-1" || gotSender != "sender-1" {
		t.Errorf("auth headers = %q, %q", gotKey, gotSender)
	}
	if gotReq.TransportAgreement != "agreement-1" {
		t.Errorf("transport agreement = %q", gotReq.TransportAgreement)
	}
	if gotReq.Reference != "order-7" {
		t.Errorf("reference = %q", gotReq.Reference)
	}
	if gotReq.WeightGrams != 4*250+500 {
		t.Errorf("weight = %d, want %d", gotReq.WeightGrams, 4*250+500)
	}
	if gotReq.Recipient.Name != "Kari Nordmann" || gotReq.Recipient.City != "Oslo" {
		t.Errorf("recipient = %+v", gotReq.Recipient)
	}
}

func TestCreateConsignmentProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid recipient", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", "")
	_, err := c.CreateConsignment(context.Background(), &models.Order{ID: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "422") || !strings.Contains(err.Error(), "invalid recipient") {
		t.Errorf("error = %v, want status and body snippet", err)
	}
}

func TestPrintLabelsBatchesIDs(t *testing.T) {
	var got map[string][]int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/consignments/print" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", "")
	if err := c.PrintLabels(context.Background(), []int64{1, 2, 3}); err != nil {
		t.Fatalf("PrintLabels: %v", err)
	}
	if len(got["consignment_ids"]) != 3 {
		t.Errorf("consignment ids = %v", got["consignment_ids"])
	}
}

func TestOrderWeightGrams(t *testing.T) {
	tests := []struct {
		name  string
		order models.Order
		want  int
	}{
		{
			name:  "bag counts",
			order: models.Order{Quantity250: 2, Quantity500: 1, Quantity1200: 1},
			want:  2*250 + 500 + 1200,
		},
		{
			name: "custom order weighs by line items",
			order: models.Order{
				Type:        models.OrderTypeCustom,
				Quantity250: 99, // ignored when items exist
				Items: []models.OrderItem{
					{Variation: "250", Quantity: 2},
					{Variation: "1200", Quantity: 1},
				},
			},
			want: 2*250 + 1200,
		},
		{
			name:  "custom order without items falls back to counts",
			order: models.Order{Type: models.OrderTypeCustom, Quantity500: 2},
			want:  1000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := orderWeightGrams(&tt.order); got != tt.want {
				t.Errorf("orderWeightGrams = %d, want %d", got, tt.want)
			}
		})
	}
}
