// Package shipping talks to the consignment/label provider.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

// Consignment is the provider's reference for one shipment.
type Consignment struct {
	ID          int64  `json:"consignment_id"`
	TrackingURL string `json:"tracking_url"`
}

// Service is the contract the fulfillment pipeline consumes.
type Service interface {
	CreateConsignment(ctx context.Context, order *models.Order) (*Consignment, error)
	PrintLabels(ctx context.Context, consignmentIDs []int64) error
}

type Client struct {
	BaseURL            string
	APIKey             string
	SenderID           string
	TransportAgreement string
	HTTPClient         *http.Client
}

func NewClient(baseURL, apiKey, senderID, transportAgreement string) *Client {
	return &Client{
		BaseURL:            baseURL,
		APIKey:             apiKey,
		SenderID:           senderID,
		TransportAgreement: transportAgreement,
		HTTPClient:         &http.Client{Timeout: 30 * time.Second},
	}
}

type consignmentRequest struct {
	TransportAgreement string `json:"transport_agreement"`
	Reference          string `json:"reference"`
	WeightGrams        int    `json:"weight_grams"`
	Recipient          struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Mobile   string `json:"mobile"`
		Street1  string `json:"street1"`
		Street2  string `json:"street2,omitempty"`
		Postcode string `json:"postcode"`
		City     string `json:"city"`
		Country  string `json:"country"`
	} `json:"recipient"`
}

// CreateConsignment registers a shipment for the order and returns the
// provider's consignment id and tracking link.
func (c *Client) CreateConsignment(ctx context.Context, order *models.Order) (*Consignment, error) {
	req := consignmentRequest{
		TransportAgreement: c.TransportAgreement,
		Reference:          fmt.Sprintf("order-%d", order.ID),
		WeightGrams:        orderWeightGrams(order),
	}
	req.Recipient.Name = order.Name
	req.Recipient.Email = order.Email
	req.Recipient.Mobile = order.Mobile
	req.Recipient.Street1 = order.Street1
	req.Recipient.Street2 = order.Street2
	req.Recipient.Postcode = order.Postcode
	req.Recipient.City = order.City
	req.Recipient.Country = order.Country

	var out Consignment
	if err := c.post(ctx, "/consignments", req, &out); err != nil {
		return nil, fmt.Errorf("create consignment for order %d: %w", order.ID, err)
	}
	return &out, nil
}

// PrintLabels queues one print job for all the given consignments.
func (c *Client) PrintLabels(ctx context.Context, consignmentIDs []int64) error {
	body := map[string][]int64{"consignment_ids": consignmentIDs}
	if err := c.post(ctx, "/consignments/print", body, nil); err != nil {
		return fmt.Errorf("print labels: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.APIKey)
	req.Header.Set("X-Sender-Id", c.SenderID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("shipping provider returned %d: %s", resp.StatusCode, snippet)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// orderWeightGrams is the shipment weight from the order's bag counts;
// custom orders weigh in by their line items.
func orderWeightGrams(o *models.Order) int {
	if o.Type == models.OrderTypeCustom && len(o.Items) > 0 {
		grams := 0
		for _, item := range o.Items {
			switch item.Variation {
			case "500":
				grams += 500 * item.Quantity
			case "1200":
				grams += 1200 * item.Quantity
			default:
				grams += 250 * item.Quantity
			}
		}
		return grams
	}
	return 250*o.Quantity250 + 500*o.Quantity500 + 1200*o.Quantity1200
}
