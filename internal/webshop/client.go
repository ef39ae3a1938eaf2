// Package webshop syncs order status back to the e-commerce system that
// imported orders originate from.
package webshop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service is the contract the fulfillment pipeline consumes.
type Service interface {
	UpdateOrderStatus(ctx context.Context, webshopOrderID int64, status string) error
}

// StatusCompleted is the webshop-side status for a shipped order.
const StatusCompleted = "completed"

type Client struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	HTTPClient     *http.Client
}

func NewClient(baseURL, consumerKey, consumerSecret string) *Client {
	return &Client{
		BaseURL:        baseURL,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

// UpdateOrderStatus pushes a new status for the webshop order.
func (c *Client) UpdateOrderStatus(ctx context.Context, webshopOrderID int64, status string) error {
	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/orders/%d", c.BaseURL, webshopOrderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.ConsumerKey, c.ConsumerSecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("update webshop order %d: %w", webshopOrderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webshop returned %d for order %d: %s", resp.StatusCode, webshopOrderID, snippet)
	}
	return nil
}
