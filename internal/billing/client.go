// Package billing integrates the external payment provider: outbound
// checkout creation and the inbound completion webhook that wins deals.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vendexa_backend/platform/config"
)

// CheckoutSession is the provider-hosted payment page for one deal.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutParams identifies the customer and plan to charge.
type CheckoutParams struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Plan       string `json:"plan"`
	PriceCents int64  `json:"priceCents"`
}

// Client talks to the payment provider's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a payment provider client.
func NewClient(cfg config.BillingConfig) *Client {
	return &Client{
		baseURL: cfg.GetBillingBaseURL(),
		apiKey:  cfg.GetBillingAPIKey(),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateCheckout opens a checkout session for the given customer and plan.
func (c *Client) CreateCheckout(ctx context.Context, params CheckoutParams) (CheckoutSession, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return CheckoutSession{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return CheckoutSession{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return CheckoutSession{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return CheckoutSession{}, fmt.Errorf("billing provider returned %d: %s", resp.StatusCode, snippet)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return CheckoutSession{}, err
	}
	return session, nil
}
