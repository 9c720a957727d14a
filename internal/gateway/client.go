// Package gateway talks to the external payment gateway.  It covers the two
// server-side halves of the checkout flow: creating payment orders over the
// gateway's REST API and authenticating checkout callbacks by recomputing
// their HMAC signature.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Order is the gateway's order handle as returned by the orders endpoint.
// ID is opaque and unique per creation call.  Amount is in the currency's
// smallest unit (paise for INR).
type Order struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// apiError mirrors the gateway's error envelope so rejections carry the
// gateway's own description back to the caller.
type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client is a thin HTTP client for the gateway orders API.  Credentials are
// sent as HTTP basic auth, the gateway's documented scheme.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

// NewClient returns a Client for the given base URL and key pair.  The
// HTTP timeout is below the orchestrator's 10-second guard so a hung
// gateway call fails here first with a usable error.
func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: 8 * time.Second},
	}
}

type createOrderReq struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

// CreateOrder performs one order-creation call.  amountPaise must be a
// positive amount in the smallest currency unit; callers are expected to
// have derived it from the accommodation fee, never from client input.
// payment_capture is always enabled: there is no manual capture step in
// this system.  No retry is attempted here; retries belong to the caller.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency string) (*Order, error) {
	if amountPaise <= 0 {
		return nil, errors.New("gateway: order amount must be positive")
	}
	if currency == "" {
		currency = "INR"
	}

	body, err := json.Marshal(createOrderReq{
		Amount:   amountPaise,
		Currency: currency,
		// Millisecond receipt labels are traceability only; they carry no
		// uniqueness guarantee and must not be used as idempotency keys.
		Receipt:        fmt.Sprintf("rcpt_%d", time.Now().UnixMilli()),
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: order creation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if decErr := json.NewDecoder(resp.Body).Decode(&apiErr); decErr == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("gateway: order rejected (%s): %s", apiErr.Error.Code, apiErr.Error.Description)
		}
		return nil, fmt.Errorf("gateway: order rejected with status %d", resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("gateway: decode order response: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("gateway: order response missing id")
	}
	return &order, nil
}
