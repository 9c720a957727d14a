package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateOrder_SendsExpectedRequest(t *testing.T) {
	var got createOrderReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key_id" || pass != "key_secret" {
			t.Errorf("basic auth not forwarded: %q/%q", user, pass)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Order{
			ID:       "order_abc",
			Amount:   got.Amount,
			Currency: got.Currency,
			Receipt:  got.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_id", "key_secret")
	order, err := c.CreateOrder(context.Background(), 250000, "INR")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.ID != "order_abc" {
		t.Errorf("order id = %q", order.ID)
	}
	if got.Amount != 250000 || got.Currency != "INR" {
		t.Errorf("request carried amount=%d currency=%s", got.Amount, got.Currency)
	}
	if got.PaymentCapture != 1 {
		t.Errorf("payment_capture = %d, want 1 (auto-capture)", got.PaymentCapture)
	}
	if !strings.HasPrefix(got.Receipt, "rcpt_") {
		t.Errorf("receipt %q missing rcpt_ prefix", got.Receipt)
	}
}

func TestCreateOrder_GatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_id", "key_secret")
	_, err := c.CreateOrder(context.Background(), 100, "INR")
	if err == nil {
		t.Fatal("expected error from rejected order")
	}
	if !strings.Contains(err.Error(), "amount too small") {
		t.Errorf("gateway description not attached: %v", err)
	}
}

func TestCreateOrder_InvalidAmount(t *testing.T) {
	c := NewClient("http://unused", "k", "s")
	for _, amount := range []int64{0, -1} {
		if _, err := c.CreateOrder(context.Background(), amount, "INR"); err == nil {
			t.Errorf("amount %d accepted", amount)
		}
	}
}

func TestCreateOrder_MissingOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"amount":250000}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "s")
	if _, err := c.CreateOrder(context.Background(), 250000, "INR"); err == nil {
		t.Fatal("response without id accepted")
	}
}
