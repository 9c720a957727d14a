package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brajcamp/camp-registration/internal/config"
	"github.com/brajcamp/camp-registration/internal/gateway"
	"github.com/brajcamp/camp-registration/internal/model"
	"github.com/brajcamp/camp-registration/internal/queue"
	"github.com/brajcamp/camp-registration/internal/repository"
)

func registerBody(accommodation, orderID, paymentID, signature string) string {
	b, _ := json.Marshal(map[string]string{
		"name":          "Test Devotee",
		"email":         "devotee@example.com",
		"contactNo":     "9999999999",
		"facilitator":   "Facilitator A",
		"area":          "IYF-Delhi",
		"level":         "SPS-1",
		"accommodation": accommodation,
		"orderId":       orderID,
		"paymentId":     paymentID,
		"signature":     signature,
	})
	return string(b)
}

func TestRegister_EndToEnd(t *testing.T) {
	store := repository.NewMemoryStore()
	published := make(chan queue.RegistrationConfirmedEvent, 1)
	h := NewRegisterHandler(
		config.Config{GatewayKeySecret: testSecret},
		store, nil,
		func(ctx context.Context, ev queue.RegistrationConfirmedEvent) error {
			published <- ev
			return nil
		},
	)
	e := echo.New()
	e.POST("/api/register", h.Register)

	sig := gateway.ComputeSignature("order_abc", "pay_123", testSecret)
	rec := postJSON(e, "/api/register", registerBody("room", "order_abc", "pay_123", sig))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}

	recs, _ := store.List(context.Background())
	if len(recs) != 1 {
		t.Fatalf("store has %d records, want 1", len(recs))
	}
	got := recs[0]
	if got.Payment.Amount != 2500 {
		t.Errorf("payment amount = %d, want 2500", got.Payment.Amount)
	}
	if got.Payment.OrderID != "order_abc" || got.Payment.PaymentID != "pay_123" {
		t.Errorf("payment ids = %+v", got.Payment)
	}
	if got.Payment.Status != "verified" {
		t.Errorf("payment status = %q", got.Payment.Status)
	}
	if got.Devotee.Accommodation != model.AccommodationRoom {
		t.Errorf("accommodation = %q", got.Devotee.Accommodation)
	}
	if got.ID == "" {
		t.Error("record missing id")
	}

	select {
	case ev := <-published:
		if ev.RegistrationID != got.ID || ev.AmountRupees != 2500 {
			t.Errorf("published event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Error("confirmation event never published")
	}
}

func TestRegister_ForgedSignatureRejected(t *testing.T) {
	store := repository.NewMemoryStore()
	h := NewRegisterHandler(config.Config{GatewayKeySecret: testSecret}, store, nil, nil)
	e := echo.New()
	e.POST("/api/register", h.Register)

	rec := postJSON(e, "/api/register", registerBody("room", "order_abc", "pay_123", "forged"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	recs, _ := store.List(context.Background())
	if len(recs) != 0 {
		t.Errorf("store gained %d records from a forged callback", len(recs))
	}
}

func TestRegister_AmountIgnoresClientInput(t *testing.T) {
	store := repository.NewMemoryStore()
	h := NewRegisterHandler(config.Config{GatewayKeySecret: testSecret}, store, nil, nil)
	e := echo.New()
	e.POST("/api/register", h.Register)

	// The body has no amount field at all; a dormitory selection must be
	// priced at 2000 regardless of what the client claims elsewhere.
	sig := gateway.ComputeSignature("order_d", "pay_d", testSecret)
	rec := postJSON(e, "/api/register", registerBody("dormitory", "order_d", "pay_d", sig))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	recs, _ := store.List(context.Background())
	if recs[0].Payment.Amount != 2000 {
		t.Errorf("amount = %d, want 2000", recs[0].Payment.Amount)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	h := NewRegisterHandler(config.Config{GatewayKeySecret: testSecret}, repository.NewMemoryStore(), nil, nil)
	e := echo.New()
	e.POST("/api/register", h.Register)

	sig := gateway.ComputeSignature("order_abc", "pay_123", testSecret)
	cases := map[string]string{
		"no devotee": `{"accommodation":"room","orderId":"order_abc","paymentId":"pay_123","signature":"` + sig + `"}`,
		"no payment": registerBody("room", "", "", ""),
		"bad kind":   registerBody("suite", "order_abc", "pay_123", sig),
	}
	for name, body := range cases {
		if rec := postJSON(e, "/api/register", body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", name, rec.Code)
		}
	}
}
