package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/brajcamp/camp-registration/internal/config"
	"github.com/brajcamp/camp-registration/internal/gateway"
)

const testSecret = "test_key_secret"

// fakeGateway records order-creation calls and answers like the orders API.
func fakeGateway(t *testing.T, calls *[]int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("gateway decode: %v", err)
		}
		*calls = append(*calls, req.Amount)
		_ = json.NewEncoder(w).Encode(gateway.Order{
			ID: "order_abc", Amount: req.Amount, Currency: req.Currency, Status: "created",
		})
	}))
}

func paymentHandler(gwURL string) *PaymentHandler {
	cfg := config.Config{GatewayKeyID: "key_id", GatewayKeySecret: testSecret}
	return NewPaymentHandler(cfg, gateway.NewClient(gwURL, cfg.GatewayKeyID, cfg.GatewayKeySecret))
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder_AmountComputedFromSelection(t *testing.T) {
	var calls []int64
	srv := fakeGateway(t, &calls)
	defer srv.Close()

	e := echo.New()
	e.POST("/api/payment/order", paymentHandler(srv.URL).CreateOrder)

	cases := []struct {
		accommodation string
		wantPaise     int64
	}{
		{"room", 250000},
		{"dormitory", 200000},
	}
	for _, tc := range cases {
		rec := postJSON(e, "/api/payment/order", `{"accommodation":"`+tc.accommodation+`","currency":"INR"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d body %s", tc.accommodation, rec.Code, rec.Body)
		}
		if got := calls[len(calls)-1]; got != tc.wantPaise {
			t.Errorf("%s: gateway charged %d, want %d", tc.accommodation, got, tc.wantPaise)
		}
	}
}

func TestCreateOrder_RejectsTamperedAmount(t *testing.T) {
	var calls []int64
	srv := fakeGateway(t, &calls)
	defer srv.Close()

	e := echo.New()
	e.POST("/api/payment/order", paymentHandler(srv.URL).CreateOrder)

	rec := postJSON(e, "/api/payment/order", `{"accommodation":"room","currency":"INR","amount":100}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if len(calls) != 0 {
		t.Error("gateway was called for a tampered amount")
	}
}

func TestCreateOrder_RejectsBadSelection(t *testing.T) {
	e := echo.New()
	e.POST("/api/payment/order", paymentHandler("http://unused").CreateOrder)

	for _, body := range []string{
		`{"currency":"INR"}`,
		`{"accommodation":"suite","currency":"INR"}`,
		`{"accommodation":"room","currency":"USD"}`,
	} {
		rec := postJSON(e, "/api/payment/order", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status %d, want 400", body, rec.Code)
		}
	}
}

func TestCreateOrder_GatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"invalid api key"}}`))
	}))
	defer srv.Close()

	e := echo.New()
	e.POST("/api/payment/order", paymentHandler(srv.URL).CreateOrder)

	rec := postJSON(e, "/api/payment/order", `{"accommodation":"room"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] == "" {
		t.Error("error body missing gateway message")
	}
}

func TestVerifyPayment(t *testing.T) {
	e := echo.New()
	e.POST("/api/payment/verify", paymentHandler("http://unused").VerifyPayment)

	sig := gateway.ComputeSignature("order_abc", "pay_123", testSecret)

	t.Run("valid signature", func(t *testing.T) {
		rec := postJSON(e, "/api/payment/verify",
			`{"orderId":"order_abc","paymentId":"pay_123","signature":"`+sig+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d body %s", rec.Code, rec.Body)
		}
		var body map[string]bool
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if !body["success"] {
			t.Error("success != true for a genuine signature")
		}
	})

	t.Run("mismatched signature", func(t *testing.T) {
		rec := postJSON(e, "/api/payment/verify",
			`{"orderId":"order_abc","paymentId":"pay_123","signature":"deadbeef"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["success"] != false {
			t.Error("success != false for a forged signature")
		}
	})

	t.Run("empty signature", func(t *testing.T) {
		rec := postJSON(e, "/api/payment/verify",
			`{"orderId":"order_abc","paymentId":"pay_123","signature":""}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}
	})

	t.Run("verify is idempotent", func(t *testing.T) {
		body := `{"orderId":"order_abc","paymentId":"pay_123","signature":"` + sig + `"}`
		first := postJSON(e, "/api/payment/verify", body)
		second := postJSON(e, "/api/payment/verify", body)
		if first.Code != second.Code || first.Body.String() != second.Body.String() {
			t.Error("repeated verification changed its answer")
		}
	})
}
