package handler

import (
	"log"      // distinct logging for security-relevant verification mismatches
	"net/http" // HTTP status codes
	"strings"  // input normalization

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/brajcamp/camp-registration/internal/config"
	"github.com/brajcamp/camp-registration/internal/gateway"
	"github.com/brajcamp/camp-registration/internal/model"
)

// PaymentHandler bundles dependencies for the order-creation and
// payment-verification endpoints.  Neither endpoint touches the
// registration store: verification is a pure check, and the store is
// appended only by the register handler after its own verification.
type PaymentHandler struct {
	Cfg     config.Config
	Gateway *gateway.Client
}

func NewPaymentHandler(cfg config.Config, gw *gateway.Client) *PaymentHandler {
	return &PaymentHandler{Cfg: cfg, Gateway: gw}
}

// ----- DTOs -----

type createOrderReq struct {
	Accommodation string `json:"accommodation"`
	Currency      string `json:"currency"`
	// Amount is optional and only cross-checked.  The charged amount is
	// always computed server-side from the accommodation kind, so a
	// tampered client cannot change what it pays.
	Amount int64 `json:"amount,omitempty"`
}

type verifyReq struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// CreateOrder handles POST /api/payment/order.  It derives the fee from the
// selected accommodation, creates one gateway order with auto-capture and
// returns the gateway's order object.  Gateway failures surface as 500 with
// the gateway's message; no retry is attempted here.
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	kind, ok := model.ParseAccommodation(strings.TrimSpace(req.Accommodation))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "accommodation must be 'room' or 'dormitory'"})
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = model.Currency
	}
	if currency != model.Currency {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported currency"})
	}

	amount := kind.PricePaise()
	if req.Amount != 0 && req.Amount != amount {
		// Price tampering attempt; the client-supplied amount is never trusted.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount does not match selected accommodation"})
	}

	order, err := h.Gateway.CreateOrder(c.Request().Context(), amount, currency)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, order)
}

// VerifyPayment handles POST /api/payment/verify.  It recomputes the HMAC
// over orderId|paymentId with the server-held secret and compares it to the
// supplied signature.  A malformed request (missing field) is a client
// error; a mismatch is answered with 400 {success:false} and logged
// separately because it may indicate a forged callback rather than an
// availability problem.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "orderId, paymentId and signature are required"})
	}

	if !gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature, h.Cfg.GatewayKeySecret) {
		log.Printf("payment: signature mismatch for order=%s payment=%s (possible forged callback)", req.OrderID, req.PaymentID)
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
