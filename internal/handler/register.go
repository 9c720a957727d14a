package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/brajcamp/camp-registration/internal/config"
	"github.com/brajcamp/camp-registration/internal/gateway"
	"github.com/brajcamp/camp-registration/internal/model"
	"github.com/brajcamp/camp-registration/internal/notify"
	"github.com/brajcamp/camp-registration/internal/queue"
	"github.com/brajcamp/camp-registration/internal/repository"
)

// EventPublisher publishes a registration-confirmed event.  It is a
// function field so tests can observe publications without a broker.
type EventPublisher func(ctx context.Context, ev queue.RegistrationConfirmedEvent) error

// RegisterHandler completes registrations after payment.  It re-verifies
// the gateway signature itself, so a client cannot skip verification by
// calling this endpoint directly, and it is the only code path that appends
// to the registration store.
type RegisterHandler struct {
	Cfg     config.Config
	Store   repository.RegistrationStore
	Mailer  *notify.Mailer
	Publish EventPublisher
}

func NewRegisterHandler(cfg config.Config, store repository.RegistrationStore, mailer *notify.Mailer, publish EventPublisher) *RegisterHandler {
	return &RegisterHandler{Cfg: cfg, Store: store, Mailer: mailer, Publish: publish}
}

type registerReq struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNo     string `json:"contactNo"`
	Facilitator   string `json:"facilitator"`
	Area          string `json:"area"`
	Level         string `json:"level"`
	MedicalNotes  string `json:"medicalNotes"`
	Accommodation string `json:"accommodation"`
	OrderID       string `json:"orderId"`
	PaymentID     string `json:"paymentId"`
	Signature     string `json:"signature"`
}

// Register handles POST /api/register.  One successful call appends exactly
// one record; there is no deduplication, matching the store contract.  The
// confirmation email and queue event are fired asynchronously because
// neither may delay or fail the registration response.
func (h *RegisterHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Facilitator == "" || req.Area == "" || req.Level == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email, facilitator, area and level are required"})
	}
	kind, ok := model.ParseAccommodation(req.Accommodation)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "accommodation must be 'room' or 'dormitory'"})
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "orderId, paymentId and signature are required"})
	}

	if !gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature, h.Cfg.GatewayKeySecret) {
		log.Printf("register: signature mismatch for order=%s payment=%s (possible forged callback)", req.OrderID, req.PaymentID)
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "payment verification failed"})
	}

	rec := &model.RegistrationRecord{
		ID: uuid.NewString(),
		Devotee: model.Devotee{
			Name:          req.Name,
			Email:         req.Email,
			ContactNo:     strings.TrimSpace(req.ContactNo),
			Facilitator:   req.Facilitator,
			Area:          req.Area,
			Level:         req.Level,
			MedicalNotes:  strings.TrimSpace(req.MedicalNotes),
			Accommodation: kind,
		},
		Payment: model.PaymentInfo{
			PaymentID: req.PaymentID,
			OrderID:   req.OrderID,
			// Amount is derived from the selection, never from the body.
			Amount: kind.PriceRupees(),
			Status: "verified",
		},
		RegistrationTime: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Store.Append(ctx, rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save registration"})
	}

	go h.notify(rec)

	return c.JSON(http.StatusCreated, echo.Map{"id": rec.ID, "success": true})
}

// notify publishes the confirmation event and sends the confirmation mail.
// Runs outside the request; uses its own timeout.
func (h *RegisterHandler) notify(rec *model.RegistrationRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if h.Publish != nil {
		ev := queue.RegistrationConfirmedEvent{
			RegistrationID: rec.ID,
			Name:           rec.Devotee.Name,
			Email:          rec.Devotee.Email,
			Facilitator:    rec.Devotee.Facilitator,
			Area:           rec.Devotee.Area,
			Level:          rec.Devotee.Level,
			Accommodation:  string(rec.Devotee.Accommodation),
			AmountRupees:   rec.Payment.Amount,
			PaymentID:      rec.Payment.PaymentID,
			OrderID:        rec.Payment.OrderID,
			ConfirmedAt:    rec.RegistrationTime.Format(time.RFC3339),
		}
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("register: publish confirmation event failed: %v", err)
		}
	}

	if h.Mailer != nil {
		if err := h.Mailer.SendConfirmation(rec); err != nil {
			log.Printf("register: confirmation email failed: %v", err)
		}
	}
}
