package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brajcamp/camp-registration/internal/repository"
)

// AdminHandler exposes read-only views of the registration store.  All
// methods assume JWT authentication and the ADMIN role check have already
// been performed by middleware.
type AdminHandler struct {
	Store repository.RegistrationStore
}

func NewAdminHandler(store repository.RegistrationStore) *AdminHandler {
	return &AdminHandler{Store: store}
}

// ListRegistrations handles GET /v1/admin/registrations and returns every
// record in insertion order.
func (h *AdminHandler) ListRegistrations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	recs, err := h.Store.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load registrations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": recs, "count": len(recs)})
}

// Stats handles GET /v1/admin/registrations/stats: totals, accommodation
// split, revenue and per-facilitator/area/level breakdowns.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Store.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute stats"})
	}
	return c.JSON(http.StatusOK, stats)
}
