package reports

import (
	"time"

	reportsvc "treasury-backend/internal/application/reports"
	"treasury-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the admin dashboard aggregates.
type Handlers struct {
	Service *reportsvc.Service
}

// AdminBalances GET /api/admin/balances — per-branch signed sums plus
// current-month revenue totals.
func (h *Handlers) AdminBalances(c *fiber.Ctx) error {
	result, err := h.Service.AdminBalancesReport(c.Context(), time.Now().UTC())
	if err != nil {
		return err
	}
	return response.Success(c, "Balances fetched successfully", result, nil)
}
