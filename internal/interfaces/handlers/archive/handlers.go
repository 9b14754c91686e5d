package archive

import (
	archsvc "treasury-backend/internal/application/archive"
	"treasury-backend/internal/middleware"
	"treasury-backend/internal/pkg/apperr"
	"treasury-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the monthly archive cycle and archive queries.
type Handlers struct {
	Service *archsvc.Service
}

// Run POST /api/admin/monthly-archive — snapshot and reset every branch
// for the previous calendar month.
func (h *Handlers) Run(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	result, err := h.Service.RunMonthlyArchive(c.Context(), actor.BranchID)
	if err != nil {
		return err
	}
	return response.Success(c, "Monthly archive completed", result, nil)
}

// Reset POST /api/admin/branches/:id/reset-funds — zero one branch's
// funds without producing an archive.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	branchID, err := c.ParamsInt("id")
	if err != nil || branchID < 1 {
		return response.Error(c, "Invalid branch id", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.ResetFundsForBranch(c.Context(), actor.BranchID, uint(branchID))
	if err != nil {
		return err
	}
	return response.Success(c, "Funds reset successfully", result, nil)
}

// List GET /api/archives?month= — archive headers visible to the session
// branch.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	archives, err := h.Service.ListArchives(c.Context(), actor.BranchID, actor.IsAdmin, c.Query("month"))
	if err != nil {
		return err
	}
	return response.Success(c, "Archives fetched successfully", archives, nil)
}

// Detail GET /api/archives/:id — one archive with its fund rows. Other
// branches' archives read as absent for non-admin callers.
func (h *Handlers) Detail(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	archiveID, err := c.ParamsInt("id")
	if err != nil || archiveID < 1 {
		return response.Error(c, "Invalid archive id", fiber.StatusBadRequest, nil)
	}
	detail, err := h.Service.GetArchiveDetail(c.Context(), uint(archiveID))
	if err != nil {
		return err
	}
	if !actor.IsAdmin && detail.BranchID != actor.BranchID {
		return apperr.NotFound("archive %d not found", archiveID)
	}
	return response.Success(c, "Archive fetched successfully", detail, nil)
}

// MonthTotals GET /api/admin/archives/month-totals?month= — archived
// per-branch totals for one period.
func (h *Handlers) MonthTotals(c *fiber.Ctx) error {
	totals, err := h.Service.BranchTotalsForMonth(c.Context(), c.Query("month"))
	if err != nil {
		return err
	}
	return response.Success(c, "Branch totals fetched successfully", totals, nil)
}
